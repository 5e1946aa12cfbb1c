package portfolio

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"folio/internal/config"
	"folio/internal/domain"
	portfolioRepo "folio/internal/domain/repositories/portfolio"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	disallowedSlugChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespace      = regexp.MustCompile(`\s+`)
	slugHyphenRuns      = regexp.MustCompile(`-+`)
)

// Slugify normalizes a title into a URL-safe slug candidate.
// Diacritics are folded first so "Côol" becomes "cool" rather than "cl".
// Returns "" when nothing usable remains.
func Slugify(title string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		title,
	)
	if err != nil {
		folded = title
	}

	s := strings.ToLower(folded)
	s = disallowedSlugChars.ReplaceAllString(s, "")
	s = slugWhitespace.ReplaceAllString(strings.TrimSpace(s), "-")
	s = slugHyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SlugResolver turns titles into slugs that are free in the store.
// The existence check is a best-effort pre-check; the store's unique index is authoritative.
type SlugResolver struct {
	checker     portfolioRepo.SlugChecker
	maxAttempts int
}

// NewSlugResolver creates a slug resolver. maxAttempts <= 0 uses the default cap.
func NewSlugResolver(checker portfolioRepo.SlugChecker, maxAttempts int) *SlugResolver {
	if maxAttempts <= 0 {
		maxAttempts = config.DefaultSlugMaxAttempts
	}
	return &SlugResolver{
		checker:     checker,
		maxAttempts: maxAttempts,
	}
}

// Resolve returns the first free candidate among base, base-1, base-2, ...
// excludeID is the document being renamed (its own slug does not collide).
// Candidates listed in avoid are treated as taken.
func (r *SlugResolver) Resolve(ctx context.Context, title, excludeID string, avoid ...string) (string, error) {
	base := Slugify(title)
	if base == "" {
		return "", &domain.InvalidTitleError{Title: title}
	}

	skip := make(map[string]struct{}, len(avoid))
	for _, s := range avoid {
		skip[s] = struct{}{}
	}

	candidate := base
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			candidate = fmt.Sprintf("%s-%d", base, attempt)
		}
		if _, taken := skip[candidate]; taken {
			continue
		}

		exists, err := r.checker.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", &domain.SlugExhaustedError{Base: base, Attempts: r.maxAttempts}
}

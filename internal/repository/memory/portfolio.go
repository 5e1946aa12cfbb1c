// Package memory provides an in-process portfolio store. It enforces the same
// unique-slug, versioned-replace and atomic-counter semantics as the database
// stores and backs local development and service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"folio/internal/domain"
	models "folio/internal/domain/models/portfolio"
	portfolioRepo "folio/internal/domain/repositories/portfolio"

	"github.com/google/uuid"
)

// PortfolioRepository implements the PortfolioRepository interface in memory
type PortfolioRepository struct {
	mu     sync.Mutex
	docs   map[string]*models.Portfolio
	bySlug map[string]string // slug -> id (unique index)
}

// NewPortfolioRepository creates an empty in-memory store
func NewPortfolioRepository() *PortfolioRepository {
	return &PortfolioRepository{
		docs:   make(map[string]*models.Portfolio),
		bySlug: make(map[string]string),
	}
}

var _ portfolioRepo.PortfolioRepository = (*PortfolioRepository)(nil)

func slugConflict(slug string) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("slug '%s' already exists", slug),
		ResourceType: "slug",
		ResourceID:   slug,
	}
}

// Create inserts a new portfolio and fills in its generated ID
func (r *PortfolioRepository) Create(_ context.Context, p *models.Portfolio) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.bySlug[p.Slug]; taken {
		return slugConflict(p.Slug)
	}

	p.ID = uuid.NewString()
	r.docs[p.ID] = p.Clone()
	r.bySlug[p.Slug] = p.ID
	return nil
}

// GetByID retrieves a portfolio by ID
func (r *PortfolioRepository) GetByID(_ context.Context, id string) (*models.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("portfolio %s: %w", id, domain.ErrNotFound)
	}
	return doc.Clone(), nil
}

// GetBySlug retrieves a portfolio by slug
func (r *PortfolioRepository) GetBySlug(_ context.Context, slug string) (*models.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("portfolio with slug %s: %w", slug, domain.ErrNotFound)
	}
	return r.docs[id].Clone(), nil
}

// SlugExists reports whether slug is used by any portfolio other than excludeID
func (r *PortfolioRepository) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.bySlug[slug]
	return ok && id != excludeID, nil
}

// Replace writes every non-counter field of p if the stored version matches
func (r *PortfolioRepository) Replace(_ context.Context, p *models.Portfolio, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.docs[p.ID]
	if !ok {
		return fmt.Errorf("portfolio %s: %w", p.ID, domain.ErrNotFound)
	}
	if stored.Version != expectedVersion {
		return &domain.VersionConflictError{ResourceID: p.ID, ExpectedVersion: expectedVersion}
	}
	if owner, taken := r.bySlug[p.Slug]; taken && owner != p.ID {
		return slugConflict(p.Slug)
	}

	next := p.Clone()
	next.Stats = stored.Stats
	if stored.Stats.LastViewed != nil {
		t := *stored.Stats.LastViewed
		next.Stats.LastViewed = &t
	}

	if stored.Slug != next.Slug {
		delete(r.bySlug, stored.Slug)
		r.bySlug[next.Slug] = next.ID
	}
	r.docs[p.ID] = next
	return nil
}

// IncrementStats atomically applies delta and returns the resulting counters
func (r *PortfolioRepository) IncrementStats(_ context.Context, id string, delta models.StatsDelta) (*models.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("portfolio %s: %w", id, domain.ErrNotFound)
	}

	doc.Stats.Views += delta.Views
	doc.Stats.UniqueViews += delta.UniqueViews
	doc.Stats.Shares += delta.Shares
	doc.Stats.Downloads += delta.Downloads
	if delta.ViewedAt != nil {
		t := *delta.ViewedAt
		doc.Stats.LastViewed = &t
	}

	stats := doc.Stats
	if stats.LastViewed != nil {
		t := *stats.LastViewed
		stats.LastViewed = &t
	}
	return &stats, nil
}

// Delete permanently removes a portfolio
func (r *PortfolioRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return fmt.Errorf("portfolio %s: %w", id, domain.ErrNotFound)
	}
	delete(r.bySlug, doc.Slug)
	delete(r.docs, id)
	return nil
}

// ListByOwner lists portfolios owned by ownerID, most recently updated first
func (r *PortfolioRepository) ListByOwner(_ context.Context, ownerID string) ([]models.Portfolio, error) {
	return r.list(func(p *models.Portfolio) bool { return p.OwnerID == ownerID }), nil
}

// ListByCollaborator lists portfolios where userID is an accepted collaborator
func (r *PortfolioRepository) ListByCollaborator(_ context.Context, userID string) ([]models.Portfolio, error) {
	return r.list(func(p *models.Portfolio) bool {
		c := p.FindCollaborator(userID)
		return c != nil && c.Accepted()
	}), nil
}

func (r *PortfolioRepository) list(match func(*models.Portfolio) bool) []models.Portfolio {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := []models.Portfolio{}
	for _, doc := range r.docs {
		if match(doc) {
			result = append(result, *doc.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result
}

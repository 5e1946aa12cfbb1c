package portfolio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"folio/internal/config"
	"folio/internal/domain"
	models "folio/internal/domain/models/portfolio"
	portfolioRepo "folio/internal/domain/repositories/portfolio"
	"folio/internal/domain/services"
	portfolioSvc "folio/internal/domain/services/portfolio"
	"folio/internal/templates"

	"github.com/google/uuid"
)

const copySuffix = " (Copy)"

// LifecycleConfig holds the tunables of the lifecycle engine
type LifecycleConfig struct {
	SlugMaxAttempts    int
	MaxConflictRetries int
	MaxBackups         int
}

// lifecycleService implements the LifecycleService interface
type lifecycleService struct {
	repo       portfolioRepo.PortfolioRepository
	access     services.AccessEvaluator
	slugs      *SlugResolver
	backups    *BackupManager
	templates  *templates.Registry
	maxRetries int
	now        func() time.Time
	logger     *slog.Logger
}

// NewLifecycleService creates a new portfolio lifecycle service
func NewLifecycleService(
	repo portfolioRepo.PortfolioRepository,
	access services.AccessEvaluator,
	registry *templates.Registry,
	cfg LifecycleConfig,
	logger *slog.Logger,
) portfolioSvc.LifecycleService {
	maxRetries := cfg.MaxConflictRetries
	if maxRetries <= 0 {
		maxRetries = config.DefaultMaxConflictRetries
	}
	return &lifecycleService{
		repo:       repo,
		access:     access,
		slugs:      NewSlugResolver(repo, cfg.SlugMaxAttempts),
		backups:    NewBackupManager(cfg.MaxBackups),
		templates:  registry,
		maxRetries: maxRetries,
		now:        time.Now,
		logger:     logger,
	}
}

// CreatePortfolio creates a draft portfolio owned by req.OwnerID
func (s *lifecycleService) CreatePortfolio(ctx context.Context, req *portfolioSvc.CreatePortfolioRequest) (result *models.Portfolio, err error) {
	ctx, span := startSpan(ctx, "Create", "", req.OwnerID)
	defer func() { finishSpan(span, err) }()

	if req.OwnerID == "" {
		return nil, &domain.UnauthorizedError{Message: "authentication required"}
	}
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	templateID := req.Template
	if templateID == "" {
		templateID = s.templates.DefaultTemplate()
	}
	tmpl, err := s.templates.GetTemplate(templateID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	sections := req.Sections
	if len(sections) == 0 {
		sections, err = seedSections(tmpl)
		if err != nil {
			return nil, err
		}
	}

	theme := req.Theme
	if theme == nil && tmpl.Theme != nil {
		theme = models.JSONMap(copyMap(tmpl.Theme))
	}

	title := strings.TrimSpace(req.Title)
	slug, err := s.slugs.Resolve(ctx, title, "")
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	doc := &models.Portfolio{
		Slug:          slug,
		OwnerID:       req.OwnerID,
		Title:         title,
		Description:   req.Description,
		Template:      tmpl.ID,
		Theme:         theme,
		Sections:      normalizeSections(sections),
		Collaborators: []models.Collaborator{},
		Version:       1,
		Backups:       []models.Backup{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.insert(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("portfolio created",
		"id", doc.ID,
		"slug", doc.Slug,
		"template", doc.Template,
		"owner_id", doc.OwnerID,
	)

	return doc, nil
}

// GetPortfolio returns a portfolio the principal can view.
// Documents the principal cannot see are reported as not found.
func (s *lifecycleService) GetPortfolio(ctx context.Context, id, principal string) (*models.Portfolio, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.access.CanView(doc, principal) {
		return nil, fmt.Errorf("portfolio %s: %w", id, domain.ErrNotFound)
	}
	return s.redact(doc, principal), nil
}

// GetPortfolioBySlug returns a portfolio by slug if the principal can view it
func (s *lifecycleService) GetPortfolioBySlug(ctx context.Context, slug, principal string) (*models.Portfolio, error) {
	doc, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !s.access.CanView(doc, principal) {
		return nil, fmt.Errorf("portfolio with slug %s: %w", slug, domain.ErrNotFound)
	}
	return s.redact(doc, principal), nil
}

// ListOwned lists portfolios owned by the principal
func (s *lifecycleService) ListOwned(ctx context.Context, principal string) ([]models.Portfolio, error) {
	if principal == "" {
		return nil, &domain.UnauthorizedError{Message: "authentication required"}
	}
	return s.repo.ListByOwner(ctx, principal)
}

// ListShared lists portfolios where the principal is an accepted collaborator
func (s *lifecycleService) ListShared(ctx context.Context, principal string) ([]models.Portfolio, error) {
	if principal == "" {
		return nil, &domain.UnauthorizedError{Message: "authentication required"}
	}
	docs, err := s.repo.ListByCollaborator(ctx, principal)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		s.redact(&docs[i], principal)
	}
	return docs, nil
}

// UpdatePortfolio applies a partial update
func (s *lifecycleService) UpdatePortfolio(ctx context.Context, id, principal string, req *portfolioSvc.UpdatePortfolioRequest) (result *models.Portfolio, err error) {
	ctx, span := startSpan(ctx, "Update", id, principal)
	defer func() { finishSpan(span, err) }()

	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	result, err = s.mutate(ctx, id, principal, s.requireEdit(principal), func(doc *models.Portfolio) error {
		if req.Title != nil {
			doc.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description.Present {
			doc.Description = req.Description.Value
		}
		if req.Template != nil {
			doc.Template = *req.Template
		}
		if req.Theme != nil {
			doc.Theme = req.Theme
		}
		if req.Sections != nil {
			doc.Sections = normalizeSections(*req.Sections)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("portfolio updated",
		"id", result.ID,
		"slug", result.Slug,
		"version", result.Version,
		"principal", principal,
	)
	return result, nil
}

// Publish moves a portfolio to Published. Publishing a published portfolio is a no-op.
func (s *lifecycleService) Publish(ctx context.Context, id, principal string) (result *models.Portfolio, err error) {
	ctx, span := startSpan(ctx, "Publish", id, principal)
	defer func() { finishSpan(span, err) }()

	result, err = s.mutate(ctx, id, principal, s.requireEdit(principal), func(doc *models.Portfolio) error {
		if doc.IsPublished() {
			return nil
		}
		now := s.now().UTC()
		doc.IsPublic = true
		doc.PublishedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("portfolio published",
		"id", result.ID,
		"slug", result.Slug,
		"version", result.Version,
		"principal", principal,
	)
	return result, nil
}

// Unpublish returns a portfolio to Draft, clearing its publish timestamp
func (s *lifecycleService) Unpublish(ctx context.Context, id, principal string) (result *models.Portfolio, err error) {
	ctx, span := startSpan(ctx, "Unpublish", id, principal)
	defer func() { finishSpan(span, err) }()

	result, err = s.mutate(ctx, id, principal, s.requireEdit(principal), func(doc *models.Portfolio) error {
		doc.IsPublic = false
		doc.PublishedAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("portfolio unpublished",
		"id", result.ID,
		"version", result.Version,
		"principal", principal,
	)
	return result, nil
}

// Duplicate clones a viewable portfolio into a new private draft owned by the principal
func (s *lifecycleService) Duplicate(ctx context.Context, id, principal string) (result *models.Portfolio, err error) {
	ctx, span := startSpan(ctx, "Duplicate", id, principal)
	defer func() { finishSpan(span, err) }()

	if principal == "" {
		return nil, &domain.UnauthorizedError{Message: "authentication required"}
	}

	source, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.access.CanView(source, principal) {
		return nil, &domain.ForbiddenError{Message: "not allowed to duplicate this portfolio"}
	}

	title := copyTitle(source.Title)
	slug, err := s.slugs.Resolve(ctx, title, "")
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	doc := source.Clone()
	doc.ID = ""
	doc.Slug = slug
	doc.Title = title
	doc.OwnerID = principal
	doc.IsPublic = false
	doc.PublishedAt = nil
	doc.Collaborators = []models.Collaborator{}
	doc.Version = 1
	doc.Backups = []models.Backup{}
	doc.Stats = models.Stats{}
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if err := s.insert(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("portfolio duplicated",
		"id", doc.ID,
		"source_id", source.ID,
		"slug", doc.Slug,
		"owner_id", principal,
	)
	return doc, nil
}

// DeletePortfolio permanently removes a portfolio. Only the owner may delete.
func (s *lifecycleService) DeletePortfolio(ctx context.Context, id, principal string) (err error) {
	ctx, span := startSpan(ctx, "Delete", id, principal)
	defer func() { finishSpan(span, err) }()

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.access.CanDelete(doc, principal) {
		return &domain.ForbiddenError{Message: "only the owner can delete a portfolio"}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("portfolio deleted",
		"id", id,
		"slug", doc.Slug,
		"owner_id", principal,
	)
	return nil
}

// InviteCollaborator adds a pending collaborator. Re-inviting changes the role
// and resets acceptance.
func (s *lifecycleService) InviteCollaborator(ctx context.Context, id, principal string, req *portfolioSvc.InviteCollaboratorRequest) (result *models.Portfolio, err error) {
	ctx, span := startSpan(ctx, "InviteCollaborator", id, principal)
	defer func() { finishSpan(span, err) }()

	if err := s.validateInviteRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	authorize := func(doc *models.Portfolio) error {
		if !s.access.CanManageCollaborators(doc, principal) {
			return &domain.ForbiddenError{Message: "not allowed to manage collaborators"}
		}
		if doc.OwnerID == req.UserID {
			return &domain.ValidationError{Message: "the owner cannot be invited as a collaborator"}
		}
		return nil
	}

	result, err = s.mutate(ctx, id, principal, authorize, func(doc *models.Portfolio) error {
		now := s.now().UTC()
		if existing := doc.FindCollaborator(req.UserID); existing != nil {
			if existing.Role == req.Role && !existing.Accepted() {
				return nil
			}
			existing.Role = req.Role
			existing.InvitedAt = now
			existing.AcceptedAt = nil
			return nil
		}
		doc.Collaborators = append(doc.Collaborators, models.Collaborator{
			UserID:    req.UserID,
			Role:      req.Role,
			InvitedAt: now,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("collaborator invited",
		"id", result.ID,
		"user_id", req.UserID,
		"role", req.Role,
		"principal", principal,
	)
	return result, nil
}

// AcceptInvitation marks the principal's pending invitation as accepted
func (s *lifecycleService) AcceptInvitation(ctx context.Context, id, principal string) (result *models.Portfolio, err error) {
	ctx, span := startSpan(ctx, "AcceptInvitation", id, principal)
	defer func() { finishSpan(span, err) }()

	authorize := func(doc *models.Portfolio) error {
		if principal == "" || doc.FindCollaborator(principal) == nil {
			return fmt.Errorf("invitation to portfolio %s: %w", id, domain.ErrNotFound)
		}
		return nil
	}

	result, err = s.mutate(ctx, id, principal, authorize, func(doc *models.Portfolio) error {
		collab := doc.FindCollaborator(principal)
		if collab.Accepted() {
			return nil
		}
		now := s.now().UTC()
		collab.AcceptedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invitation accepted",
		"id", result.ID,
		"user_id", principal,
	)
	return s.redact(result, principal), nil
}

// RemoveCollaborator removes a collaborator. Managers may remove anyone;
// a collaborator may always remove themself.
func (s *lifecycleService) RemoveCollaborator(ctx context.Context, id, principal, userID string) (result *models.Portfolio, err error) {
	ctx, span := startSpan(ctx, "RemoveCollaborator", id, principal)
	defer func() { finishSpan(span, err) }()

	authorize := func(doc *models.Portfolio) error {
		self := principal != "" && principal == userID
		if !self && !s.access.CanManageCollaborators(doc, principal) {
			return &domain.ForbiddenError{Message: "not allowed to manage collaborators"}
		}
		if doc.FindCollaborator(userID) == nil {
			return fmt.Errorf("collaborator %s: %w", userID, domain.ErrNotFound)
		}
		return nil
	}

	result, err = s.mutate(ctx, id, principal, authorize, func(doc *models.Portfolio) error {
		kept := make([]models.Collaborator, 0, len(doc.Collaborators))
		for _, c := range doc.Collaborators {
			if c.UserID != userID {
				kept = append(kept, c)
			}
		}
		doc.Collaborators = kept
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("collaborator removed",
		"id", result.ID,
		"user_id", userID,
		"principal", principal,
	)
	return s.redact(result, principal), nil
}

// ListBackups returns retained backups, newest first
func (s *lifecycleService) ListBackups(ctx context.Context, id, principal string) ([]models.Backup, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireEdit(principal)(doc); err != nil {
		return nil, err
	}

	backups := make([]models.Backup, 0, len(doc.Backups))
	for i := len(doc.Backups) - 1; i >= 0; i-- {
		backups = append(backups, doc.Backups[i])
	}
	return backups, nil
}

// RestoreBackup restores the content fields held by a retained backup.
// The current state is backed up first, so a restore can itself be undone.
func (s *lifecycleService) RestoreBackup(ctx context.Context, id, principal string, version int) (result *models.Portfolio, err error) {
	ctx, span := startSpan(ctx, "RestoreBackup", id, principal)
	defer func() { finishSpan(span, err) }()

	result, err = s.mutate(ctx, id, principal, s.requireEdit(principal), func(doc *models.Portfolio) error {
		backup, err := FindBackup(doc, version)
		if err != nil {
			return err
		}
		snapshot, err := DecodeSnapshot(backup)
		if err != nil {
			return err
		}
		doc.Title = snapshot.Title
		doc.Description = snapshot.Description
		doc.Template = snapshot.Template
		doc.Theme = snapshot.Theme
		doc.Sections = snapshot.Sections
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("portfolio restored",
		"id", result.ID,
		"restored_version", version,
		"version", result.Version,
		"principal", principal,
	)
	return result, nil
}

// mutate runs one versioned update: load, authorize, apply to a copy, re-resolve
// the slug when the title changed, back up the previous state and replace with
// a version check. Version conflicts re-run the whole cycle on fresh state.
func (s *lifecycleService) mutate(
	ctx context.Context,
	id, principal string,
	authorize func(*models.Portfolio) error,
	apply func(*models.Portfolio) error,
) (*models.Portfolio, error) {
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := authorize(current); err != nil {
			return nil, err
		}

		next := current.Clone()
		if err := apply(next); err != nil {
			return nil, err
		}

		// Slug first, so the backup below records the pre-update slug
		titleChanged := next.Title != current.Title
		if titleChanged {
			slug, err := s.slugs.Resolve(ctx, next.Title, id)
			if err != nil {
				return nil, err
			}
			next.Slug = slug
		}

		unchanged, err := sameState(current, next)
		if err != nil {
			return nil, err
		}
		if unchanged {
			return current, nil
		}

		entry, newVersion, err := s.backups.BeforeUpdate(current, principal)
		if err != nil {
			return nil, err
		}
		s.backups.Apply(next, entry, newVersion)
		next.UpdatedAt = s.now().UTC()

		err = s.replace(ctx, next, current.Version, titleChanged)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}

		lastErr = err
		s.logger.Debug("version conflict, retrying",
			"id", id,
			"expected_version", current.Version,
			"attempt", attempt+1,
		)
	}

	return nil, lastErr
}

// replace writes doc with a version check. If the slug was taken between the
// lookup and the write, slug resolution runs once more avoiding that candidate.
func (s *lifecycleService) replace(ctx context.Context, doc *models.Portfolio, expectedVersion int, titleChanged bool) error {
	err := s.repo.Replace(ctx, doc, expectedVersion)
	taken, isSlugConflict := domain.IsSlugConflict(err)
	if !isSlugConflict || !titleChanged {
		return err
	}

	slug, err := s.slugs.Resolve(ctx, doc.Title, doc.ID, taken)
	if err != nil {
		return err
	}
	s.logger.Warn("slug taken at write time, retrying",
		"id", doc.ID,
		"taken", taken,
		"slug", slug,
	)
	doc.Slug = slug
	return s.repo.Replace(ctx, doc, expectedVersion)
}

// insert creates doc, retrying slug resolution once on a unique-index rejection
func (s *lifecycleService) insert(ctx context.Context, doc *models.Portfolio) error {
	err := s.repo.Create(ctx, doc)
	taken, isSlugConflict := domain.IsSlugConflict(err)
	if !isSlugConflict {
		return err
	}

	slug, err := s.slugs.Resolve(ctx, doc.Title, "", taken)
	if err != nil {
		return err
	}
	s.logger.Warn("slug taken at write time, retrying",
		"taken", taken,
		"slug", slug,
	)
	doc.Slug = slug
	return s.repo.Create(ctx, doc)
}

// requireEdit returns an authorizer that demands edit rights
func (s *lifecycleService) requireEdit(principal string) func(*models.Portfolio) error {
	return func(doc *models.Portfolio) error {
		if !s.access.CanEdit(doc, principal) {
			return &domain.ForbiddenError{Message: "not allowed to edit this portfolio"}
		}
		return nil
	}
}

// redact hides edit history and the collaborator list from principals without
// edit rights. Such a principal still sees its own collaborator entry.
func (s *lifecycleService) redact(doc *models.Portfolio, principal string) *models.Portfolio {
	if s.access.CanEdit(doc, principal) {
		return doc
	}

	doc.Backups = []models.Backup{}

	own := []models.Collaborator{}
	if principal != "" {
		if c := doc.FindCollaborator(principal); c != nil {
			own = append(own, *c)
		}
	}
	doc.Collaborators = own
	return doc
}

// sameState reports whether two documents hold the same persisted state,
// ignoring backups and the update timestamp
func sameState(a, b *models.Portfolio) (bool, error) {
	left, err := Snapshot(a)
	if err != nil {
		return false, err
	}
	right, err := Snapshot(b)
	if err != nil {
		return false, err
	}
	return string(left) == string(right), nil
}

// normalizeSections assigns missing IDs and renumbers Order from 0 while
// keeping the requested order
func normalizeSections(sections []models.Section) []models.Section {
	out := append([]models.Section{}, sections...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
		out[i].Order = i
	}
	return out
}

// seedSections builds the default sections of a template
func seedSections(tmpl *templates.Template) ([]models.Section, error) {
	sections := make([]models.Section, 0, len(tmpl.Sections))
	for i, def := range tmpl.Sections {
		content, err := def.ContentJSON()
		if err != nil {
			return nil, fmt.Errorf("seed section %s of template %s: %w", def.Type, tmpl.ID, err)
		}
		sections = append(sections, models.Section{
			Type:    def.Type,
			Title:   def.Title,
			Content: content,
			Order:   i,
			Visible: true,
		})
	}
	return sections, nil
}

// copyTitle appends the copy suffix, shortening the source title if the
// result would exceed the title limit
func copyTitle(title string) string {
	maxBase := config.MaxTitleLength - utf8.RuneCountInString(copySuffix)
	if utf8.RuneCountInString(title) > maxBase {
		title = strings.TrimSpace(string([]rune(title)[:maxBase]))
	}
	return title + copySuffix
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

package portfolio

import (
	"context"

	"folio/internal/domain/models/portfolio"
)

// PortfolioRepository defines data access operations for portfolios.
//
// Implementations must enforce a unique index on slug and report violations
// as *domain.ConflictError with ResourceType "slug".
type PortfolioRepository interface {
	// Create inserts a new portfolio and fills in its generated ID
	Create(ctx context.Context, p *portfolio.Portfolio) error

	// GetByID retrieves a portfolio by ID
	GetByID(ctx context.Context, id string) (*portfolio.Portfolio, error)

	// GetBySlug retrieves a portfolio by slug
	GetBySlug(ctx context.Context, slug string) (*portfolio.Portfolio, error)

	// SlugExists reports whether slug is used by any portfolio other than excludeID
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)

	// Replace writes every non-counter field of p, but only if the stored version
	// still equals expectedVersion. Returns *domain.VersionConflictError otherwise.
	// Stats are never written by Replace.
	Replace(ctx context.Context, p *portfolio.Portfolio, expectedVersion int) error

	// IncrementStats atomically applies delta and returns the resulting counters
	IncrementStats(ctx context.Context, id string, delta portfolio.StatsDelta) (*portfolio.Stats, error)

	// Delete permanently removes a portfolio
	Delete(ctx context.Context, id string) error

	// ListByOwner lists portfolios owned by ownerID, most recently updated first
	ListByOwner(ctx context.Context, ownerID string) ([]portfolio.Portfolio, error)

	// ListByCollaborator lists portfolios where userID is an accepted collaborator
	ListByCollaborator(ctx context.Context, userID string) ([]portfolio.Portfolio, error)
}

// SlugChecker is the read-only subset of the repository used by slug resolution
type SlugChecker interface {
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

// VisitTracker decides whether a visit is the visitor's first of the day.
// It feeds the isUnique flag of view recording.
type VisitTracker interface {
	FirstVisit(ctx context.Context, portfolioID, visitorKey string) (bool, error)
}

package portfolio

import (
	"context"

	models "folio/internal/domain/models/portfolio"
)

// LifecycleService owns every write to a portfolio document.
// Principal IDs come from the auth middleware; an empty principal means anonymous.
type LifecycleService interface {
	// CreatePortfolio creates a draft portfolio owned by req.OwnerID
	CreatePortfolio(ctx context.Context, req *CreatePortfolioRequest) (*models.Portfolio, error)

	// GetPortfolio returns a portfolio the principal can view
	GetPortfolio(ctx context.Context, id, principal string) (*models.Portfolio, error)

	// GetPortfolioBySlug returns a portfolio by slug if the principal can view it
	GetPortfolioBySlug(ctx context.Context, slug, principal string) (*models.Portfolio, error)

	// ListOwned lists portfolios owned by the principal
	ListOwned(ctx context.Context, principal string) ([]models.Portfolio, error)

	// ListShared lists portfolios where the principal is an accepted collaborator
	ListShared(ctx context.Context, principal string) ([]models.Portfolio, error)

	// UpdatePortfolio applies a partial update (edit rights required)
	UpdatePortfolio(ctx context.Context, id, principal string, req *UpdatePortfolioRequest) (*models.Portfolio, error)

	// Publish makes a portfolio public (edit rights required)
	Publish(ctx context.Context, id, principal string) (*models.Portfolio, error)

	// Unpublish returns a portfolio to draft (edit rights required)
	Unpublish(ctx context.Context, id, principal string) (*models.Portfolio, error)

	// Duplicate clones a viewable portfolio into a new draft owned by the principal
	Duplicate(ctx context.Context, id, principal string) (*models.Portfolio, error)

	// DeletePortfolio permanently removes a portfolio (owner only)
	DeletePortfolio(ctx context.Context, id, principal string) error

	// InviteCollaborator adds or re-invites a collaborator
	InviteCollaborator(ctx context.Context, id, principal string, req *InviteCollaboratorRequest) (*models.Portfolio, error)

	// AcceptInvitation marks the principal's pending invitation as accepted
	AcceptInvitation(ctx context.Context, id, principal string) (*models.Portfolio, error)

	// RemoveCollaborator removes a collaborator (managers, or the collaborator themself)
	RemoveCollaborator(ctx context.Context, id, principal, userID string) (*models.Portfolio, error)

	// ListBackups returns retained backups, newest first (edit rights required)
	ListBackups(ctx context.Context, id, principal string) ([]models.Backup, error)

	// RestoreBackup restores the content of a retained backup (edit rights required)
	RestoreBackup(ctx context.Context, id, principal string, version int) (*models.Portfolio, error)
}

// EngagementService records views, shares and downloads.
// Counters are atomic increments and never touch version or backups.
type EngagementService interface {
	// RecordView counts a view; isUnique is decided by the caller
	RecordView(ctx context.Context, id, principal string, isUnique bool) (*models.Stats, error)

	// RecordShare counts a share
	RecordShare(ctx context.Context, id, principal string) (*models.Stats, error)

	// RecordDownload counts a download
	RecordDownload(ctx context.Context, id, principal string) (*models.Stats, error)
}

// CreatePortfolioRequest represents a request to create a portfolio
type CreatePortfolioRequest struct {
	OwnerID     string           `json:"-"` // Set by handler from auth context
	Title       string           `json:"title"`
	Description *string          `json:"description,omitempty"`
	Template    string           `json:"template,omitempty"`
	Theme       models.JSONMap   `json:"theme,omitempty"`
	Sections    []models.Section `json:"sections,omitempty"`
}

// OptionalDescription tracks tri-state semantics for description updates (RFC 7396 PATCH).
// Transport-agnostic - handler maps from httputil.OptionalString.
type OptionalDescription struct {
	Present bool    // true if field was in request
	Value   *string // nil = clear, non-nil = set
}

// UpdatePortfolioRequest represents a partial update. Nil fields are left unchanged.
type UpdatePortfolioRequest struct {
	Title       *string           `json:"title,omitempty"`
	Description OptionalDescription // mapped from handler DTO
	Template    *string           `json:"template,omitempty"`
	Theme       models.JSONMap    `json:"theme,omitempty"`
	Sections    *[]models.Section `json:"sections,omitempty"`
}

// InviteCollaboratorRequest represents a collaborator invitation
type InviteCollaboratorRequest struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
}

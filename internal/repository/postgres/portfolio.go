package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"folio/internal/domain"
	models "folio/internal/domain/models/portfolio"
	portfolioRepo "folio/internal/domain/repositories/portfolio"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const portfolioColumns = `
	id, slug, owner_id, title, description, template, theme, sections,
	is_public, published_at, collaborators, version, backups,
	views, unique_views, last_viewed, shares, downloads,
	created_at, updated_at`

// PostgresPortfolioRepository implements the PortfolioRepository interface
type PostgresPortfolioRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(config *RepositoryConfig) portfolioRepo.PortfolioRepository {
	return &PostgresPortfolioRepository{
		pool:   config.Pool,
		logger: config.Logger,
	}
}

// portfolioJSON holds the JSONB-encoded columns of a portfolio
type portfolioJSON struct {
	theme         []byte
	sections      []byte
	collaborators []byte
	backups       []byte
}

func encodePortfolioJSON(p *models.Portfolio) (*portfolioJSON, error) {
	var (
		enc portfolioJSON
		err error
	)
	if p.Theme != nil {
		if enc.theme, err = json.Marshal(p.Theme); err != nil {
			return nil, fmt.Errorf("encode theme: %w", err)
		}
	}
	if enc.sections, err = marshalList(p.Sections); err != nil {
		return nil, fmt.Errorf("encode sections: %w", err)
	}
	if enc.collaborators, err = marshalList(p.Collaborators); err != nil {
		return nil, fmt.Errorf("encode collaborators: %w", err)
	}
	if enc.backups, err = marshalList(p.Backups); err != nil {
		return nil, fmt.Errorf("encode backups: %w", err)
	}
	return &enc, nil
}

// marshalList encodes a slice, writing an empty array for nil
func marshalList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

// Create inserts a new portfolio. Stats start at the column defaults.
func (r *PostgresPortfolioRepository) Create(ctx context.Context, p *models.Portfolio) error {
	enc, err := encodePortfolioJSON(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO portfolios (
			slug, owner_id, title, description, template, theme, sections,
			is_public, published_at, collaborators, version, backups,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`

	err = r.pool.QueryRow(ctx, query,
		p.Slug,
		p.OwnerID,
		p.Title,
		p.Description,
		p.Template,
		enc.theme,
		enc.sections,
		p.IsPublic,
		p.PublishedAt,
		enc.collaborators,
		p.Version,
		enc.backups,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)

	if err != nil {
		if IsPgDuplicateError(err) {
			return slugConflict(p.Slug)
		}
		if IsPgCheckViolation(err) {
			return &domain.ValidationError{Message: fmt.Sprintf("portfolio rejected by schema constraint: %v", err)}
		}
		return fmt.Errorf("create portfolio: %w", err)
	}

	return nil
}

// GetByID retrieves a portfolio by ID
func (r *PostgresPortfolioRepository) GetByID(ctx context.Context, id string) (*models.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE id = $1`

	p, err := scanPortfolio(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("portfolio %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get portfolio: %w", err)
	}
	return p, nil
}

// GetBySlug retrieves a portfolio by slug
func (r *PostgresPortfolioRepository) GetBySlug(ctx context.Context, slug string) (*models.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE slug = $1`

	p, err := scanPortfolio(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("portfolio with slug %s: %w", slug, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get portfolio by slug: %w", err)
	}
	return p, nil
}

// SlugExists reports whether slug is used by any portfolio other than excludeID
func (r *PostgresPortfolioRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM portfolios
			WHERE slug = $1 AND ($2 = '' OR id::text <> $2)
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

// Replace writes every non-counter column if the stored version still matches.
// The version predicate in the WHERE clause makes the check and the write atomic.
func (r *PostgresPortfolioRepository) Replace(ctx context.Context, p *models.Portfolio, expectedVersion int) error {
	enc, err := encodePortfolioJSON(p)
	if err != nil {
		return err
	}

	query := `
		UPDATE portfolios
		SET slug = $1, title = $2, description = $3, template = $4, theme = $5,
		    sections = $6, is_public = $7, published_at = $8, collaborators = $9,
		    version = $10, backups = $11, updated_at = $12
		WHERE id = $13 AND version = $14
	`

	result, err := r.pool.Exec(ctx, query,
		p.Slug,
		p.Title,
		p.Description,
		p.Template,
		enc.theme,
		enc.sections,
		p.IsPublic,
		p.PublishedAt,
		enc.collaborators,
		p.Version,
		enc.backups,
		p.UpdatedAt,
		p.ID,
		expectedVersion,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return slugConflict(p.Slug)
		}
		if IsPgInvalidTextError(err) {
			return fmt.Errorf("portfolio %s: %w", p.ID, domain.ErrNotFound)
		}
		if IsPgCheckViolation(err) {
			return &domain.ValidationError{Message: fmt.Sprintf("portfolio rejected by schema constraint: %v", err)}
		}
		return fmt.Errorf("replace portfolio: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a missing row from a stale version
		if _, err := r.GetByID(ctx, p.ID); err != nil {
			return err
		}
		return &domain.VersionConflictError{ResourceID: p.ID, ExpectedVersion: expectedVersion}
	}

	return nil
}

// IncrementStats applies delta in a single UPDATE so concurrent increments never overwrite each other
func (r *PostgresPortfolioRepository) IncrementStats(ctx context.Context, id string, delta models.StatsDelta) (*models.Stats, error) {
	query := `
		UPDATE portfolios
		SET views = views + $1,
		    unique_views = unique_views + $2,
		    shares = shares + $3,
		    downloads = downloads + $4,
		    last_viewed = COALESCE($5, last_viewed)
		WHERE id = $6
		RETURNING views, unique_views, last_viewed, shares, downloads
	`

	var stats models.Stats
	err := r.pool.QueryRow(ctx, query,
		delta.Views,
		delta.UniqueViews,
		delta.Shares,
		delta.Downloads,
		delta.ViewedAt,
		id,
	).Scan(
		&stats.Views,
		&stats.UniqueViews,
		&stats.LastViewed,
		&stats.Shares,
		&stats.Downloads,
	)
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("portfolio %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("increment stats: %w", err)
	}

	return &stats, nil
}

// Delete permanently removes a portfolio
func (r *PostgresPortfolioRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM portfolios WHERE id = $1`, id)
	if err != nil {
		if IsPgInvalidTextError(err) {
			return fmt.Errorf("portfolio %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete portfolio: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("portfolio %s: %w", id, domain.ErrNotFound)
	}

	r.logger.Debug("portfolio row deleted", "id", id)
	return nil
}

// ListByOwner lists portfolios owned by ownerID, ordered by updated_at DESC
func (r *PostgresPortfolioRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Portfolio, error) {
	query := `
		SELECT ` + portfolioColumns + `
		FROM portfolios
		WHERE owner_id = $1
		ORDER BY updated_at DESC
	`
	return r.list(ctx, query, ownerID)
}

// ListByCollaborator lists portfolios where userID is an accepted collaborator
func (r *PostgresPortfolioRepository) ListByCollaborator(ctx context.Context, userID string) ([]models.Portfolio, error) {
	query := `
		SELECT ` + portfolioColumns + `
		FROM portfolios
		WHERE collaborators @> jsonb_build_array(jsonb_build_object('user_id', $1::text))
		  AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(collaborators) c
			WHERE c->>'user_id' = $1 AND c->>'accepted_at' IS NOT NULL
		  )
		ORDER BY updated_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *PostgresPortfolioRepository) list(ctx context.Context, query string, arg string) ([]models.Portfolio, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []models.Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("scan portfolio: %w", err)
		}
		portfolios = append(portfolios, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate portfolios: %w", err)
	}

	// Return empty slice instead of nil if no portfolios
	if portfolios == nil {
		portfolios = []models.Portfolio{}
	}

	return portfolios, nil
}

// scanPortfolio scans one row selected with portfolioColumns
func scanPortfolio(row pgx.Row) (*models.Portfolio, error) {
	var (
		p                                        models.Portfolio
		theme, sections, collaborators, backups []byte
		publishedAt, lastViewed                  *time.Time
	)

	err := row.Scan(
		&p.ID,
		&p.Slug,
		&p.OwnerID,
		&p.Title,
		&p.Description,
		&p.Template,
		&theme,
		&sections,
		&p.IsPublic,
		&publishedAt,
		&collaborators,
		&p.Version,
		&backups,
		&p.Stats.Views,
		&p.Stats.UniqueViews,
		&lastViewed,
		&p.Stats.Shares,
		&p.Stats.Downloads,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.PublishedAt = publishedAt
	p.Stats.LastViewed = lastViewed

	if len(theme) > 0 {
		if err := json.Unmarshal(theme, &p.Theme); err != nil {
			return nil, fmt.Errorf("decode theme: %w", err)
		}
	}
	if err := json.Unmarshal(sections, &p.Sections); err != nil {
		return nil, fmt.Errorf("decode sections: %w", err)
	}
	if err := json.Unmarshal(collaborators, &p.Collaborators); err != nil {
		return nil, fmt.Errorf("decode collaborators: %w", err)
	}
	if err := json.Unmarshal(backups, &p.Backups); err != nil {
		return nil, fmt.Errorf("decode backups: %w", err)
	}

	return &p, nil
}

func slugConflict(slug string) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("slug '%s' already exists", slug),
		ResourceType: "slug",
		ResourceID:   slug,
	}
}

package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"folio/internal/domain"
	models "folio/internal/domain/models/portfolio"
	portfolioRepo "folio/internal/domain/repositories/portfolio"
	"folio/internal/domain/services"
	portfolioSvc "folio/internal/domain/services/portfolio"
)

// engagementService implements the EngagementService interface.
// Every counter change is a single atomic increment in the store;
// version and backups are never touched.
type engagementService struct {
	repo   portfolioRepo.PortfolioRepository
	access services.AccessEvaluator
	now    func() time.Time
	logger *slog.Logger
}

// NewEngagementService creates a new engagement counter service
func NewEngagementService(
	repo portfolioRepo.PortfolioRepository,
	access services.AccessEvaluator,
	logger *slog.Logger,
) portfolioSvc.EngagementService {
	return &engagementService{
		repo:   repo,
		access: access,
		now:    time.Now,
		logger: logger,
	}
}

// RecordView counts a view and, when isUnique, a unique view
func (s *engagementService) RecordView(ctx context.Context, id, principal string, isUnique bool) (*models.Stats, error) {
	now := s.now().UTC()
	delta := models.StatsDelta{Views: 1, ViewedAt: &now}
	if isUnique {
		delta.UniqueViews = 1
	}
	return s.record(ctx, id, principal, delta)
}

// RecordShare counts a share
func (s *engagementService) RecordShare(ctx context.Context, id, principal string) (*models.Stats, error) {
	return s.record(ctx, id, principal, models.StatsDelta{Shares: 1})
}

// RecordDownload counts a download
func (s *engagementService) RecordDownload(ctx context.Context, id, principal string) (*models.Stats, error) {
	return s.record(ctx, id, principal, models.StatsDelta{Downloads: 1})
}

func (s *engagementService) record(ctx context.Context, id, principal string, delta models.StatsDelta) (*models.Stats, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.access.CanView(doc, principal) {
		return nil, fmt.Errorf("portfolio %s: %w", id, domain.ErrNotFound)
	}

	stats, err := s.repo.IncrementStats(ctx, id, delta)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("engagement recorded",
		"id", id,
		"views", delta.Views,
		"unique_views", delta.UniqueViews,
		"shares", delta.Shares,
		"downloads", delta.Downloads,
	)
	return stats, nil
}

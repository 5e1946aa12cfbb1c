package handler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net"
	"net/http"

	models "folio/internal/domain/models/portfolio"
	portfolioRepo "folio/internal/domain/repositories/portfolio"
	portfolioSvc "folio/internal/domain/services/portfolio"
	"folio/internal/httputil"
)

// PublicHandler serves portfolios by slug and records engagement.
// Routes accept anonymous callers.
type PublicHandler struct {
	lifecycle  portfolioSvc.LifecycleService
	engagement portfolioSvc.EngagementService
	visits     portfolioRepo.VisitTracker // nil disables unique view counting
	logger     *slog.Logger
}

// NewPublicHandler creates a new public handler. visits may be nil.
func NewPublicHandler(
	lifecycle portfolioSvc.LifecycleService,
	engagement portfolioSvc.EngagementService,
	visits portfolioRepo.VisitTracker,
	logger *slog.Logger,
) *PublicHandler {
	return &PublicHandler{
		lifecycle:  lifecycle,
		engagement: engagement,
		visits:     visits,
		logger:     logger,
	}
}

// RegisterRoutes mounts the public routes on mux
func (h *PublicHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /public/portfolios/{slug}", h.ViewPortfolio)
	mux.HandleFunc("POST /public/portfolios/{slug}/share", h.SharePortfolio)
	mux.HandleFunc("POST /public/portfolios/{slug}/download", h.DownloadPortfolio)
}

// ViewPortfolio returns a portfolio by slug and counts the view
// GET /public/portfolios/{slug}
func (h *PublicHandler) ViewPortfolio(w http.ResponseWriter, r *http.Request) {
	principal := httputil.GetUserID(r)

	doc, err := h.lifecycle.GetPortfolioBySlug(r.Context(), r.PathValue("slug"), principal)
	if err != nil {
		handleError(w, err)
		return
	}

	isUnique := h.firstVisit(r, doc.ID, principal)

	stats, err := h.engagement.RecordView(r.Context(), doc.ID, principal, isUnique)
	if err != nil {
		handleError(w, err)
		return
	}
	doc.Stats = *stats

	httputil.RespondJSON(w, http.StatusOK, publicView(doc))
}

// SharePortfolio counts a share
// POST /public/portfolios/{slug}/share
func (h *PublicHandler) SharePortfolio(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, h.engagement.RecordShare)
}

// DownloadPortfolio counts a download
// POST /public/portfolios/{slug}/download
func (h *PublicHandler) DownloadPortfolio(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, h.engagement.RecordDownload)
}

func (h *PublicHandler) record(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id, principal string) (*models.Stats, error),
) {
	principal := httputil.GetUserID(r)

	doc, err := h.lifecycle.GetPortfolioBySlug(r.Context(), r.PathValue("slug"), principal)
	if err != nil {
		handleError(w, err)
		return
	}

	stats, err := op(r.Context(), doc.ID, principal)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, stats)
}

// firstVisit reports whether this is the visitor's first view today.
// Tracker failures count the view as repeat rather than failing the request.
func (h *PublicHandler) firstVisit(r *http.Request, portfolioID, principal string) bool {
	if h.visits == nil {
		return false
	}

	first, err := h.visits.FirstVisit(r.Context(), portfolioID, visitorKey(r, principal))
	if err != nil {
		h.logger.Warn("visit tracking failed",
			"portfolio_id", portfolioID,
			"error", err,
		)
		return false
	}
	return first
}

// visitorKey identifies a visitor: the principal when authenticated, otherwise
// a hash of client address and user agent.
func visitorKey(r *http.Request, principal string) string {
	if principal != "" {
		return "user:" + principal
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	sum := sha256.Sum256([]byte(host + "|" + r.UserAgent()))
	return "anon:" + hex.EncodeToString(sum[:])
}

// publicView strips edit history and the collaborator list
func publicView(doc *models.Portfolio) *models.Portfolio {
	doc.Backups = nil
	doc.Collaborators = []models.Collaborator{}
	return doc
}

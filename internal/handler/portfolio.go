package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	models "folio/internal/domain/models/portfolio"
	portfolioSvc "folio/internal/domain/services/portfolio"
	"folio/internal/httputil"
)

// PortfolioHandler handles authenticated portfolio HTTP requests
type PortfolioHandler struct {
	service portfolioSvc.LifecycleService
	logger  *slog.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(service portfolioSvc.LifecycleService, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		service: service,
		logger:  logger,
	}
}

// updatePortfolioRequest is the PATCH body. Description uses OptionalString so
// that an explicit null clears it while an absent field leaves it unchanged.
type updatePortfolioRequest struct {
	Title       *string                 `json:"title"`
	Description httputil.OptionalString `json:"description"`
	Template    *string                 `json:"template"`
	Theme       models.JSONMap          `json:"theme"`
	Sections    *[]models.Section       `json:"sections"`
}

// RegisterRoutes mounts the portfolio routes on mux
func (h *PortfolioHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/portfolios", h.CreatePortfolio)
	mux.HandleFunc("GET /api/portfolios", h.ListPortfolios)
	mux.HandleFunc("GET /api/portfolios/{id}", h.GetPortfolio)
	mux.HandleFunc("PATCH /api/portfolios/{id}", h.UpdatePortfolio)
	mux.HandleFunc("DELETE /api/portfolios/{id}", h.DeletePortfolio)
	mux.HandleFunc("POST /api/portfolios/{id}/publish", h.Publish)
	mux.HandleFunc("POST /api/portfolios/{id}/unpublish", h.Unpublish)
	mux.HandleFunc("POST /api/portfolios/{id}/duplicate", h.Duplicate)
	mux.HandleFunc("POST /api/portfolios/{id}/collaborators", h.InviteCollaborator)
	mux.HandleFunc("POST /api/portfolios/{id}/collaborators/accept", h.AcceptInvitation)
	mux.HandleFunc("DELETE /api/portfolios/{id}/collaborators/{userID}", h.RemoveCollaborator)
	mux.HandleFunc("GET /api/portfolios/{id}/backups", h.ListBackups)
	mux.HandleFunc("POST /api/portfolios/{id}/backups/{version}/restore", h.RestoreBackup)
}

// CreatePortfolio creates a new draft portfolio
// POST /api/portfolios
func (h *PortfolioHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req portfolioSvc.CreatePortfolioRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.OwnerID = userID

	doc, err := h.service.CreatePortfolio(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// ListPortfolios lists the caller's portfolios
// GET /api/portfolios?scope=owned|shared
func (h *PortfolioHandler) ListPortfolios(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var (
		docs []models.Portfolio
		err  error
	)
	switch scope := r.URL.Query().Get("scope"); scope {
	case "", "owned":
		docs, err = h.service.ListOwned(r.Context(), userID)
	case "shared":
		docs, err = h.service.ListShared(r.Context(), userID)
	default:
		httputil.RespondError(w, http.StatusBadRequest, "scope must be owned or shared")
		return
	}
	if err != nil {
		handleError(w, err)
		return
	}
	if docs == nil {
		docs = []models.Portfolio{}
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

// GetPortfolio retrieves a portfolio by ID
// GET /api/portfolios/{id}
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	doc, err := h.service.GetPortfolio(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// UpdatePortfolio applies a partial update
// PATCH /api/portfolios/{id}
func (h *PortfolioHandler) UpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var dto updatePortfolioRequest
	if err := httputil.ParseJSON(w, r, &dto); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := &portfolioSvc.UpdatePortfolioRequest{
		Title: dto.Title,
		Description: portfolioSvc.OptionalDescription{
			Present: dto.Description.Present,
			Value:   dto.Description.Value,
		},
		Template: dto.Template,
		Theme:    dto.Theme,
		Sections: dto.Sections,
	}

	doc, err := h.service.UpdatePortfolio(r.Context(), r.PathValue("id"), userID, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeletePortfolio permanently removes a portfolio
// DELETE /api/portfolios/{id}
func (h *PortfolioHandler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.DeletePortfolio(r.Context(), r.PathValue("id"), userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Publish makes a portfolio public
// POST /api/portfolios/{id}/publish
func (h *PortfolioHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Publish)
}

// Unpublish returns a portfolio to draft
// POST /api/portfolios/{id}/unpublish
func (h *PortfolioHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Unpublish)
}

// AcceptInvitation accepts the caller's pending invitation
// POST /api/portfolios/{id}/collaborators/accept
func (h *PortfolioHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.AcceptInvitation)
}

// Duplicate copies a portfolio into a new draft owned by the caller
// POST /api/portfolios/{id}/duplicate
func (h *PortfolioHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	doc, err := h.service.Duplicate(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// InviteCollaborator invites a user to collaborate
// POST /api/portfolios/{id}/collaborators
func (h *PortfolioHandler) InviteCollaborator(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req portfolioSvc.InviteCollaboratorRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.service.InviteCollaborator(r.Context(), r.PathValue("id"), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// RemoveCollaborator removes a collaborator
// DELETE /api/portfolios/{id}/collaborators/{userID}
func (h *PortfolioHandler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	doc, err := h.service.RemoveCollaborator(r.Context(), r.PathValue("id"), userID, r.PathValue("userID"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// ListBackups lists retained backups, newest first
// GET /api/portfolios/{id}/backups
func (h *PortfolioHandler) ListBackups(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	backups, err := h.service.ListBackups(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	if backups == nil {
		backups = []models.Backup{}
	}

	httputil.RespondJSON(w, http.StatusOK, backups)
}

// RestoreBackup restores the content of a retained backup
// POST /api/portfolios/{id}/backups/{version}/restore
func (h *PortfolioHandler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	version, err := strconv.Atoi(r.PathValue("version"))
	if err != nil || version < 1 {
		httputil.RespondError(w, http.StatusBadRequest, "version must be a positive integer")
		return
	}

	doc, err := h.service.RestoreBackup(r.Context(), r.PathValue("id"), userID, version)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// transition runs a body-less state change on the portfolio in the path
func (h *PortfolioHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id, principal string) (*models.Portfolio, error),
) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	doc, err := op(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

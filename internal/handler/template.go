package handler

import (
	"log/slog"
	"net/http"

	"folio/internal/httputil"
	"folio/internal/templates"
)

// TemplateHandler serves the template catalog
type TemplateHandler struct {
	registry *templates.Registry
	logger   *slog.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(registry *templates.Registry, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{
		registry: registry,
		logger:   logger,
	}
}

// RegisterRoutes mounts the template routes on mux
func (h *TemplateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/templates", h.ListTemplates)
}

// ListTemplates returns every template and section type
// GET /api/templates
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, templates.Catalog{
		DefaultTemplate: h.registry.DefaultTemplate(),
		SectionTypes:    h.registry.ListSectionTypes(),
		Templates:       h.registry.ListTemplates(),
	})
}

package handler

import (
	"log/slog"
	"net/http"

	models "chaincatalog/internal/domain/models/catalog"
	catalogSvc "chaincatalog/internal/domain/services/catalog"
	"chaincatalog/internal/httputil"
)

// TemplateHandler handles template CRUD requests
type TemplateHandler struct {
	templateService catalogSvc.TemplateService
	logger          *slog.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateService catalogSvc.TemplateService, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
		logger:          logger,
	}
}

// ListTemplates lists every template
// GET /api/templates
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templateService.ListTemplates(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if templates == nil {
		templates = []models.Template{}
	}
	httputil.RespondJSON(w, http.StatusOK, templates)
}

// CreateTemplate creates a template
// POST /api/templates
// Returns 409 with the stored template when the id is taken
func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var template models.Template
	if err := httputil.ParseJSON(w, r, &template); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.templateService.CreateTemplate(r.Context(), &template)
	if err != nil {
		HandleCreateConflict(w, h.logger, err, func(id string) (*models.Template, error) {
			return h.templateService.GetTemplate(r.Context(), id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, created)
}

// GetTemplate retrieves a template by ID
// GET /api/templates/{id}
func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	template, err := h.templateService.GetTemplate(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, template)
}

// UpdateTemplate replaces a template. The path id wins over the body.
// PUT /api/templates/{id}
func (h *TemplateHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var template models.Template
	if err := httputil.ParseJSON(w, r, &template); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	template.ID = id

	updated, err := h.templateService.UpdateTemplate(r.Context(), &template)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, updated)
}

// DeleteTemplate removes a template
// DELETE /api/templates/{id}
func (h *TemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.templateService.DeleteTemplate(r.Context(), id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

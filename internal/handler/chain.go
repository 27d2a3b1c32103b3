package handler

import (
	"log/slog"
	"net/http"

	models "chaincatalog/internal/domain/models/catalog"
	catalogSvc "chaincatalog/internal/domain/services/catalog"
	"chaincatalog/internal/httputil"
)

// ChainHandler handles chain HTTP requests
type ChainHandler struct {
	chainService catalogSvc.ChainService
	logger       *slog.Logger
}

// NewChainHandler creates a new chain handler
func NewChainHandler(chainService catalogSvc.ChainService, logger *slog.Logger) *ChainHandler {
	return &ChainHandler{
		chainService: chainService,
		logger:       logger,
	}
}

// CreateChain creates a chain inside a folder or at root level
// POST /api/chains
func (h *ChainHandler) CreateChain(w http.ResponseWriter, r *http.Request) {
	var req catalogSvc.CreateChainRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chain, err := h.chainService.CreateChain(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, chain)
}

// GetChain retrieves a chain by ID
// GET /api/chains/{id}
func (h *ChainHandler) GetChain(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	chain, err := h.chainService.GetChain(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chain)
}

// MoveChain reassigns the parent folder
// POST /api/chains/{id}/move
func (h *ChainHandler) MoveChain(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req catalogSvc.MoveFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TargetFolderID != nil && *req.TargetFolderID == "" {
		req.TargetFolderID = nil
	}

	chain, err := h.chainService.MoveChain(r.Context(), id, req.TargetFolderID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chain)
}

// DeleteChain removes a chain and its deployments
// DELETE /api/chains/{id}
func (h *ChainHandler) DeleteChain(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.chainService.DeleteChain(r.Context(), id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddElement appends an element to a chain
// POST /api/chains/{id}/elements
func (h *ChainHandler) AddElement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req catalogSvc.CreateElementRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	element, err := h.chainService.AddElement(r.Context(), id, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, element)
}

// GetElements returns the chain elements with template references inlined
// GET /api/chains/{id}/elements
func (h *ChainHandler) GetElements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	elements, err := h.chainService.MaterializeElements(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if elements == nil {
		elements = []models.ChainElement{}
	}

	httputil.RespondJSON(w, http.StatusOK, elements)
}

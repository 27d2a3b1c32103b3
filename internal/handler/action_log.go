package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	models "chaincatalog/internal/domain/models/catalog"
	catalogSvc "chaincatalog/internal/domain/services/catalog"
	"chaincatalog/internal/httputil"
)

const defaultActionLogLimit = 100

// ActionLogHandler exposes the audit trail
type ActionLogHandler struct {
	actionLogger catalogSvc.ActionLogger
	logger       *slog.Logger
}

func NewActionLogHandler(actionLogger catalogSvc.ActionLogger, logger *slog.Logger) *ActionLogHandler {
	return &ActionLogHandler{
		actionLogger: actionLogger,
		logger:       logger,
	}
}

// ListActionLogs returns the newest records first
// GET /api/action-logs?limit=
func (h *ActionLogHandler) ListActionLogs(w http.ResponseWriter, r *http.Request) {
	limit := defaultActionLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.RespondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	logs, err := h.actionLogger.List(r.Context(), limit)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if logs == nil {
		logs = []models.ActionLog{}
	}
	httputil.RespondJSON(w, http.StatusOK, logs)
}

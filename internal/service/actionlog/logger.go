// Package actionlog implements the audit sink used by the catalog services.
package actionlog

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"chaincatalog/internal/auth"
	"chaincatalog/internal/config"
	models "chaincatalog/internal/domain/models/catalog"
	catalogSvc "chaincatalog/internal/domain/services/catalog"
)

// Storage persists action logs
type Storage interface {
	Append(ctx context.Context, action *models.ActionLog) error
	List(ctx context.Context, limit int) ([]models.ActionLog, error)
}

// Logger implements catalog.ActionLogger. Storage may be nil, in which case
// records only go to the structured log.
type Logger struct {
	storage Storage
	logger  *slog.Logger
	now     func() time.Time
}

// NewLogger creates a new action logger
func NewLogger(storage Storage, logger *slog.Logger) *Logger {
	return &Logger{storage: storage, logger: logger, now: time.Now}
}

var _ catalogSvc.ActionLogger = (*Logger)(nil)

// LogAction stamps and records an action. Failures are logged and swallowed.
func (l *Logger) LogAction(ctx context.Context, action models.ActionLog) {
	if action.ID == "" {
		action.ID = uuid.NewString()
	}
	if action.ActionTime.IsZero() {
		action.ActionTime = l.now().UTC()
	}
	if action.UserID == "" {
		if userID, ok := auth.UserIDFromContext(ctx); ok {
			action.UserID = userID
		}
	}

	l.logger.Info("action",
		"operation", action.Operation,
		"entity_type", action.EntityType,
		"entity_id", action.EntityID,
		"entity_name", action.EntityName,
		"parent_id", action.ParentID,
		"user_id", action.UserID,
	)

	if l.storage == nil {
		return
	}
	if err := l.storage.Append(ctx, &action); err != nil {
		l.logger.Error("failed to persist action log",
			"operation", action.Operation,
			"entity_id", action.EntityID,
			"error", err,
		)
	}
}

// List returns the most recent actions, newest first
func (l *Logger) List(ctx context.Context, limit int) ([]models.ActionLog, error) {
	if limit <= 0 || limit > config.MaxActionLogPage {
		limit = config.MaxActionLogPage
	}
	if l.storage == nil {
		return []models.ActionLog{}, nil
	}
	return l.storage.List(ctx, limit)
}

package catalog

import (
	"context"

	models "chaincatalog/internal/domain/models/catalog"
)

// ActionLogger is the audit sink. LogAction never fails the caller.
type ActionLogger interface {
	LogAction(ctx context.Context, action models.ActionLog)
	List(ctx context.Context, limit int) ([]models.ActionLog, error)
}

package catalog

import (
	"context"

	models "chaincatalog/internal/domain/models/catalog"
)

// ElementRepository defines data access operations for chain elements
type ElementRepository interface {
	Create(ctx context.Context, element *models.ChainElement) error
	ListByChain(ctx context.Context, chainID string) ([]models.ChainElement, error)
}

package catalog

import (
	"context"

	models "chaincatalog/internal/domain/models/catalog"
)

// ChainRepository defines data access operations for chains
type ChainRepository interface {
	Create(ctx context.Context, chain *models.Chain) error
	GetByID(ctx context.Context, id string) (*models.Chain, error)
	Update(ctx context.Context, chain *models.Chain) error
	Delete(ctx context.Context, id string) error

	// ListByFolders lists chains whose parent folder is one of folderIDs
	ListByFolders(ctx context.Context, folderIDs []string) ([]models.Chain, error)
}

package catalog

import (
	"context"

	models "chaincatalog/internal/domain/models/catalog"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create inserts a new folder; an empty ID is generated
	Create(ctx context.Context, folder *models.Folder) error

	// Save inserts or updates a folder by ID
	Save(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// Update updates name, description and parent of a folder
	Update(ctx context.Context, folder *models.Folder) error

	// Delete deletes a folder; child folders and chains are removed by cascade
	Delete(ctx context.Context, id string) error

	// ListChildren lists immediate child folders (nil = root level)
	ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error)

	// ListNested lists every descendant folder of the given folder (excluding it)
	ListNested(ctx context.Context, id string) ([]models.Folder, error)

	// ListAncestors returns the folder and all its ancestors, ordered root first
	ListAncestors(ctx context.Context, id string) ([]models.Folder, error)

	// LockHierarchy serializes structural changes for the rest of the transaction
	LockHierarchy(ctx context.Context) error
}

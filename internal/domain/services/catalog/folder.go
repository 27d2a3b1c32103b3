package catalog

import (
	"context"

	models "chaincatalog/internal/domain/models/catalog"
)

// FolderService maintains the folder/chain tree
type FolderService interface {
	// CreateFolder creates a new folder under an optional parent
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// GetFolder retrieves a folder by ID
	GetFolder(ctx context.Context, id string) (*models.Folder, error)

	// ListRoot lists folders without a parent
	ListRoot(ctx context.Context) ([]models.Folder, error)

	// UpdateFolder renames a folder or changes its description
	UpdateFolder(ctx context.Context, id string, req *UpdateFolderRequest) (*models.Folder, error)

	// MoveFolder reparents a folder; a nil target makes it a root folder
	MoveFolder(ctx context.Context, id string, targetID *string) (*models.Folder, error)

	// DeleteFolder deletes a folder with every nested folder and chain
	DeleteFolder(ctx context.Context, id string) error

	// GetAncestors returns the breadcrumb path, root first, ending with the folder itself
	GetAncestors(ctx context.Context, id string) ([]models.PathEntry, error)

	// FindNestedChains lists chains in the folder or any descendant, narrowed by filter
	FindNestedChains(ctx context.Context, id string, filter models.ChainFilter) ([]models.Chain, error)

	// FindNestedFolders lists every descendant folder
	FindNestedFolders(ctx context.Context, id string) ([]models.Folder, error)

	// Reattach persists a client-built subtree against already persisted parents
	Reattach(ctx context.Context, state *models.Folder) (*models.Folder, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	ParentFolderID *string `json:"parent_folder_id,omitempty"` // null for root
}

// UpdateFolderRequest represents a folder update request
type UpdateFolderRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// MoveFolderRequest represents a folder move request
type MoveFolderRequest struct {
	TargetFolderID *string `json:"target_folder_id"` // null = move to root
}

// DeploymentCleaner tears down live deployments of a chain. It is called for
// every chain of a deleted subtree before the rows are removed and must be
// idempotent.
type DeploymentCleaner interface {
	DeleteAllByChainID(ctx context.Context, chainID string) error
}

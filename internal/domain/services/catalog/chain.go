package catalog

import (
	"context"

	models "chaincatalog/internal/domain/models/catalog"
)

// ChainService handles chain business logic
type ChainService interface {
	CreateChain(ctx context.Context, req *CreateChainRequest) (*models.Chain, error)
	GetChain(ctx context.Context, id string) (*models.Chain, error)

	// MoveChain reassigns the parent folder of a chain (nil = root level)
	MoveChain(ctx context.Context, id string, targetID *string) (*models.Chain, error)

	// DeleteChain removes the chain after tearing down its deployments
	DeleteChain(ctx context.Context, id string) error

	AddElement(ctx context.Context, chainID string, req *CreateElementRequest) (*models.ChainElement, error)

	// MaterializeElements loads the chain elements with template references inlined
	MaterializeElements(ctx context.Context, chainID string) ([]models.ChainElement, error)
}

// CreateChainRequest represents a chain creation request
type CreateChainRequest struct {
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	ParentFolderID *string `json:"parent_folder_id,omitempty"`
}

// CreateElementRequest represents a chain element creation request
type CreateElementRequest struct {
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties"`
}

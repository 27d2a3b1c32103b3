package catalog

import (
	"context"

	models "chaincatalog/internal/domain/models/catalog"
)

// DeploymentRepository stores runtime deployments of chains
type DeploymentRepository interface {
	Create(ctx context.Context, deployment *models.Deployment) error
	ListByChain(ctx context.Context, chainID string) ([]models.Deployment, error)

	// DeleteAllByChainID removes every deployment of a chain; deleting nothing is not an error
	DeleteAllByChainID(ctx context.Context, chainID string) error
}

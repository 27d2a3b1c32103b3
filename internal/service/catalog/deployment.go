package catalog

import (
	"context"

	catalogSvc "chaincatalog/internal/domain/services/catalog"
)

// DeploymentCleanerFunc adapts a function to the DeploymentCleaner interface
type DeploymentCleanerFunc func(ctx context.Context, chainID string) error

func (f DeploymentCleanerFunc) DeleteAllByChainID(ctx context.Context, chainID string) error {
	return f(ctx, chainID)
}

var _ catalogSvc.DeploymentCleaner = DeploymentCleanerFunc(nil)

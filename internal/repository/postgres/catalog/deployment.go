package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	models "chaincatalog/internal/domain/models/catalog"
	"chaincatalog/internal/domain/repositories"
	"chaincatalog/internal/repository/postgres"
)

// DeploymentRepository implements catalog.DeploymentRepository
type DeploymentRepository struct {
	db     repositories.DBTX
	tables *postgres.TableNames
}

func (r *DeploymentRepository) Create(ctx context.Context, deployment *models.Deployment) error {
	if deployment.ID == "" {
		deployment.ID = uuid.NewString()
	}
	if deployment.Domain == "" {
		deployment.Domain = "default"
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, chain_id, domain)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, r.tables.Deployments)

	if err := r.db.QueryRow(ctx, query, deployment.ID, deployment.ChainID, deployment.Domain).
		Scan(&deployment.CreatedAt); err != nil {
		return fmt.Errorf("create deployment: %w", err)
	}
	return nil
}

func (r *DeploymentRepository) ListByChain(ctx context.Context, chainID string) ([]models.Deployment, error) {
	query := fmt.Sprintf(`
		SELECT id, chain_id, domain, created_at FROM %s
		WHERE chain_id = $1
		ORDER BY id
	`, r.tables.Deployments)

	rows, err := r.db.Query(ctx, query, chainID)
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}
	defer rows.Close()

	var deployments []models.Deployment
	for rows.Next() {
		var d models.Deployment
		if err := rows.Scan(&d.ID, &d.ChainID, &d.Domain, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan deployment: %w", err)
		}
		deployments = append(deployments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deployments: %w", err)
	}
	return deployments, nil
}

func (r *DeploymentRepository) DeleteAllByChainID(ctx context.Context, chainID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE chain_id = $1`, r.tables.Deployments)
	if _, err := r.db.Exec(ctx, query, chainID); err != nil {
		return fmt.Errorf("delete deployments of chain %s: %w", chainID, err)
	}
	return nil
}

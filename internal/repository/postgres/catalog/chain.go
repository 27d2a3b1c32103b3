package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"chaincatalog/internal/domain"
	models "chaincatalog/internal/domain/models/catalog"
	"chaincatalog/internal/domain/repositories"
	"chaincatalog/internal/repository/postgres"
)

// ChainRepository implements catalog.ChainRepository
type ChainRepository struct {
	db     repositories.DBTX
	tables *postgres.TableNames
}

const chainColumns = "id, name, description, parent_id, created_at, modified_at"

func scanChain(row pgx.Row) (models.Chain, error) {
	var c models.Chain
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ParentID, &c.CreatedAt, &c.ModifiedAt)
	return c, err
}

func (r *ChainRepository) Create(ctx context.Context, chain *models.Chain) error {
	if chain.ID == "" {
		chain.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, description, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, modified_at
	`, r.tables.Chains)

	err := r.db.QueryRow(ctx, query, chain.ID, chain.Name, chain.Description, chain.ParentID).
		Scan(&chain.CreatedAt, &chain.ModifiedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("chain %s already exists", chain.ID),
				ResourceType: "chain",
				ResourceID:   chain.ID,
			}
		}
		return fmt.Errorf("create chain: %w", err)
	}
	return nil
}

func (r *ChainRepository) GetByID(ctx context.Context, id string) (*models.Chain, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, chainColumns, r.tables.Chains)

	c, err := scanChain(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("chain %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get chain: %w", err)
	}
	return &c, nil
}

func (r *ChainRepository) Update(ctx context.Context, chain *models.Chain) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, description = $3, parent_id = $4, modified_at = now()
		WHERE id = $1
		RETURNING created_at, modified_at
	`, r.tables.Chains)

	err := r.db.QueryRow(ctx, query, chain.ID, chain.Name, chain.Description, chain.ParentID).
		Scan(&chain.CreatedAt, &chain.ModifiedAt)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("chain %s: %w", chain.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update chain: %w", err)
	}
	return nil
}

func (r *ChainRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Chains)

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete chain: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("chain %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *ChainRepository) ListByFolders(ctx context.Context, folderIDs []string) ([]models.Chain, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE parent_id = ANY($1)
		ORDER BY name, id
	`, chainColumns, r.tables.Chains)

	rows, err := r.db.Query(ctx, query, folderIDs)
	if err != nil {
		return nil, fmt.Errorf("list chains: %w", err)
	}
	defer rows.Close()

	var chains []models.Chain
	for rows.Next() {
		c, err := scanChain(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chain: %w", err)
		}
		chains = append(chains, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chains: %w", err)
	}
	return chains, nil
}

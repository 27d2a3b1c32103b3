package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"chaincatalog/internal/domain"
	models "chaincatalog/internal/domain/models/catalog"
	"chaincatalog/internal/domain/repositories"
	"chaincatalog/internal/repository/postgres"
)

// ElementRepository implements catalog.ElementRepository
type ElementRepository struct {
	db     repositories.DBTX
	tables *postgres.TableNames
}

func (r *ElementRepository) Create(ctx context.Context, element *models.ChainElement) error {
	if element.ID == "" {
		element.ID = uuid.NewString()
	}
	props := element.Properties
	if props == nil {
		props = map[string]any{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, chain_id, type, name, properties)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, modified_at
	`, r.tables.Elements)

	err := r.db.QueryRow(ctx, query, element.ID, element.ChainID, element.Type, element.Name, props).
		Scan(&element.CreatedAt, &element.ModifiedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("element %s already exists", element.ID),
				ResourceType: "element",
				ResourceID:   element.ID,
			}
		}
		return fmt.Errorf("create element: %w", err)
	}
	return nil
}

// ListByChain returns elements in insertion order
func (r *ElementRepository) ListByChain(ctx context.Context, chainID string) ([]models.ChainElement, error) {
	query := fmt.Sprintf(`
		SELECT id, chain_id, type, name, properties, created_at, modified_at
		FROM %s
		WHERE chain_id = $1
		ORDER BY seq
	`, r.tables.Elements)

	rows, err := r.db.Query(ctx, query, chainID)
	if err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}
	defer rows.Close()

	var elements []models.ChainElement
	for rows.Next() {
		var e models.ChainElement
		if err := rows.Scan(&e.ID, &e.ChainID, &e.Type, &e.Name, &e.Properties, &e.CreatedAt, &e.ModifiedAt); err != nil {
			return nil, fmt.Errorf("scan element: %w", err)
		}
		elements = append(elements, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate elements: %w", err)
	}
	return elements, nil
}

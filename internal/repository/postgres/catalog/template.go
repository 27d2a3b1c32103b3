package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"chaincatalog/internal/domain"
	models "chaincatalog/internal/domain/models/catalog"
	"chaincatalog/internal/domain/repositories"
	"chaincatalog/internal/repository/postgres"
)

// TemplateRepository implements catalog.TemplateRepository
type TemplateRepository struct {
	db     repositories.DBTX
	tables *postgres.TableNames
}

const templateColumns = "id, name, description, properties, created_at, modified_at"

func scanTemplate(row pgx.Row) (models.Template, error) {
	var t models.Template
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Properties, &t.CreatedAt, &t.ModifiedAt)
	return t, err
}

func nonNilProperties(props map[string]any) map[string]any {
	if props == nil {
		return map[string]any{}
	}
	return props
}

func (r *TemplateRepository) Create(ctx context.Context, template *models.Template) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, description, properties)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, modified_at
	`, r.tables.Templates)

	err := r.db.QueryRow(ctx, query,
		template.ID,
		template.Name,
		template.Description,
		nonNilProperties(template.Properties),
	).Scan(&template.CreatedAt, &template.ModifiedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("template %s already exists", template.ID),
				ResourceType: "template",
				ResourceID:   template.ID,
			}
		}
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) Update(ctx context.Context, template *models.Template) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, description = $3, properties = $4, modified_at = now()
		WHERE id = $1
		RETURNING created_at, modified_at
	`, r.tables.Templates)

	err := r.db.QueryRow(ctx, query,
		template.ID,
		template.Name,
		template.Description,
		nonNilProperties(template.Properties),
	).Scan(&template.CreatedAt, &template.ModifiedAt)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("template %s: %w", template.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*models.Template, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, templateColumns, r.tables.Templates)

	t, err := scanTemplate(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return &t, nil
}

func (r *TemplateRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Template, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = ANY($1)
		ORDER BY created_at, id
	`, templateColumns, r.tables.Templates)
	return r.list(ctx, query, ids)
}

func (r *TemplateRepository) List(ctx context.Context) ([]models.Template, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at, id`, templateColumns, r.tables.Templates)
	return r.list(ctx, query)
}

func (r *TemplateRepository) list(ctx context.Context, query string, args ...any) ([]models.Template, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Templates)

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

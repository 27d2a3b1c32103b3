package catalog

import (
	"context"

	models "chaincatalog/internal/domain/models/catalog"
)

// TemplateRepository defines data access operations for templates
type TemplateRepository interface {
	Create(ctx context.Context, template *models.Template) error
	Update(ctx context.Context, template *models.Template) error
	GetByID(ctx context.Context, id string) (*models.Template, error)

	// GetByIDs returns the templates that exist among ids; unknown ids are skipped
	GetByIDs(ctx context.Context, ids []string) ([]models.Template, error)

	List(ctx context.Context) ([]models.Template, error)
	Delete(ctx context.Context, id string) error
}

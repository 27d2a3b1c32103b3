package catalog

import (
	"context"

	models "chaincatalog/internal/domain/models/catalog"
	catalogRepo "chaincatalog/internal/domain/repositories/catalog"
)

// TemplateService handles template business logic
type TemplateService interface {
	CreateTemplate(ctx context.Context, template *models.Template) (*models.Template, error)
	UpdateTemplate(ctx context.Context, template *models.Template) (*models.Template, error)
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
	ListTemplates(ctx context.Context) ([]models.Template, error)
	DeleteTemplate(ctx context.Context, id string) error

	// CreateIn and UpdateIn run inside a caller-owned transaction
	CreateIn(ctx context.Context, store catalogRepo.Store, template *models.Template) error
	UpdateIn(ctx context.Context, store catalogRepo.Store, template *models.Template) error
}

package catalog

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"chaincatalog/internal/config"
	"chaincatalog/internal/domain"
	models "chaincatalog/internal/domain/models/catalog"
	catalogRepo "chaincatalog/internal/domain/repositories/catalog"
	catalogSvc "chaincatalog/internal/domain/services/catalog"
)

type templateService struct {
	store        catalogRepo.Store
	actionLogger catalogSvc.ActionLogger
	logger       *slog.Logger
}

// NewTemplateService creates a new template service
func NewTemplateService(store catalogRepo.Store, actionLogger catalogSvc.ActionLogger, logger *slog.Logger) catalogSvc.TemplateService {
	return &templateService{
		store:        store,
		actionLogger: actionLogger,
		logger:       logger,
	}
}

// Template ids name archive members, so they stay a single path segment
var templateIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func validateTemplate(t *models.Template) error {
	t.ID = strings.TrimSpace(t.ID)
	t.Name = strings.TrimSpace(t.Name)

	err := validation.ValidateStruct(t,
		validation.Field(&t.ID,
			validation.Required,
			validation.Length(1, config.MaxTemplateIDLength),
			validation.Match(templateIDPattern).Error("must contain only letters, digits, '_', '-' and '.'"),
			validation.NotIn(".", "..").Error("must not be a relative path"),
		),
		validation.Field(&t.Name, validation.Required, validation.Length(1, config.MaxTemplateNameLength)),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	if t.Properties == nil {
		t.Properties = map[string]any{}
	}
	return nil
}

func (s *templateService) CreateTemplate(ctx context.Context, template *models.Template) (*models.Template, error) {
	if err := s.CreateIn(ctx, s.store, template); err != nil {
		return nil, err
	}

	s.logger.Info("template created", "id", template.ID, "name", template.Name)
	s.actionLogger.LogAction(ctx, templateAction(template, models.LogOperationCreate))
	return template, nil
}

func (s *templateService) UpdateTemplate(ctx context.Context, template *models.Template) (*models.Template, error) {
	if err := s.UpdateIn(ctx, s.store, template); err != nil {
		return nil, err
	}

	s.logger.Info("template updated", "id", template.ID, "name", template.Name)
	s.actionLogger.LogAction(ctx, templateAction(template, models.LogOperationUpdate))
	return template, nil
}

func (s *templateService) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	return s.store.Templates().GetByID(ctx, id)
}

func (s *templateService) ListTemplates(ctx context.Context) ([]models.Template, error) {
	list, err := s.store.Templates().List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Template{}
	}
	return list, nil
}

func (s *templateService) DeleteTemplate(ctx context.Context, id string) error {
	template, err := s.store.Templates().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Templates().Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("template deleted", "id", id)
	s.actionLogger.LogAction(ctx, templateAction(template, models.LogOperationDelete))
	return nil
}

// CreateIn validates and inserts the template through the given store
func (s *templateService) CreateIn(ctx context.Context, store catalogRepo.Store, template *models.Template) error {
	if err := validateTemplate(template); err != nil {
		return err
	}
	return store.Templates().Create(ctx, template)
}

// UpdateIn validates and updates the template through the given store
func (s *templateService) UpdateIn(ctx context.Context, store catalogRepo.Store, template *models.Template) error {
	if err := validateTemplate(template); err != nil {
		return err
	}
	return store.Templates().Update(ctx, template)
}

func templateAction(t *models.Template, op models.LogOperation) models.ActionLog {
	return models.ActionLog{
		EntityType: models.EntityTypeTemplate,
		EntityID:   t.ID,
		EntityName: t.Name,
		Operation:  op,
	}
}

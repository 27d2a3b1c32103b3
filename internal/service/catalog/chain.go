package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"chaincatalog/internal/config"
	"chaincatalog/internal/domain"
	models "chaincatalog/internal/domain/models/catalog"
	catalogRepo "chaincatalog/internal/domain/repositories/catalog"
	catalogSvc "chaincatalog/internal/domain/services/catalog"
	"chaincatalog/internal/service/catalog/templates"
)

type chainService struct {
	store        catalogRepo.Store
	txManager    catalogRepo.TransactionManager
	cleaner      catalogSvc.DeploymentCleaner
	resolver     *templates.Resolver
	actionLogger catalogSvc.ActionLogger
	logger       *slog.Logger
}

// NewChainService creates a new chain service
func NewChainService(
	store catalogRepo.Store,
	txManager catalogRepo.TransactionManager,
	cleaner catalogSvc.DeploymentCleaner,
	resolver *templates.Resolver,
	actionLogger catalogSvc.ActionLogger,
	logger *slog.Logger,
) catalogSvc.ChainService {
	return &chainService{
		store:        store,
		txManager:    txManager,
		cleaner:      cleaner,
		resolver:     resolver,
		actionLogger: actionLogger,
		logger:       logger,
	}
}

func (s *chainService) CreateChain(ctx context.Context, req *catalogSvc.CreateChainRequest) (*models.Chain, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.ParentFolderID != nil && *req.ParentFolderID == "" {
		req.ParentFolderID = nil
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxChainNameLength)),
	)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	var parent *models.Folder
	if req.ParentFolderID != nil {
		parent, err = s.store.Folders().GetByID(ctx, *req.ParentFolderID)
		if err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
	}

	chain := &models.Chain{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentFolderID,
	}
	if err := s.store.Chains().Create(ctx, chain); err != nil {
		return nil, err
	}

	s.logger.Info("chain created", "id", chain.ID, "name", chain.Name, "parent_folder_id", chain.ParentID)
	s.actionLogger.LogAction(ctx, chainAction(chain, parent, models.LogOperationCreate))

	return chain, nil
}

func (s *chainService) GetChain(ctx context.Context, id string) (*models.Chain, error) {
	return s.store.Chains().GetByID(ctx, id)
}

// MoveChain reassigns the parent folder. Chains are leaves, so no cycle is possible.
func (s *chainService) MoveChain(ctx context.Context, id string, targetID *string) (*models.Chain, error) {
	if targetID != nil && *targetID == "" {
		targetID = nil
	}

	var chain *models.Chain
	var target *models.Folder
	err := s.txManager.ExecTx(ctx, func(ctx context.Context, store catalogRepo.Store) error {
		var err error
		chain, err = store.Chains().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if targetID != nil {
			target, err = store.Folders().GetByID(ctx, *targetID)
			if err != nil {
				return fmt.Errorf("target folder: %w", err)
			}
		}
		chain.ParentID = targetID
		return store.Chains().Update(ctx, chain)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("chain moved", "id", chain.ID, "target_folder_id", targetID)
	s.actionLogger.LogAction(ctx, chainAction(chain, target, models.LogOperationMove))

	return chain, nil
}

// DeleteChain tears down deployments, then removes the chain
func (s *chainService) DeleteChain(ctx context.Context, id string) error {
	var chain *models.Chain
	err := s.txManager.ExecTx(ctx, func(ctx context.Context, store catalogRepo.Store) error {
		var err error
		chain, err = store.Chains().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if s.cleaner != nil {
			if err := s.cleaner.DeleteAllByChainID(ctx, chain.ID); err != nil {
				return fmt.Errorf("clean up deployments of chain %s: %w", chain.ID, err)
			}
		}
		if err := store.Deployments().DeleteAllByChainID(ctx, chain.ID); err != nil {
			return err
		}
		return store.Chains().Delete(ctx, chain.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("chain deleted", "id", chain.ID, "name", chain.Name)
	s.actionLogger.LogAction(ctx, chainAction(chain, nil, models.LogOperationDelete))
	return nil
}

func (s *chainService) AddElement(ctx context.Context, chainID string, req *catalogSvc.CreateElementRequest) (*models.ChainElement, error) {
	req.Type = strings.TrimSpace(req.Type)
	err := validation.ValidateStruct(req,
		validation.Field(&req.Type, validation.Required),
		validation.Field(&req.Name, validation.Length(0, config.MaxChainNameLength)),
	)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	chain, err := s.store.Chains().GetByID(ctx, chainID)
	if err != nil {
		return nil, err
	}

	element := &models.ChainElement{
		ChainID:    chain.ID,
		Type:       req.Type,
		Name:       req.Name,
		Properties: req.Properties,
	}
	if element.Properties == nil {
		element.Properties = map[string]any{}
	}
	if err := s.store.Elements().Create(ctx, element); err != nil {
		return nil, err
	}

	s.logger.Debug("element added", "chain_id", chain.ID, "element_id", element.ID, "type", element.Type)
	s.actionLogger.LogAction(ctx, chainAction(chain, nil, models.LogOperationUpdate))

	return element, nil
}

// MaterializeElements loads the elements of a chain with template references
// inlined. The resolver runs exactly once over the loaded copies; stored
// elements keep their references.
func (s *chainService) MaterializeElements(ctx context.Context, chainID string) ([]models.ChainElement, error) {
	if _, err := s.store.Chains().GetByID(ctx, chainID); err != nil {
		return nil, err
	}

	elements, err := s.store.Elements().ListByChain(ctx, chainID)
	if err != nil {
		return nil, err
	}
	if elements == nil {
		elements = []models.ChainElement{}
	}

	if err := s.resolver.ResolveAll(ctx, elements); err != nil {
		return nil, err
	}
	return elements, nil
}

func chainAction(chain *models.Chain, parent *models.Folder, op models.LogOperation) models.ActionLog {
	action := models.ActionLog{
		EntityType: models.EntityTypeChain,
		EntityID:   chain.ID,
		EntityName: chain.Name,
		Operation:  op,
	}
	if parent != nil {
		action.ParentType = models.EntityTypeFolder
		action.ParentID = parent.ID
		action.ParentName = parent.Name
	} else if chain.ParentID != nil {
		action.ParentType = models.EntityTypeFolder
		action.ParentID = *chain.ParentID
	}
	return action
}

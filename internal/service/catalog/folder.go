// Package catalog implements the folder/chain hierarchy and template services.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"chaincatalog/internal/config"
	"chaincatalog/internal/domain"
	models "chaincatalog/internal/domain/models/catalog"
	catalogRepo "chaincatalog/internal/domain/repositories/catalog"
	catalogSvc "chaincatalog/internal/domain/services/catalog"
)

type folderService struct {
	store        catalogRepo.Store
	txManager    catalogRepo.TransactionManager
	cleaner      catalogSvc.DeploymentCleaner
	actionLogger catalogSvc.ActionLogger
	logger       *slog.Logger
}

// NewFolderService creates a new folder service. cleaner is the runtime hook
// called for every chain of a deleted subtree; it may be nil.
func NewFolderService(
	store catalogRepo.Store,
	txManager catalogRepo.TransactionManager,
	cleaner catalogSvc.DeploymentCleaner,
	actionLogger catalogSvc.ActionLogger,
	logger *slog.Logger,
) catalogSvc.FolderService {
	return &folderService{
		store:        store,
		txManager:    txManager,
		cleaner:      cleaner,
		actionLogger: actionLogger,
		logger:       logger,
	}
}

// CreateFolder creates a new folder
func (s *folderService) CreateFolder(ctx context.Context, req *catalogSvc.CreateFolderRequest) (*models.Folder, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.ParentFolderID != nil && *req.ParentFolderID == "" {
		req.ParentFolderID = nil
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxFolderNameLength)),
	)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	var parent *models.Folder
	folder := &models.Folder{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentFolderID,
	}
	err = s.txManager.ExecTx(ctx, func(ctx context.Context, store catalogRepo.Store) error {
		if err := store.Folders().LockHierarchy(ctx); err != nil {
			return err
		}
		if req.ParentFolderID != nil {
			var err error
			parent, err = store.Folders().GetByID(ctx, *req.ParentFolderID)
			if err != nil {
				return fmt.Errorf("parent folder: %w", err)
			}
		}
		if err := s.checkSiblingName(ctx, store, req.ParentFolderID, req.Name, ""); err != nil {
			return err
		}
		return store.Folders().Create(ctx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_folder_id", folder.ParentID,
	)
	s.actionLogger.LogAction(ctx, folderAction(folder, parent, models.LogOperationCreate))

	return folder, nil
}

// GetFolder retrieves a folder with its immediate children
func (s *folderService) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	folder, err := s.store.Folders().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	children, err := s.store.Folders().ListChildren(ctx, &folder.ID)
	if err != nil {
		return nil, fmt.Errorf("list child folders: %w", err)
	}
	for i := range children {
		folder.Folders = append(folder.Folders, &children[i])
	}

	chains, err := s.store.Chains().ListByFolders(ctx, []string{folder.ID})
	if err != nil {
		return nil, fmt.Errorf("list chains: %w", err)
	}
	for i := range chains {
		folder.Chains = append(folder.Chains, &chains[i])
	}

	return folder, nil
}

// ListRoot lists folders without a parent
func (s *folderService) ListRoot(ctx context.Context) ([]models.Folder, error) {
	folders, err := s.store.Folders().ListChildren(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list root folders: %w", err)
	}
	if folders == nil {
		folders = []models.Folder{}
	}
	return folders, nil
}

// UpdateFolder renames a folder or changes its description
func (s *folderService) UpdateFolder(ctx context.Context, id string, req *catalogSvc.UpdateFolderRequest) (*models.Folder, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, config.MaxFolderNameLength)),
	)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	var folder *models.Folder
	err = s.txManager.ExecTx(ctx, func(ctx context.Context, store catalogRepo.Store) error {
		var err error
		folder, err = store.Folders().GetByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Name != nil && *req.Name != folder.Name {
			if err := s.checkSiblingName(ctx, store, folder.ParentID, *req.Name, folder.ID); err != nil {
				return err
			}
			folder.Name = *req.Name
		}
		if req.Description != nil {
			folder.Description = *req.Description
		}
		return store.Folders().Update(ctx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder updated", "id", folder.ID, "name", folder.Name)
	s.actionLogger.LogAction(ctx, folderAction(folder, nil, models.LogOperationUpdate))

	return folder, nil
}

// MoveFolder reparents a folder. The cycle check and the write run in one
// transaction under the hierarchy lock, so both see the same tree.
func (s *folderService) MoveFolder(ctx context.Context, id string, targetID *string) (*models.Folder, error) {
	if targetID != nil && *targetID == "" {
		targetID = nil
	}

	var folder, target *models.Folder
	err := s.txManager.ExecTx(ctx, func(ctx context.Context, store catalogRepo.Store) error {
		if err := store.Folders().LockHierarchy(ctx); err != nil {
			return err
		}

		var err error
		folder, err = store.Folders().GetByID(ctx, id)
		if err != nil {
			return err
		}

		if targetID != nil {
			target, err = store.Folders().GetByID(ctx, *targetID)
			if err != nil {
				return fmt.Errorf("target folder: %w", err)
			}
			if err := validateNoCycle(ctx, store, folder, target); err != nil {
				return err
			}
		}

		folder.ParentID = targetID
		return store.Folders().Update(ctx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder moved",
		"id", folder.ID,
		"name", folder.Name,
		"target_folder_id", targetID,
	)
	s.actionLogger.LogAction(ctx, folderAction(folder, target, models.LogOperationMove))

	return folder, nil
}

// validateNoCycle walks up from the target. Meeting the moved folder on the
// way, the target itself included, means the move would close a cycle.
func validateNoCycle(ctx context.Context, store catalogRepo.Store, folder, target *models.Folder) error {
	visited := make(map[string]bool)
	current := target
	for current != nil {
		if current.ID == folder.ID {
			return &domain.MoveCycleError{FolderName: folder.Name, TargetFolderName: target.Name}
		}
		if visited[current.ID] {
			return fmt.Errorf("folder %s: hierarchy already contains a cycle: %w", current.ID, domain.ErrMoveCycle)
		}
		visited[current.ID] = true

		if current.ParentID == nil {
			return nil
		}
		parent, err := store.Folders().GetByID(ctx, *current.ParentID)
		if err != nil {
			return fmt.Errorf("load ancestor %s: %w", *current.ParentID, err)
		}
		current = parent
	}
	return nil
}

// DeleteFolder removes a folder with everything below it. Deployments of each
// nested chain are torn down, folder first, before the rows are deleted.
func (s *folderService) DeleteFolder(ctx context.Context, id string) error {
	var nested []models.FoldableEntity
	names := make(map[string]string)

	err := s.txManager.ExecTx(ctx, func(ctx context.Context, store catalogRepo.Store) error {
		if err := store.Folders().LockHierarchy(ctx); err != nil {
			return err
		}

		folder, err := store.Folders().GetByID(ctx, id)
		if err != nil {
			return err
		}

		nested, err = collectNested(ctx, store, folder)
		if err != nil {
			return err
		}

		for _, entity := range nested {
			if entity.EntityType() == models.EntityTypeFolder {
				names[entity.GetID()] = entity.GetName()
				continue
			}
			if err := s.cleanupDeployments(ctx, store, entity.GetID()); err != nil {
				return err
			}
		}

		return store.Folders().Delete(ctx, folder.ID)
	})
	if err != nil {
		return err
	}

	chains := 0
	for _, entity := range nested {
		if entity.EntityType() != models.EntityTypeChain {
			continue
		}
		chains++
		action := models.ActionLog{
			EntityType: models.EntityTypeChain,
			EntityID:   entity.GetID(),
			EntityName: entity.GetName(),
			Operation:  models.LogOperationDelete,
		}
		if parentID := entity.GetParentID(); parentID != nil {
			action.ParentType = models.EntityTypeFolder
			action.ParentID = *parentID
			action.ParentName = names[*parentID]
		}
		s.actionLogger.LogAction(ctx, action)
	}

	s.logger.Info("folder deleted",
		"id", id,
		"nested_entities", len(nested),
		"nested_chains", chains,
	)
	return nil
}

func (s *folderService) cleanupDeployments(ctx context.Context, store catalogRepo.Store, chainID string) error {
	if s.cleaner != nil {
		if err := s.cleaner.DeleteAllByChainID(ctx, chainID); err != nil {
			return fmt.Errorf("clean up deployments of chain %s: %w", chainID, err)
		}
	}
	if err := store.Deployments().DeleteAllByChainID(ctx, chainID); err != nil {
		return err
	}
	return nil
}

// collectNested lists the folder and everything below it depth first: a
// folder, then its chains, then its subfolders.
func collectNested(ctx context.Context, store catalogRepo.Store, root *models.Folder) ([]models.FoldableEntity, error) {
	var out []models.FoldableEntity
	visited := make(map[string]bool)
	stack := []*models.Folder{root}

	for len(stack) > 0 {
		folder := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[folder.ID] {
			continue
		}
		visited[folder.ID] = true
		out = append(out, folder)

		chains, err := store.Chains().ListByFolders(ctx, []string{folder.ID})
		if err != nil {
			return nil, fmt.Errorf("list chains of folder %s: %w", folder.ID, err)
		}
		for i := range chains {
			out = append(out, &chains[i])
		}

		children, err := store.Folders().ListChildren(ctx, &folder.ID)
		if err != nil {
			return nil, fmt.Errorf("list subfolders of folder %s: %w", folder.ID, err)
		}
		// reversed so the first child is visited next
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, &children[i])
		}
	}
	return out, nil
}

// GetAncestors returns the breadcrumb path, root first
func (s *folderService) GetAncestors(ctx context.Context, id string) ([]models.PathEntry, error) {
	folders, err := s.store.Folders().ListAncestors(ctx, id)
	if err != nil {
		return nil, err
	}

	path := make([]models.PathEntry, 0, len(folders))
	for _, f := range folders {
		path = append(path, models.PathEntry{ID: f.ID, Name: f.Name})
	}
	return path, nil
}

// FindNestedChains lists chains in the folder or any descendant
func (s *folderService) FindNestedChains(ctx context.Context, id string, filter models.ChainFilter) ([]models.Chain, error) {
	nested, err := s.store.Folders().ListNested(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(nested)+1)
	ids = append(ids, id)
	for _, f := range nested {
		ids = append(ids, f.ID)
	}

	chains, err := s.store.Chains().ListByFolders(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list nested chains: %w", err)
	}

	out := make([]models.Chain, 0, len(chains))
	for i := range chains {
		if filter == nil || filter(&chains[i]) {
			out = append(out, chains[i])
		}
	}
	return out, nil
}

// FindNestedFolders lists every descendant folder
func (s *folderService) FindNestedFolders(ctx context.Context, id string) ([]models.Folder, error) {
	folders, err := s.store.Folders().ListNested(ctx, id)
	if err != nil {
		return nil, err
	}
	if folders == nil {
		folders = []models.Folder{}
	}
	return folders, nil
}

// Reattach persists a folder graph built by a client. For the folder and each
// ancestor reached through Parent, the subtree is saved post-order so every
// child is written before its parent. Parent links are deferred until commit.
func (s *folderService) Reattach(ctx context.Context, state *models.Folder) (*models.Folder, error) {
	if state == nil {
		return nil, &domain.ValidationError{Message: "folder state is required"}
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context, store catalogRepo.Store) error {
		if err := store.Folders().LockHierarchy(ctx); err != nil {
			return err
		}

		saved := make(map[*models.Folder]bool)
		seen := make(map[*models.Folder]bool)
		for node := state; node != nil; node = node.Parent {
			if seen[node] {
				return &domain.ValidationError{Message: fmt.Sprintf("folder %q: parent chain contains a cycle", node.Name)}
			}
			seen[node] = true

			if node.Parent != nil {
				assignID(node.Parent)
				node.ParentID = &node.Parent.ID
			}
			if err := saveSubtree(ctx, store, node, saved); err != nil {
				return err
			}
		}
		return checkForest(ctx, store, saved)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder reattached", "id", state.ID, "name", state.Name)
	return state, nil
}

type postOrderFrame struct {
	folder   *models.Folder
	expanded bool
}

// saveSubtree writes children before parents using an explicit stack
func saveSubtree(ctx context.Context, store catalogRepo.Store, root *models.Folder, saved map[*models.Folder]bool) error {
	stack := []postOrderFrame{{folder: root}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		folder := top.folder
		if saved[folder] {
			stack = stack[:len(stack)-1]
			continue
		}

		if !top.expanded {
			top.expanded = true
			assignID(folder)
			for i := len(folder.Folders) - 1; i >= 0; i-- {
				child := folder.Folders[i]
				if child == nil || saved[child] {
					continue
				}
				child.ParentID = &folder.ID
				stack = append(stack, postOrderFrame{folder: child})
			}
			continue
		}

		stack = stack[:len(stack)-1]
		if err := validateFolderName(folder.Name); err != nil {
			return err
		}
		if err := store.Folders().Save(ctx, folder); err != nil {
			return fmt.Errorf("save folder %q: %w", folder.Name, err)
		}
		if err := saveChains(ctx, store, folder); err != nil {
			return err
		}
		saved[folder] = true
	}
	return nil
}

// checkForest walks up from every saved folder through the stored parents.
// Posted parent ids are not trusted, so a revisit means the graph closed a loop.
func checkForest(ctx context.Context, store catalogRepo.Store, saved map[*models.Folder]bool) error {
	for folder := range saved {
		if folder.ParentID == nil {
			continue
		}
		parent, err := store.Folders().GetByID(ctx, *folder.ParentID)
		if err != nil {
			return fmt.Errorf("parent of folder %q: %w", folder.Name, err)
		}

		visited := map[string]bool{folder.ID: true}
		for current := parent; ; {
			if visited[current.ID] {
				return &domain.MoveCycleError{FolderName: folder.Name, TargetFolderName: parent.Name}
			}
			visited[current.ID] = true
			if current.ParentID == nil {
				break
			}
			current, err = store.Folders().GetByID(ctx, *current.ParentID)
			if err != nil {
				return fmt.Errorf("ancestor of folder %q: %w", folder.Name, err)
			}
		}
	}
	return nil
}

func saveChains(ctx context.Context, store catalogRepo.Store, folder *models.Folder) error {
	for _, chain := range folder.Chains {
		if chain == nil {
			continue
		}
		chain.ParentID = &folder.ID

		if chain.ID != "" {
			existing, err := store.Chains().GetByID(ctx, chain.ID)
			if err == nil {
				existing.ParentID = chain.ParentID
				if err := store.Chains().Update(ctx, existing); err != nil {
					return err
				}
				*chain = *existing
				continue
			}
			if !isNotFound(err) {
				return err
			}
		}
		if err := store.Chains().Create(ctx, chain); err != nil {
			return fmt.Errorf("save chain %q: %w", chain.Name, err)
		}
	}
	return nil
}

func assignID(folder *models.Folder) {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
}

func validateFolderName(name string) error {
	err := validation.Validate(name, validation.Required, validation.Length(1, config.MaxFolderNameLength))
	if err != nil {
		return &domain.ValidationError{Message: "name: " + err.Error()}
	}
	return nil
}

func (s *folderService) checkSiblingName(ctx context.Context, store catalogRepo.Store, parentID *string, name, selfID string) error {
	siblings, err := store.Folders().ListChildren(ctx, parentID)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate names: %w", err)
	}
	for _, sibling := range siblings {
		if sibling.Name == name && sibling.ID != selfID {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
				ResourceType: "folder",
				ResourceID:   sibling.ID,
			}
		}
	}
	return nil
}

func folderAction(folder, parent *models.Folder, op models.LogOperation) models.ActionLog {
	action := models.ActionLog{
		EntityType: models.EntityTypeFolder,
		EntityID:   folder.ID,
		EntityName: folder.Name,
		Operation:  op,
	}
	if parent != nil {
		action.ParentType = models.EntityTypeFolder
		action.ParentID = parent.ID
		action.ParentName = parent.Name
	} else if folder.ParentID != nil {
		action.ParentType = models.EntityTypeFolder
		action.ParentID = *folder.ParentID
	}
	return action
}

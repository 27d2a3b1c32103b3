package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"chaincatalog/internal/domain"
	models "chaincatalog/internal/domain/models/catalog"
)

type chainRepo struct{ v view }

func (r *chainRepo) Create(ctx context.Context, chain *models.Chain) error {
	return r.v.write(func(d *state) error {
		if chain.ID == "" {
			chain.ID = uuid.NewString()
		}
		if _, exists := d.chains[chain.ID]; exists {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("chain %s already exists", chain.ID),
				ResourceType: "chain",
				ResourceID:   chain.ID,
			}
		}
		now := time.Now().UTC()
		if chain.CreatedAt.IsZero() {
			chain.CreatedAt = now
		}
		chain.ModifiedAt = now
		stored := *chain
		stored.ParentID = copyID(chain.ParentID)
		d.chains[chain.ID] = stored
		return nil
	})
}

func (r *chainRepo) GetByID(ctx context.Context, id string) (*models.Chain, error) {
	var out *models.Chain
	err := r.v.read(func(d *state) error {
		c, ok := d.chains[id]
		if !ok {
			return fmt.Errorf("chain %s: %w", id, domain.ErrNotFound)
		}
		c.ParentID = copyID(c.ParentID)
		out = &c
		return nil
	})
	return out, err
}

func (r *chainRepo) Update(ctx context.Context, chain *models.Chain) error {
	return r.v.write(func(d *state) error {
		existing, ok := d.chains[chain.ID]
		if !ok {
			return fmt.Errorf("chain %s: %w", chain.ID, domain.ErrNotFound)
		}
		chain.CreatedAt = existing.CreatedAt
		chain.ModifiedAt = time.Now().UTC()
		stored := *chain
		stored.ParentID = copyID(chain.ParentID)
		d.chains[chain.ID] = stored
		return nil
	})
}

func (r *chainRepo) Delete(ctx context.Context, id string) error {
	return r.v.write(func(d *state) error {
		if _, ok := d.chains[id]; !ok {
			return fmt.Errorf("chain %s: %w", id, domain.ErrNotFound)
		}
		deleteChain(d, id)
		return nil
	})
}

func (r *chainRepo) ListByFolders(ctx context.Context, folderIDs []string) ([]models.Chain, error) {
	wanted := make(map[string]bool, len(folderIDs))
	for _, id := range folderIDs {
		wanted[id] = true
	}

	var out []models.Chain
	err := r.v.read(func(d *state) error {
		for _, id := range sortedKeys(d.chains) {
			c := d.chains[id]
			if c.ParentID != nil && wanted[*c.ParentID] {
				c.ParentID = copyID(c.ParentID)
				out = append(out, c)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

// deleteChain removes a chain with its elements and deployments.
func deleteChain(d *state, id string) {
	delete(d.chains, id)
	for eid, e := range d.elements {
		if e.ChainID == id {
			delete(d.elements, eid)
			delete(d.elementSeq, eid)
		}
	}
	for did, dep := range d.deployments {
		if dep.ChainID == id {
			delete(d.deployments, did)
		}
	}
}

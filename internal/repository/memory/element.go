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

type elementRepo struct{ v view }

func (r *elementRepo) Create(ctx context.Context, element *models.ChainElement) error {
	return r.v.write(func(d *state) error {
		if element.ID == "" {
			element.ID = uuid.NewString()
		}
		if _, exists := d.elements[element.ID]; exists {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("element %s already exists", element.ID),
				ResourceType: "element",
				ResourceID:   element.ID,
			}
		}
		now := time.Now().UTC()
		if element.CreatedAt.IsZero() {
			element.CreatedAt = now
		}
		element.ModifiedAt = now
		stored := *element
		stored.Properties = copyProperties(element.Properties)
		d.elements[element.ID] = stored
		d.seq++
		d.elementSeq[element.ID] = d.seq
		return nil
	})
}

// ListByChain returns elements in insertion order
func (r *elementRepo) ListByChain(ctx context.Context, chainID string) ([]models.ChainElement, error) {
	var out []models.ChainElement
	err := r.v.read(func(d *state) error {
		for _, e := range d.elements {
			if e.ChainID == chainID {
				e.Properties = copyProperties(e.Properties)
				out = append(out, e)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			return d.elementSeq[out[i].ID] < d.elementSeq[out[j].ID]
		})
		return nil
	})
	return out, err
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"chaincatalog/internal/domain"
	models "chaincatalog/internal/domain/models/catalog"
)

type templateRepo struct{ v view }

func (r *templateRepo) Create(ctx context.Context, template *models.Template) error {
	return r.v.write(func(d *state) error {
		if _, exists := d.templates[template.ID]; exists {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("template %s already exists", template.ID),
				ResourceType: "template",
				ResourceID:   template.ID,
			}
		}
		now := time.Now().UTC()
		if template.CreatedAt.IsZero() {
			template.CreatedAt = now
		}
		template.ModifiedAt = now
		stored := *template
		stored.Properties = copyProperties(template.Properties)
		d.templates[template.ID] = stored
		return nil
	})
}

func (r *templateRepo) Update(ctx context.Context, template *models.Template) error {
	return r.v.write(func(d *state) error {
		existing, ok := d.templates[template.ID]
		if !ok {
			return fmt.Errorf("template %s: %w", template.ID, domain.ErrNotFound)
		}
		template.CreatedAt = existing.CreatedAt
		template.ModifiedAt = time.Now().UTC()
		stored := *template
		stored.Properties = copyProperties(template.Properties)
		d.templates[template.ID] = stored
		return nil
	})
}

func (r *templateRepo) GetByID(ctx context.Context, id string) (*models.Template, error) {
	var out *models.Template
	err := r.v.read(func(d *state) error {
		t, ok := d.templates[id]
		if !ok {
			return fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
		}
		t.Properties = copyProperties(t.Properties)
		out = &t
		return nil
	})
	return out, err
}

func (r *templateRepo) GetByIDs(ctx context.Context, ids []string) ([]models.Template, error) {
	var out []models.Template
	err := r.v.read(func(d *state) error {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			if t, ok := d.templates[id]; ok {
				t.Properties = copyProperties(t.Properties)
				out = append(out, t)
			}
		}
		return nil
	})
	sortTemplates(out)
	return out, err
}

func (r *templateRepo) List(ctx context.Context) ([]models.Template, error) {
	var out []models.Template
	err := r.v.read(func(d *state) error {
		for _, t := range d.templates {
			t.Properties = copyProperties(t.Properties)
			out = append(out, t)
		}
		return nil
	})
	sortTemplates(out)
	return out, err
}

func (r *templateRepo) Delete(ctx context.Context, id string) error {
	return r.v.write(func(d *state) error {
		if _, ok := d.templates[id]; !ok {
			return fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
		}
		delete(d.templates, id)
		return nil
	})
}

// sortTemplates orders like the SQL store: created_at, then id.
func sortTemplates(ts []models.Template) {
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].CreatedAt.Before(ts[j].CreatedAt)
		}
		return ts[i].ID < ts[j].ID
	})
}

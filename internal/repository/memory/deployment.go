package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	models "chaincatalog/internal/domain/models/catalog"
)

type deploymentRepo struct{ v view }

func (r *deploymentRepo) Create(ctx context.Context, deployment *models.Deployment) error {
	return r.v.write(func(d *state) error {
		if deployment.ID == "" {
			deployment.ID = uuid.NewString()
		}
		if deployment.CreatedAt.IsZero() {
			deployment.CreatedAt = time.Now().UTC()
		}
		d.deployments[deployment.ID] = *deployment
		return nil
	})
}

func (r *deploymentRepo) ListByChain(ctx context.Context, chainID string) ([]models.Deployment, error) {
	var out []models.Deployment
	err := r.v.read(func(d *state) error {
		for _, dep := range d.deployments {
			if dep.ChainID == chainID {
				out = append(out, dep)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *deploymentRepo) DeleteAllByChainID(ctx context.Context, chainID string) error {
	return r.v.write(func(d *state) error {
		for id, dep := range d.deployments {
			if dep.ChainID == chainID {
				delete(d.deployments, id)
			}
		}
		return nil
	})
}

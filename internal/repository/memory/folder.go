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

type folderRepo struct{ v view }

// storedFolder drops the in-memory graph; only the persisted columns are kept.
func storedFolder(f *models.Folder) models.Folder {
	return models.Folder{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		ParentID:    copyID(f.ParentID),
		CreatedAt:   f.CreatedAt,
		ModifiedAt:  f.ModifiedAt,
	}
}

func copyID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func (r *folderRepo) Create(ctx context.Context, folder *models.Folder) error {
	return r.v.write(func(d *state) error {
		if folder.ID == "" {
			folder.ID = uuid.NewString()
		}
		if _, exists := d.folders[folder.ID]; exists {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder %s already exists", folder.ID),
				ResourceType: "folder",
				ResourceID:   folder.ID,
			}
		}
		now := time.Now().UTC()
		if folder.CreatedAt.IsZero() {
			folder.CreatedAt = now
		}
		folder.ModifiedAt = now
		d.folders[folder.ID] = storedFolder(folder)
		return nil
	})
}

func (r *folderRepo) Save(ctx context.Context, folder *models.Folder) error {
	return r.v.write(func(d *state) error {
		if folder.ID == "" {
			folder.ID = uuid.NewString()
		}
		now := time.Now().UTC()
		if existing, ok := d.folders[folder.ID]; ok {
			folder.CreatedAt = existing.CreatedAt
		} else if folder.CreatedAt.IsZero() {
			folder.CreatedAt = now
		}
		folder.ModifiedAt = now
		d.folders[folder.ID] = storedFolder(folder)
		return nil
	})
}

func (r *folderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	var out *models.Folder
	err := r.v.read(func(d *state) error {
		f, ok := d.folders[id]
		if !ok {
			return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		f.ParentID = copyID(f.ParentID)
		out = &f
		return nil
	})
	return out, err
}

func (r *folderRepo) Update(ctx context.Context, folder *models.Folder) error {
	return r.v.write(func(d *state) error {
		existing, ok := d.folders[folder.ID]
		if !ok {
			return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
		}
		folder.CreatedAt = existing.CreatedAt
		folder.ModifiedAt = time.Now().UTC()
		d.folders[folder.ID] = storedFolder(folder)
		return nil
	})
}

func (r *folderRepo) Delete(ctx context.Context, id string) error {
	return r.v.write(func(d *state) error {
		if _, ok := d.folders[id]; !ok {
			return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		doomed := append([]string{id}, nestedIDs(d, id)...)
		gone := make(map[string]bool, len(doomed))
		for _, fid := range doomed {
			gone[fid] = true
			delete(d.folders, fid)
		}
		for cid, c := range d.chains {
			if c.ParentID != nil && gone[*c.ParentID] {
				deleteChain(d, cid)
			}
		}
		return nil
	})
}

func (r *folderRepo) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	var out []models.Folder
	err := r.v.read(func(d *state) error {
		for _, id := range sortedKeys(d.folders) {
			f := d.folders[id]
			if sameParent(f.ParentID, parentID) {
				f.ParentID = copyID(f.ParentID)
				out = append(out, f)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *folderRepo) ListNested(ctx context.Context, id string) ([]models.Folder, error) {
	var out []models.Folder
	err := r.v.read(func(d *state) error {
		if _, ok := d.folders[id]; !ok {
			return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		for _, fid := range nestedIDs(d, id) {
			f := d.folders[fid]
			f.ParentID = copyID(f.ParentID)
			out = append(out, f)
		}
		return nil
	})
	return out, err
}

func (r *folderRepo) ListAncestors(ctx context.Context, id string) ([]models.Folder, error) {
	var out []models.Folder
	err := r.v.read(func(d *state) error {
		if _, ok := d.folders[id]; !ok {
			return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		visited := make(map[string]bool)
		for cur := &id; cur != nil; {
			if visited[*cur] {
				break
			}
			visited[*cur] = true
			f, ok := d.folders[*cur]
			if !ok {
				break
			}
			f.ParentID = copyID(f.ParentID)
			out = append(out, f)
			cur = f.ParentID
		}
		return nil
	})
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, err
}

// LockHierarchy is a no-op: transactions are already serialized by the store mutex.
func (r *folderRepo) LockHierarchy(ctx context.Context) error {
	return nil
}

// nestedIDs collects descendants breadth first with an explicit queue.
func nestedIDs(d *state, id string) []string {
	children := make(map[string][]string)
	for _, fid := range sortedKeys(d.folders) {
		if p := d.folders[fid].ParentID; p != nil {
			children[*p] = append(children[*p], fid)
		}
	}

	var out []string
	visited := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur] {
			if visited[child] {
				continue
			}
			visited[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"chaincatalog/internal/domain"
	models "chaincatalog/internal/domain/models/catalog"
	"chaincatalog/internal/domain/repositories"
	"chaincatalog/internal/repository/postgres"
)

// FolderRepository implements catalog.FolderRepository
type FolderRepository struct {
	db     repositories.DBTX
	tables *postgres.TableNames
}

const folderColumns = "id, name, description, parent_id, created_at, modified_at"

func scanFolder(row pgx.Row) (models.Folder, error) {
	var f models.Folder
	err := row.Scan(&f.ID, &f.Name, &f.Description, &f.ParentID, &f.CreatedAt, &f.ModifiedAt)
	return f, err
}

func collectFolders(rows pgx.Rows) ([]models.Folder, error) {
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}
	return folders, nil
}

// Create creates a new folder
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, description, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, modified_at
	`, r.tables.Folders)

	err := r.db.QueryRow(ctx, query,
		folder.ID,
		folder.Name,
		folder.Description,
		folder.ParentID,
	).Scan(&folder.CreatedAt, &folder.ModifiedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder %s already exists", folder.ID),
				ResourceType: "folder",
				ResourceID:   folder.ID,
			}
		}
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

// Save upserts a folder by id
func (r *FolderRepository) Save(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, description, parent_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    description = EXCLUDED.description,
		    parent_id = EXCLUDED.parent_id,
		    modified_at = now()
		RETURNING created_at, modified_at
	`, r.tables.Folders)

	err := r.db.QueryRow(ctx, query,
		folder.ID,
		folder.Name,
		folder.Description,
		folder.ParentID,
	).Scan(&folder.CreatedAt, &folder.ModifiedAt)
	if err != nil {
		return fmt.Errorf("save folder: %w", err)
	}
	return nil
}

// GetByID retrieves a folder by ID
func (r *FolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	f, err := scanFolder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return &f, nil
}

// Update updates name, description and parent
func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, description = $3, parent_id = $4, modified_at = now()
		WHERE id = $1
		RETURNING created_at, modified_at
	`, r.tables.Folders)

	err := r.db.QueryRow(ctx, query,
		folder.ID,
		folder.Name,
		folder.Description,
		folder.ParentID,
	).Scan(&folder.CreatedAt, &folder.ModifiedAt)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update folder: %w", err)
	}
	return nil
}

// Delete deletes a folder; the schema cascades to nested folders and chains
func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListChildren lists immediate child folders, ordered by name
func (r *FolderRepository) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE parent_id IS NOT DISTINCT FROM $1
		ORDER BY name, id
	`, folderColumns, r.tables.Folders)

	rows, err := r.db.Query(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("list child folders: %w", err)
	}
	return collectFolders(rows)
}

// ListNested lists every descendant. UNION drops revisited rows, so a
// corrupted cycle terminates.
func (r *FolderRepository) ListNested(ctx context.Context, id string) ([]models.Folder, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		WITH RECURSIVE nested AS (
			SELECT %[1]s FROM %[2]s WHERE parent_id = $1
			UNION
			SELECT f.id, f.name, f.description, f.parent_id, f.created_at, f.modified_at
			FROM %[2]s f
			JOIN nested n ON f.parent_id = n.id
		)
		SELECT %[1]s FROM nested WHERE id <> $1
	`, folderColumns, r.tables.Folders)

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list nested folders: %w", err)
	}
	return collectFolders(rows)
}

// ListAncestors returns the folder and its ancestors, root first
func (r *FolderRepository) ListAncestors(ctx context.Context, id string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE path AS (
			SELECT %[1]s, 0 AS depth, ARRAY[id] AS seen
			FROM %[2]s WHERE id = $1
			UNION ALL
			SELECT f.id, f.name, f.description, f.parent_id, f.created_at, f.modified_at,
			       p.depth + 1, p.seen || f.id
			FROM %[2]s f
			JOIN path p ON f.id = p.parent_id
			WHERE NOT f.id = ANY(p.seen)
		)
		SELECT %[1]s FROM path ORDER BY depth DESC
	`, folderColumns, r.tables.Folders)

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list folder ancestors: %w", err)
	}
	folders, err := collectFolders(rows)
	if err != nil {
		return nil, err
	}
	if len(folders) == 0 {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return folders, nil
}

// LockHierarchy takes a transaction-scoped advisory lock keyed on the folder
// table, serializing concurrent moves until commit or rollback.
func (r *FolderRepository) LockHierarchy(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, r.tables.Folders)
	if err != nil {
		return fmt.Errorf("lock folder hierarchy: %w", err)
	}
	return nil
}

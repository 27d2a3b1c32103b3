package catalog

import (
	"time"
)

// Folder is a node of the catalog tree. ParentID is the persisted link; Parent,
// Folders and Chains form the optional in-memory graph used when a client posts
// a whole subtree (see FolderService.Reattach).
type Folder struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	ParentID    *string   `json:"parent_folder_id" db:"parent_id"` // NULL = root level
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	ModifiedAt  time.Time `json:"modified_at" db:"modified_at"`

	Parent  *Folder   `json:"parent_folder,omitempty"`
	Folders []*Folder `json:"folders,omitempty"`
	Chains  []*Chain  `json:"chains,omitempty"`
}

func (f *Folder) GetID() string          { return f.ID }
func (f *Folder) GetName() string        { return f.Name }
func (f *Folder) GetParentID() *string   { return f.ParentID }
func (f *Folder) EntityType() EntityType { return EntityTypeFolder }

// PathEntry is one breadcrumb element, ordered root first.
type PathEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

package catalog

import "time"

type Chain struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	ParentID    *string   `json:"parent_folder_id" db:"parent_id"` // NULL = root level
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	ModifiedAt  time.Time `json:"modified_at" db:"modified_at"`
}

func (c *Chain) GetID() string          { return c.ID }
func (c *Chain) GetName() string        { return c.Name }
func (c *Chain) GetParentID() *string   { return c.ParentID }
func (c *Chain) EntityType() EntityType { return EntityTypeChain }

// FoldableEntity is anything that can live inside a folder.
type FoldableEntity interface {
	GetID() string
	GetName() string
	GetParentID() *string
	EntityType() EntityType
}

// ChainFilter narrows a chain listing. A nil filter matches every chain.
type ChainFilter func(chain *Chain) bool

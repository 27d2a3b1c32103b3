package catalog

import "time"

// Well-known element types and property names.
const (
	ElementTypeServiceCall = "service-call"
	ElementTypeMapper2     = "mapper-2"

	PropertyAfter = "after"
	PropertyType  = "type"
)

// ChainElement is a single step of a chain. Properties is the free-form bag
// edited in the designer; nested structures decode as []any / map[string]any.
type ChainElement struct {
	ID         string         `json:"id" db:"id"`
	ChainID    string         `json:"chain_id" db:"chain_id"`
	Type       string         `json:"type" db:"type"`
	Name       string         `json:"name" db:"name"`
	Properties map[string]any `json:"properties" db:"properties"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	ModifiedAt time.Time      `json:"modified_at" db:"modified_at"`
}

package catalog

import "time"

// Template is a reusable bundle of configuration referenced by id from chain
// elements. Identity is the ID; Name is informational.
type Template struct {
	ID          string         `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Description string         `json:"description,omitempty" db:"description"`
	Properties  map[string]any `json:"properties" db:"properties"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	ModifiedAt  time.Time      `json:"modified_at" db:"modified_at"`
}

package catalog

import "time"

// Deployment is a live runtime deployment of a chain. Only the fields needed
// for cleanup are modelled here.
type Deployment struct {
	ID        string    `json:"id" db:"id"`
	ChainID   string    `json:"chain_id" db:"chain_id"`
	Domain    string    `json:"domain" db:"domain"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

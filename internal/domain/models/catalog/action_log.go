package catalog

import "time"

type EntityType string

const (
	EntityTypeFolder    EntityType = "FOLDER"
	EntityTypeChain     EntityType = "CHAIN"
	EntityTypeTemplate  EntityType = "TEMPLATE"
	EntityTypeTemplates EntityType = "TEMPLATES"
)

type LogOperation string

const (
	LogOperationCreate LogOperation = "CREATE"
	LogOperationUpdate LogOperation = "UPDATE"
	LogOperationDelete LogOperation = "DELETE"
	LogOperationMove   LogOperation = "MOVE"
	LogOperationExport LogOperation = "EXPORT"
	LogOperationImport LogOperation = "IMPORT"
)

// ActionLog is one audit record.
type ActionLog struct {
	ID         string       `json:"id"`
	ActionTime time.Time    `json:"action_time"`
	UserID     string       `json:"user_id,omitempty"`
	EntityType EntityType   `json:"entity_type"`
	EntityID   string       `json:"entity_id,omitempty"`
	EntityName string       `json:"entity_name,omitempty"`
	ParentType EntityType   `json:"parent_type,omitempty"`
	ParentID   string       `json:"parent_id,omitempty"`
	ParentName string       `json:"parent_name,omitempty"`
	Operation  LogOperation `json:"operation"`
}

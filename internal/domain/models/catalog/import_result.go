package catalog

import "gopkg.in/yaml.v3"

type ImportStatus string

const (
	ImportStatusCreated ImportStatus = "CREATED"
	ImportStatusUpdated ImportStatus = "UPDATED"
	ImportStatusIgnored ImportStatus = "IGNORED"
	ImportStatusError   ImportStatus = "ERROR"
)

// ImportResult is the per-file outcome of a template import.
type ImportResult struct {
	ID          string       `json:"id,omitempty"`
	Name        string       `json:"name,omitempty"`
	ArchiveName string       `json:"archive_name,omitempty"`
	Status      ImportStatus `json:"status"`
	Message     string       `json:"message,omitempty"`
}

// ExportedTemplate pairs a template id with its serialized document. It only
// lives for the duration of an export.
type ExportedTemplate struct {
	ID   string
	Node *yaml.Node
}

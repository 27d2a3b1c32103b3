package handler

import "net/http"

// Handlers groups every API handler for route registration
type Handlers struct {
	Folders      *FolderHandler
	Chains       *ChainHandler
	Templates    *TemplateHandler
	ExportImport *ExportImportHandler
	ActionLogs   *ActionLogHandler
}

// Register mounts the API on mux (Go 1.22+ method patterns)
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", HealthCheck)

	// Folder routes
	mux.HandleFunc("GET /api/folders", h.Folders.ListRootFolders)
	mux.HandleFunc("POST /api/folders", h.Folders.CreateFolder)
	mux.HandleFunc("PUT /api/folders/tree", h.Folders.Reattach) // must come before {id}
	mux.HandleFunc("GET /api/folders/{id}", h.Folders.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", h.Folders.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", h.Folders.DeleteFolder)
	mux.HandleFunc("POST /api/folders/{id}/move", h.Folders.MoveFolder)
	mux.HandleFunc("GET /api/folders/{id}/path", h.Folders.GetAncestors)
	mux.HandleFunc("GET /api/folders/{id}/chains", h.Folders.ListNestedChains)
	mux.HandleFunc("GET /api/folders/{id}/folders", h.Folders.ListNestedFolders)

	// Chain routes
	mux.HandleFunc("POST /api/chains", h.Chains.CreateChain)
	mux.HandleFunc("GET /api/chains/{id}", h.Chains.GetChain)
	mux.HandleFunc("DELETE /api/chains/{id}", h.Chains.DeleteChain)
	mux.HandleFunc("POST /api/chains/{id}/move", h.Chains.MoveChain)
	mux.HandleFunc("GET /api/chains/{id}/elements", h.Chains.GetElements)
	mux.HandleFunc("POST /api/chains/{id}/elements", h.Chains.AddElement)

	// Template routes
	mux.HandleFunc("GET /api/templates", h.Templates.ListTemplates)
	mux.HandleFunc("POST /api/templates", h.Templates.CreateTemplate)
	mux.HandleFunc("GET /api/templates/{id}", h.Templates.GetTemplate)
	mux.HandleFunc("PUT /api/templates/{id}", h.Templates.UpdateTemplate)
	mux.HandleFunc("DELETE /api/templates/{id}", h.Templates.DeleteTemplate)

	// Archive routes
	mux.HandleFunc("GET /v1/export/template", h.ExportImport.ExportTemplates)
	mux.HandleFunc("POST /v1/export/template", h.ExportImport.ExportTemplates)
	mux.HandleFunc("POST /v1/import/template", h.ExportImport.ImportTemplates)

	mux.HandleFunc("GET /api/action-logs", h.ActionLogs.ListActionLogs)
}

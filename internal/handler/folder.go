package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	models "chaincatalog/internal/domain/models/catalog"
	catalogSvc "chaincatalog/internal/domain/services/catalog"
	"chaincatalog/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService catalogSvc.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService catalogSvc.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

// updateFolderBody is a PATCH body. parent_folder_id distinguishes "absent"
// (keep) from null (move to root); a null description clears it.
type updateFolderBody struct {
	Name           *string                 `json:"name"`
	Description    httputil.OptionalString `json:"description"`
	ParentFolderID httputil.OptionalString `json:"parent_folder_id"`
}

// CreateFolder creates a new folder
// POST /api/folders
// Returns 201 if created, 409 with existing folder if a sibling has the same name
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req catalogSvc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, h.logger, err, func(id string) (*models.Folder, error) {
			return h.folderService.GetFolder(r.Context(), id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// ListRootFolders lists folders without a parent
// GET /api/folders
func (h *FolderHandler) ListRootFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folderService.ListRoot(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if folders == nil {
		folders = []models.Folder{}
	}
	httputil.RespondJSON(w, http.StatusOK, folders)
}

// GetFolder retrieves a folder with its immediate children
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	folder, err := h.folderService.GetFolder(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// UpdateFolder renames a folder and/or moves it
// PATCH /api/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body updateFolderBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		folder *models.Folder
		err    error
	)
	if body.Name != nil || body.Description.Present {
		cleared := ""
		description := body.Description.Or(nil)
		if body.Description.Present && description == nil {
			description = &cleared
		}
		folder, err = h.folderService.UpdateFolder(r.Context(), id, &catalogSvc.UpdateFolderRequest{
			Name:        body.Name,
			Description: description,
		})
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
	}

	if body.ParentFolderID.Present {
		target := body.ParentFolderID.Value
		if target != nil && *target == "" {
			target = nil
		}
		folder, err = h.folderService.MoveFolder(r.Context(), id, target)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
	}

	if folder == nil {
		folder, err = h.folderService.GetFolder(r.Context(), id)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// MoveFolder reparents a folder
// POST /api/folders/{id}/move
func (h *FolderHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req catalogSvc.MoveFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TargetFolderID != nil && *req.TargetFolderID == "" {
		req.TargetFolderID = nil
	}

	folder, err := h.folderService.MoveFolder(r.Context(), id, req.TargetFolderID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder with its whole subtree
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetAncestors returns the breadcrumb as an ordered {id: name} object, root first
// GET /api/folders/{id}/path
func (h *FolderHandler) GetAncestors(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	path, err := h.folderService.GetAncestors(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, breadcrumb(path))
}

// ListNestedChains lists chains anywhere below the folder
// GET /api/folders/{id}/chains?name=
func (h *FolderHandler) ListNestedChains(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var filter models.ChainFilter
	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		needle := strings.ToLower(name)
		filter = func(chain *models.Chain) bool {
			return strings.Contains(strings.ToLower(chain.Name), needle)
		}
	}

	chains, err := h.folderService.FindNestedChains(r.Context(), id, filter)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if chains == nil {
		chains = []models.Chain{}
	}
	httputil.RespondJSON(w, http.StatusOK, chains)
}

// ListNestedFolders lists every descendant folder
// GET /api/folders/{id}/folders
func (h *FolderHandler) ListNestedFolders(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	folders, err := h.folderService.FindNestedFolders(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if folders == nil {
		folders = []models.Folder{}
	}
	httputil.RespondJSON(w, http.StatusOK, folders)
}

// Reattach persists a client-built subtree
// PUT /api/folders/tree
func (h *FolderHandler) Reattach(w http.ResponseWriter, r *http.Request) {
	var state models.Folder
	if err := httputil.ParseJSON(w, r, &state); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	linkParents(&state)

	root, err := h.folderService.Reattach(r.Context(), &state)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	unlinkParents(root)

	httputil.RespondJSON(w, http.StatusOK, root)
}

// linkParents restores the Parent back-links that JSON cannot carry. A posted
// "parent_folder" object becomes the parent of the top folder.
func linkParents(top *models.Folder) {
	stack := []*models.Folder{top}
	for len(stack) > 0 {
		folder := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range folder.Folders {
			if child == nil {
				continue
			}
			child.Parent = folder
			stack = append(stack, child)
		}
	}
}

// unlinkParents drops the back-links again so the tree encodes without cycles
func unlinkParents(top *models.Folder) {
	top.Parent = nil
	stack := []*models.Folder{top}
	seen := map[*models.Folder]bool{top: true}
	for len(stack) > 0 {
		folder := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range folder.Folders {
			if child == nil || seen[child] {
				continue
			}
			seen[child] = true
			child.Parent = nil
			stack = append(stack, child)
		}
	}
}

// breadcrumb marshals as a JSON object whose key order follows the path
type breadcrumb []models.PathEntry

func (b breadcrumb) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.ID)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	models "chaincatalog/internal/domain/models/catalog"
	catalogSvc "chaincatalog/internal/domain/services/catalog"
	"chaincatalog/internal/httputil"
)

const (
	exportFileTimeFormat = "20060102-150405"
	multipartMemory      = 32 << 20
)

// ExportImportHandler serves template archive downloads and uploads
type ExportImportHandler struct {
	service          catalogSvc.TemplateExportImportService
	archiveExtension string
	maxUploadBytes   int64
	now              func() time.Time
	logger           *slog.Logger
}

// NewExportImportHandler creates the handler. maxUploadMB <= 0 disables the cap.
func NewExportImportHandler(service catalogSvc.TemplateExportImportService, archiveExtension string, maxUploadMB int64, logger *slog.Logger) *ExportImportHandler {
	return &ExportImportHandler{
		service:          service,
		archiveExtension: archiveExtension,
		maxUploadBytes:   maxUploadMB << 20,
		now:              time.Now,
		logger:           logger,
	}
}

// ExportTemplates streams an archive of the selected templates
// GET|POST /v1/export/template?templateIds=a,b
// Returns 204 when nothing matched
func (h *ExportImportHandler) ExportTemplates(w http.ResponseWriter, r *http.Request) {
	ids := httputil.ParseIDList(r.URL.Query()["templateIds"])

	archive, err := h.service.ExportTemplates(r.Context(), ids)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if archive == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	filename := fmt.Sprintf("export_%s.%s", h.now().Format(exportFileTimeFormat), h.archiveExtension)
	httputil.RespondAttachment(w, filename, archive)
}

// ImportTemplates imports an uploaded archive
// POST /v1/import/template (multipart: file, optional templateIds)
// Returns 200, 207 when any item failed, 204 when the archive held nothing
func (h *ExportImportHandler) ImportTemplates(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		if r.ContentLength > h.maxUploadBytes {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("archive exceeds %d bytes", h.maxUploadBytes))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("archive exceeds %d bytes", tooLarge.Limit))
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer func() { _ = file.Close() }()

	ids := httputil.ParseIDList(append(r.MultipartForm.Value["templateIds"], r.URL.Query()["templateIds"]...))

	h.logger.Info("starting template import",
		"archive", header.Filename,
		"size", header.Size,
		"include_ids", len(ids),
	)

	results, err := h.service.ImportTemplates(r.Context(), catalogSvc.UploadedFile{
		Filename: header.Filename,
		Content:  file,
	}, ids)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if len(results) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.RespondJSON(w, importStatus(results), results)
}

func importStatus(results []models.ImportResult) int {
	for _, r := range results {
		if r.Status == models.ImportStatusError {
			return http.StatusMultiStatus
		}
	}
	return http.StatusOK
}

package catalog

import (
	"context"
	"io"

	models "chaincatalog/internal/domain/models/catalog"
)

// TemplateExportImportService moves templates in and out of archives
type TemplateExportImportService interface {
	// ExportTemplates packs the requested templates (all when ids is empty).
	// A nil slice with a nil error means there was nothing to export.
	ExportTemplates(ctx context.Context, ids []string) ([]byte, error)

	// ImportTemplates imports every template file of the archive, best effort,
	// one transaction per template. includeIDs, when non-empty, limits the
	// import to those ids; the others are reported as IGNORED.
	ImportTemplates(ctx context.Context, file UploadedFile, includeIDs []string) ([]models.ImportResult, error)
}

// UploadedFile represents an archive uploaded for import
type UploadedFile struct {
	Filename string
	Content  io.Reader
}

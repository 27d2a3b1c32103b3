package exportimport

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"chaincatalog/internal/domain"
	models "chaincatalog/internal/domain/models/catalog"
	catalogRepo "chaincatalog/internal/domain/repositories/catalog"
	catalogSvc "chaincatalog/internal/domain/services/catalog"
	"chaincatalog/internal/metrics"
)

// Options configures the template export/import service
type Options struct {
	// TempDir is the parent of the per-import scratch directories
	TempDir string
	// ArchiveExtension is the accepted upload extension, without the dot
	ArchiveExtension string
}

type templateExportImportService struct {
	store        catalogRepo.Store
	txManager    catalogRepo.TransactionManager
	templates    catalogSvc.TemplateService
	serializer   *Serializer
	extractor    *Extractor
	actionLogger catalogSvc.ActionLogger
	metrics      *metrics.Metrics
	opts         Options
	importSlot   *semaphore.Weighted
	logger       *slog.Logger
}

// NewTemplateExportImportService creates the service. metrics may be nil.
func NewTemplateExportImportService(
	store catalogRepo.Store,
	txManager catalogRepo.TransactionManager,
	templates catalogSvc.TemplateService,
	serializer *Serializer,
	extractor *Extractor,
	actionLogger catalogSvc.ActionLogger,
	m *metrics.Metrics,
	opts Options,
	logger *slog.Logger,
) catalogSvc.TemplateExportImportService {
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.ArchiveExtension == "" {
		opts.ArchiveExtension = "zip"
	}
	return &templateExportImportService{
		store:        store,
		txManager:    txManager,
		templates:    templates,
		serializer:   serializer,
		extractor:    extractor,
		actionLogger: actionLogger,
		metrics:      m,
		opts:         opts,
		importSlot:   semaphore.NewWeighted(1),
		logger:       logger,
	}
}

// ExportTemplates packs the requested templates. Unknown ids are skipped and
// an empty selection returns nil without error. Any failure aborts the export.
func (s *templateExportImportService) ExportTemplates(ctx context.Context, ids []string) ([]byte, error) {
	var (
		selected []models.Template
		err      error
	)
	if len(ids) == 0 {
		selected, err = s.store.Templates().List(ctx)
	} else {
		selected, err = s.store.Templates().GetByIDs(ctx, ids)
	}
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	if len(selected) == 0 {
		s.logger.Info("nothing to export", "requested_ids", len(ids))
		return nil, nil
	}

	exported := make([]*models.ExportedTemplate, 0, len(selected))
	for i := range selected {
		et, err := s.serializer.Serialize(&selected[i])
		if err != nil {
			return nil, err
		}
		exported = append(exported, et)
	}

	archive, err := s.serializer.Pack(exported)
	if err != nil {
		return nil, err
	}

	for i := range selected {
		s.actionLogger.LogAction(ctx, models.ActionLog{
			EntityType: models.EntityTypeTemplate,
			EntityID:   selected[i].ID,
			EntityName: selected[i].Name,
			Operation:  models.LogOperationExport,
		})
	}
	s.metrics.RecordExport(len(selected))

	s.logger.Info("templates exported", "count", len(selected), "bytes", len(archive))
	return archive, nil
}

// ImportTemplates imports an archive best effort. Imports are serialized
// process wide; each template is committed in its own transaction.
func (s *templateExportImportService) ImportTemplates(ctx context.Context, file catalogSvc.UploadedFile, includeIDs []string) ([]models.ImportResult, error) {
	archiveName := filepath.Base(file.Filename)

	s.actionLogger.LogAction(ctx, models.ActionLog{
		EntityType: models.EntityTypeTemplates,
		EntityName: archiveName,
		Operation:  models.LogOperationImport,
	})

	ext := strings.TrimPrefix(filepath.Ext(archiveName), ".")
	if !strings.EqualFold(ext, s.opts.ArchiveExtension) {
		return nil, &domain.UnsupportedFormatError{FileName: archiveName, Extension: ext}
	}

	if err := s.importSlot.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for running import: %w", err)
	}
	defer s.importSlot.Release(1)

	start := time.Now()

	scratch := filepath.Join(s.opts.TempDir, uuid.NewString())
	if err := os.MkdirAll(scratch, 0o700); err != nil {
		return nil, fmt.Errorf("create import directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			s.logger.Warn("failed to remove import directory", "dir", scratch, "error", err)
		}
	}()

	files, err := s.extractor.Extract(file.Content, scratch)
	if err != nil {
		return nil, err
	}

	include := make(map[string]bool, len(includeIDs))
	for _, id := range includeIDs {
		include[id] = true
	}

	results := make([]models.ImportResult, 0, len(files))
	for _, path := range files {
		result := s.importFile(ctx, path, include)
		result.ArchiveName = archiveName
		results = append(results, result)
	}

	s.metrics.RecordImportResults(results, time.Since(start).Seconds())
	s.logger.Info("templates imported",
		"archive", archiveName,
		"files", len(files),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

// importFile processes one extracted file; every failure becomes an ERROR result
func (s *templateExportImportService) importFile(ctx context.Context, path string, include map[string]bool) models.ImportResult {
	fileName := filepath.Base(path)
	candidateID := s.extractor.EntityID(path)

	if len(include) > 0 && !include[candidateID] {
		return models.ImportResult{ID: candidateID, Name: candidateID, Status: models.ImportStatusIgnored}
	}

	result := models.ImportResult{ID: candidateID, Name: candidateID}

	node, err := s.serializer.ParseFile(path)
	if err != nil {
		return s.failed(result, fileName, err)
	}

	if id, name, err := s.serializer.ReadIdentity(node); err == nil {
		if id != "" {
			result.ID = id
		}
		if name != "" {
			result.Name = name
		}
	}

	template, err := s.serializer.Deserialize(node, fileName)
	if err != nil {
		return s.failed(result, fileName, err)
	}

	var status models.ImportStatus
	err = s.txManager.ExecTx(ctx, func(ctx context.Context, store catalogRepo.Store) error {
		_, err := store.Templates().GetByID(ctx, template.ID)
		switch {
		case err == nil:
			status = models.ImportStatusUpdated
			return s.templates.UpdateIn(ctx, store, template)
		case isNotFound(err):
			status = models.ImportStatusCreated
			return s.templates.CreateIn(ctx, store, template)
		default:
			return err
		}
	})
	if err != nil {
		return s.failed(result, fileName, err)
	}

	result.ID = template.ID
	result.Name = template.Name
	result.Status = status
	s.logger.Debug("template imported", "id", template.ID, "status", status, "file", fileName)
	return result
}

func (s *templateExportImportService) failed(result models.ImportResult, fileName string, err error) models.ImportResult {
	s.logger.Warn("template import failed", "id", result.ID, "file", fileName, "error", err)
	result.Status = models.ImportStatusError
	result.Message = err.Error()
	return result
}

package exportimport

import (
	"bytes"
	"context"
	"maps"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaincatalog/internal/domain"
	models "chaincatalog/internal/domain/models/catalog"
	catalogSvc "chaincatalog/internal/domain/services/catalog"
	"chaincatalog/internal/metrics"
	"chaincatalog/internal/repository/memory"
	catalogService "chaincatalog/internal/service/catalog"
)

type recordingActionLogger struct {
	mu      sync.Mutex
	actions []models.ActionLog
}

func (r *recordingActionLogger) LogAction(ctx context.Context, action models.ActionLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func (r *recordingActionLogger) List(ctx context.Context, limit int) ([]models.ActionLog, error) {
	return r.actions, nil
}

type fixture struct {
	store   *memory.Store
	service catalogSvc.TemplateExportImportService
	actions *recordingActionLogger
	tempDir string
}

func newFixture(t *testing.T) *fixture {
	store := memory.NewStore()
	actions := &recordingActionLogger{}
	layout := DefaultTemplateLayout()
	tempDir := t.TempDir()

	svc := NewTemplateExportImportService(
		store,
		store,
		catalogService.NewTemplateService(store, actions, discardLogger()),
		NewSerializer(layout),
		NewExtractor(layout, 0, discardLogger()),
		actions,
		metrics.New(),
		Options{TempDir: tempDir, ArchiveExtension: "zip"},
		discardLogger(),
	)
	return &fixture{store: store, service: svc, actions: actions, tempDir: tempDir}
}

func (f *fixture) importArchive(t *testing.T, archive []byte, include ...string) []models.ImportResult {
	t.Helper()
	results, err := f.service.ImportTemplates(context.Background(), catalogSvc.UploadedFile{
		Filename: "bundle.zip",
		Content:  bytes.NewReader(archive),
	}, include)
	require.NoError(t, err)
	return results
}

func (f *fixture) assertScratchRemoved(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func templateArchive(t *testing.T, docs map[string]string) []byte {
	t.Helper()
	layout := DefaultTemplateLayout()
	members := make(map[string]string, len(docs))
	order := make([]string, 0, len(docs))
	for _, id := range slices.Sorted(maps.Keys(docs)) {
		name := layout.EntryPath(id)
		members[name] = docs[id]
		order = append(order, name)
	}
	return buildArchive(t, members, order)
}

func TestImport_CreateThenUpdate(t *testing.T) {
	f := newFixture(t)
	archive := templateArchive(t, map[string]string{
		"T1": "id: T1\nname: first\nproperties:\n  k: v\n",
	})

	results := f.importArchive(t, archive)
	require.Len(t, results, 1)
	assert.Equal(t, "T1", results[0].ID)
	assert.Equal(t, models.ImportStatusCreated, results[0].Status)
	assert.Equal(t, "bundle.zip", results[0].ArchiveName)

	results = f.importArchive(t, archive)
	require.Len(t, results, 1)
	assert.Equal(t, models.ImportStatusUpdated, results[0].Status)

	got, err := f.store.Templates().GetByID(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, "v", got.Properties["k"])
	f.assertScratchRemoved(t)
}

func TestImport_IncludeIDs(t *testing.T) {
	f := newFixture(t)
	archive := templateArchive(t, map[string]string{
		"T1": "id: T1\nname: one\n",
		"T2": "id: T2\nname: two\n",
	})

	results := f.importArchive(t, archive, "T2")
	require.Len(t, results, 2)

	assert.Equal(t, models.ImportResult{ID: "T1", Name: "T1", ArchiveName: "bundle.zip", Status: models.ImportStatusIgnored}, results[0])
	assert.Equal(t, "T2", results[1].ID)
	assert.Contains(t, []models.ImportStatus{models.ImportStatusCreated, models.ImportStatusUpdated}, results[1].Status)

	_, err := f.store.Templates().GetByID(context.Background(), "T1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImport_PartialFailure(t *testing.T) {
	f := newFixture(t)
	archive := templateArchive(t, map[string]string{
		"T1": "id: T1\nname: [unterminated\n",
		"T2": "id: T2\nname: good\n",
	})

	results := f.importArchive(t, archive)
	require.Len(t, results, 2)

	assert.Equal(t, models.ImportStatusError, results[0].Status)
	assert.Equal(t, "T1", results[0].ID)
	assert.NotEmpty(t, results[0].Message)
	assert.Contains(t, results[0].Message, "template-T1.yaml")

	assert.Equal(t, models.ImportStatusCreated, results[1].Status)
	_, err := f.store.Templates().GetByID(context.Background(), "T2")
	assert.NoError(t, err)
	f.assertScratchRemoved(t)
}

func TestImport_DeserializationFailureKeepsIdentity(t *testing.T) {
	f := newFixture(t)
	archive := templateArchive(t, map[string]string{
		"T1": "id: T1\nname: broken\nproperties: [1, 2]\n",
		"T2": "name: no id\n",
	})

	results := f.importArchive(t, archive)
	require.Len(t, results, 2)

	assert.Equal(t, models.ImportStatusError, results[0].Status)
	assert.Equal(t, "broken", results[0].Name)

	assert.Equal(t, models.ImportStatusError, results[1].Status)
	assert.Equal(t, "T2", results[1].ID)
	assert.Equal(t, "no id", results[1].Name)
	assert.Contains(t, results[1].Message, "id")
}

func TestImport_ValidationFailureIsPerItem(t *testing.T) {
	f := newFixture(t)
	archive := templateArchive(t, map[string]string{
		"T1": "id: T1\n",
		"T2": "id: T2\nname: ok\n",
	})

	results := f.importArchive(t, archive)
	require.Len(t, results, 2)
	assert.Equal(t, models.ImportStatusError, results[0].Status)
	assert.Equal(t, models.ImportStatusCreated, results[1].Status)
}

func TestImport_UnsupportedFormat(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ImportTemplates(context.Background(), catalogSvc.UploadedFile{
		Filename: "bundle.tar.gz",
		Content:  bytes.NewReader([]byte("whatever")),
	}, nil)

	var unsupported *domain.UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "gz", unsupported.Extension)
	f.assertScratchRemoved(t)

	// the import call is still audited once
	require.Len(t, f.actions.actions, 1)
	assert.Equal(t, models.EntityTypeTemplates, f.actions.actions[0].EntityType)
	assert.Equal(t, "bundle.tar.gz", f.actions.actions[0].EntityName)
}

func TestImport_MalformedArchiveCleansUp(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ImportTemplates(context.Background(), catalogSvc.UploadedFile{
		Filename: "bundle.zip",
		Content:  bytes.NewReader([]byte("not a zip")),
	}, nil)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	f.assertScratchRemoved(t)
}

func TestImport_EmptyArchive(t *testing.T) {
	f := newFixture(t)
	results := f.importArchive(t, buildArchive(t, nil, nil))
	assert.Empty(t, results)
}

func TestImport_Serialized(t *testing.T) {
	f := newFixture(t)
	archive := templateArchive(t, map[string]string{"T1": "id: T1\nname: one\n"})

	var wg sync.WaitGroup
	statuses := make(chan models.ImportStatus, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := f.service.ImportTemplates(context.Background(), catalogSvc.UploadedFile{
				Filename: "bundle.zip",
				Content:  bytes.NewReader(archive),
			}, nil)
			if err == nil && len(results) == 1 {
				statuses <- results[0].Status
			}
		}()
	}
	wg.Wait()
	close(statuses)

	created := 0
	total := 0
	for s := range statuses {
		total++
		if s == models.ImportStatusCreated {
			created++
		}
	}
	assert.Equal(t, 8, total)
	assert.Equal(t, 1, created)
}

func TestImport_CancelledWhileWaiting(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// a cancelled context may still win an uncontended slot; hold it first
	svc := f.service.(*templateExportImportService)
	require.NoError(t, svc.importSlot.Acquire(context.Background(), 1))
	defer svc.importSlot.Release(1)

	_, err := f.service.ImportTemplates(ctx, catalogSvc.UploadedFile{
		Filename: "bundle.zip",
		Content:  bytes.NewReader(nil),
	}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExport_RoundTripThroughImport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, tmpl := range sampleTemplates() {
		require.NoError(t, f.store.Templates().Create(ctx, &tmpl))
	}

	archive, err := f.service.ExportTemplates(ctx, nil)
	require.NoError(t, err)
	require.NotNil(t, archive)

	exports := 0
	for _, a := range f.actions.actions {
		if a.Operation == models.LogOperationExport {
			exports++
			assert.Equal(t, models.EntityTypeTemplate, a.EntityType)
		}
	}
	assert.Equal(t, len(sampleTemplates()), exports)

	target := newFixture(t)
	results := target.importArchive(t, archive)
	require.Len(t, results, len(sampleTemplates()))
	for _, r := range results {
		assert.Equal(t, models.ImportStatusCreated, r.Status, r.Message)
	}

	got, err := target.store.Templates().GetByID(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, sampleTemplates()[0].Properties, got.Properties)
}

func TestExport_SelectedIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, tmpl := range sampleTemplates() {
		require.NoError(t, f.store.Templates().Create(ctx, &tmpl))
	}

	archive, err := f.service.ExportTemplates(ctx, []string{"T2", "missing"})
	require.NoError(t, err)

	unpacked, err := NewSerializer(DefaultTemplateLayout()).Unpack(archive)
	require.NoError(t, err)
	require.Len(t, unpacked, 1)
	assert.Equal(t, "T2", unpacked[0].ID)
}

func TestExport_NothingMatched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.Templates().Create(ctx, &models.Template{ID: "T1", Name: "one"}))

	archive, err := f.service.ExportTemplates(ctx, []string{"nope", "also-nope"})
	require.NoError(t, err)
	assert.Nil(t, archive)
	assert.Empty(t, f.actions.actions)

	empty := newFixture(t)
	archive, err = empty.service.ExportTemplates(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, archive)
}

package exportimport

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaincatalog/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtract_FiltersAndPreservesPaths(t *testing.T) {
	order := []string{
		"templates/T1/template-T1.yaml",
		"README.md",
		"templates/T2/template-T2.yaml",
		"templates/T2/notes.txt",
		"services/S1/service-S1.yaml",
	}
	members := map[string]string{}
	for _, name := range order {
		members[name] = "id: x\n"
	}
	archive := buildArchive(t, members, order)

	dest := t.TempDir()
	files, err := NewExtractor(DefaultTemplateLayout(), 0, discardLogger()).Extract(bytes.NewReader(archive), dest)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dest, "templates", "T1", "template-T1.yaml"),
		filepath.Join(dest, "templates", "T2", "template-T2.yaml"),
	}, files)
	for _, f := range files {
		_, err := os.Stat(f)
		assert.NoError(t, err)
	}
	_, err = os.Stat(filepath.Join(dest, "README.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtract_ServiceLayout(t *testing.T) {
	order := []string{"templates/T1/template-T1.yaml", "services/S1/service-S1.yaml"}
	archive := buildArchive(t, map[string]string{order[0]: "a", order[1]: "b"}, order)

	e := NewExtractor(ServiceLayout(), 0, discardLogger())
	files, err := e.Extract(bytes.NewReader(archive), t.TempDir())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "S1", e.EntityID(files[0]))
}

func TestExtract_Malformed(t *testing.T) {
	_, err := NewExtractor(DefaultTemplateLayout(), 0, discardLogger()).
		Extract(bytes.NewReader([]byte("garbage")), t.TempDir())

	var extractionErr *domain.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_RejectsPathTraversal(t *testing.T) {
	name := "templates/../../escape/template-evil.yaml"
	archive := buildArchive(t, map[string]string{name: "id: evil\n"}, []string{name})

	parent := t.TempDir()
	dest := filepath.Join(parent, "scratch")
	_, err := NewExtractor(DefaultTemplateLayout(), 0, discardLogger()).Extract(bytes.NewReader(archive), dest)
	assert.ErrorIs(t, err, domain.ErrExtraction)

	_, statErr := os.Stat(filepath.Join(parent, "escape"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExtract_SizeCap(t *testing.T) {
	order := []string{"templates/T1/template-T1.yaml"}
	archive := buildArchive(t, map[string]string{order[0]: "id: T1\n"}, order)

	_, err := NewExtractor(DefaultTemplateLayout(), 10, discardLogger()).Extract(bytes.NewReader(archive), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_MemberSizeCap(t *testing.T) {
	const limit = 64 << 10
	name := "templates/T1/template-T1.yaml"
	archive := buildArchive(t, map[string]string{name: strings.Repeat("0", 4<<20)}, []string{name})
	require.Less(t, len(archive), limit)

	_, err := NewExtractor(DefaultTemplateLayout(), limit, discardLogger()).Extract(bytes.NewReader(archive), t.TempDir())

	var extractionErr *domain.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, name, extractionErr.Member)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestEntityID(t *testing.T) {
	tests := []struct {
		layout Layout
		file   string
		want   string
	}{
		{DefaultTemplateLayout(), "/tmp/x/templates/T1/template-T1.yaml", "T1"},
		{DefaultTemplateLayout(), "template-with-dashes.yaml", "with-dashes"},
		{Layout{Dir: "templates", FileExt: "yaml"}, "templates/T9/T9.yaml", "T9"},
		{ServiceLayout(), "services/a/service-a.yaml", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.layout.EntityID(tt.file))
		})
	}
}

func TestLayout_EmptyPrefixMatchesPlainNames(t *testing.T) {
	l := Layout{Dir: "templates", FileExt: "yaml"}
	assert.Equal(t, "templates/T1/T1.yaml", l.EntryPath("T1"))

	e := NewExtractor(l, 0, discardLogger())
	assert.True(t, e.Matches("templates/T1/T1.yaml"))
	assert.False(t, e.Matches("other/T1/T1.yaml"))
}

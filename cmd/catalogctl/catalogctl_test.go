package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "chaincatalog/internal/domain/models/catalog"
	"chaincatalog/internal/service/exportimport"
)

func writeArchive(t *testing.T, dir string, templates ...models.Template) string {
	t.Helper()
	serializer := exportimport.NewSerializer(exportimport.DefaultTemplateLayout())

	var exported []*models.ExportedTemplate
	for i := range templates {
		et, err := serializer.Serialize(&templates[i])
		require.NoError(t, err)
		exported = append(exported, et)
	}
	archive, err := serializer.Pack(exported)
	require.NoError(t, err)

	path := filepath.Join(dir, "bundle.zip")
	require.NoError(t, os.WriteFile(path, archive, 0o644))
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	path := writeArchive(t, dir,
		models.Template{ID: "T1", Name: "first"},
		models.Template{ID: "T2", Name: "second"},
	)

	out, err := runCmd(t, "inspect", path)
	require.NoError(t, err)

	assert.Contains(t, out, "T1")
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "templates/T2/template-T2.yaml")
}

func TestImportDryRun(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("IMPORT_TEMP_DIR", dir)
	path := writeArchive(t, dir, models.Template{ID: "T1", Name: "first"}, models.Template{ID: "T2", Name: "second"})

	out, err := runCmd(t, "import", path, "--dry-run", "--ids", "T2")
	require.NoError(t, err)

	assert.Regexp(t, `T1\s+T1\s+IGNORED`, out)
	assert.Regexp(t, `T2\s+second\s+CREATED`, out)
}

func TestImportDryRun_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("IMPORT_TEMP_DIR", dir)
	path := writeArchive(t, dir, models.Template{ID: "T1"})

	out, err := runCmd(t, "import", path, "--dry-run")
	require.Error(t, err)
	assert.Contains(t, out, "ERROR")
}

func TestImport_MissingArchive(t *testing.T) {
	_, err := runCmd(t, "import", filepath.Join(t.TempDir(), "nope.zip"), "--dry-run")
	assert.Error(t, err)
}

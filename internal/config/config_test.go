package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("TEMPLATE_FILE_PREFIX", "")
	t.Setenv("MAX_UPLOAD_MB", "")

	cfg := Load()

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "dev_", cfg.TablePrefix)
	assert.Equal(t, "templates", cfg.TemplateArchiveDir)
	assert.Equal(t, "template-", cfg.TemplateFilePrefix)
	assert.Equal(t, "yaml", cfg.TemplateFileExt)
	assert.EqualValues(t, 100, cfg.MaxUploadMB)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("STORAGE", "memory")
	t.Setenv("MAX_UPLOAD_MB", "not-a-number")

	cfg := Load()

	assert.Equal(t, "prod_", cfg.TablePrefix)
	assert.Equal(t, "memory", cfg.Storage)
	assert.EqualValues(t, 100, cfg.MaxUploadMB)

	t.Setenv("TABLE_PREFIX", "custom_")
	assert.Equal(t, "custom_", Load().TablePrefix)
}

func TestSetupLogFile_RemovesOldest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"catalog-2020-01-01T00-00-00.log", "catalog-2020-01-02T00-00-00.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	f, err := SetupLogFile(dir, 2)
	require.NoError(t, err)
	defer f.Close()

	files, err := filepath.Glob(filepath.Join(dir, "catalog-*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.NotContains(t, files, filepath.Join(dir, "catalog-2020-01-01T00-00-00.log"))
}

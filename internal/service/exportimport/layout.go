// Package exportimport moves catalog entities in and out of zip archives of
// YAML documents.
package exportimport

import (
	"path"
	"path/filepath"
	"strings"

	"chaincatalog/internal/config"
)

// Layout is the naming convention of one entity kind inside an archive:
// <Dir>/<id>/<FilePrefix><id>.<FileExt>
type Layout struct {
	Dir        string
	FilePrefix string
	FileExt    string
}

// TemplateLayout is the layout used for templates
func TemplateLayout(cfg *config.Config) Layout {
	return Layout{
		Dir:        cfg.TemplateArchiveDir,
		FilePrefix: cfg.TemplateFilePrefix,
		FileExt:    cfg.TemplateFileExt,
	}
}

// DefaultTemplateLayout is the template layout with default settings
func DefaultTemplateLayout() Layout {
	return Layout{
		Dir:        config.DefaultTemplateArchiveDir,
		FilePrefix: config.DefaultTemplateFilePrefix,
		FileExt:    config.DefaultTemplateFileExt,
	}
}

// ServiceLayout is the layout of the generic services directory
func ServiceLayout() Layout {
	return Layout{
		Dir:        config.DefaultServiceArchiveDir,
		FilePrefix: config.DefaultServiceFilePrefix,
		FileExt:    config.DefaultTemplateFileExt,
	}
}

// EntryPath returns the archive member path of an entity
func (l Layout) EntryPath(id string) string {
	return path.Join(l.Dir, id, l.FilePrefix+id+"."+l.FileExt)
}

// Holds reports whether id survives a trip through EntryPath and EntityID
// and lands inside Dir
func (l Layout) Holds(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	entry := l.EntryPath(id)
	if l.Dir != "" && !strings.HasPrefix(entry, l.Dir+"/") {
		return false
	}
	return l.EntityID(entry) == id
}

// Pattern is the doublestar pattern matching member files of this layout
func (l Layout) Pattern() string {
	return l.Dir + "/**/" + l.FilePrefix + "*." + l.FileExt
}

// EntityID derives the entity id from a file name by stripping the prefix
// and the extension. The file body is not read.
func (l Layout) EntityID(file string) string {
	base := filepath.Base(file)
	base = strings.TrimSuffix(base, "."+l.FileExt)
	return strings.TrimPrefix(base, l.FilePrefix)
}

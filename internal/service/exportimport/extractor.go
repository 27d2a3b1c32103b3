package exportimport

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"chaincatalog/internal/domain"
)

// Extractor unpacks the members of one layout into a scratch directory
type Extractor struct {
	layout  Layout
	pattern string
	maxSize int64
	logger  *slog.Logger
}

// NewExtractor creates an extractor. maxSize caps both the archive and every
// decompressed member, in bytes; zero means no cap.
func NewExtractor(layout Layout, maxSize int64, logger *slog.Logger) *Extractor {
	return &Extractor{
		layout:  layout,
		pattern: layout.Pattern(),
		maxSize: maxSize,
		logger:  logger,
	}
}

// Layout returns the naming convention the extractor filters on
func (e *Extractor) Layout() Layout { return e.layout }

// Matches reports whether an archive member belongs to the layout
func (e *Extractor) Matches(name string) bool {
	ok, err := doublestar.Match(e.pattern, name)
	return err == nil && ok
}

// Extract writes matching members under destDir, keeping their relative
// paths, and returns the written files in archive order. Other members are
// skipped. The caller owns destDir and removes it on every path.
func (e *Extractor) Extract(r io.Reader, destDir string) ([]string, error) {
	data, err := e.readAll(r)
	if err != nil {
		return nil, &domain.ExtractionError{Err: err}
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &domain.ExtractionError{Err: err}
	}

	var files []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !e.Matches(f.Name) {
			continue
		}
		if !filepath.IsLocal(filepath.FromSlash(f.Name)) {
			return nil, &domain.ExtractionError{Member: f.Name, Err: fmt.Errorf("illegal path outside the archive root")}
		}

		target := filepath.Join(destDir, filepath.FromSlash(f.Name))
		if err := writeMember(f, target, e.maxSize); err != nil {
			return nil, &domain.ExtractionError{Member: f.Name, Err: err}
		}
		files = append(files, target)
	}

	e.logger.Debug("archive extracted",
		"members", len(zr.File),
		"extracted", len(files),
		"dir", destDir,
	)
	return files, nil
}

// EntityID derives the entity id from an extracted file name
func (e *Extractor) EntityID(file string) string {
	return e.layout.EntityID(file)
}

func (e *Extractor) readAll(r io.Reader) ([]byte, error) {
	if e.maxSize <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, e.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > e.maxSize {
		return nil, fmt.Errorf("archive exceeds %d bytes", e.maxSize)
	}
	return data, nil
}

func writeMember(f *zip.File, target string, maxSize int64) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	var src io.Reader = rc
	if maxSize > 0 {
		src = io.LimitReader(rc, maxSize+1)
	}
	written, err := io.Copy(out, src)
	if err != nil {
		out.Close()
		return err
	}
	if maxSize > 0 && written > maxSize {
		out.Close()
		return fmt.Errorf("member exceeds %d bytes once decompressed", maxSize)
	}
	return out.Close()
}

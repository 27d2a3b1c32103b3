package exportimport

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"chaincatalog/internal/domain"
	models "chaincatalog/internal/domain/models/catalog"
)

// templateDocument is the on-disk shape of a template
type templateDocument struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Properties  map[string]any `yaml:"properties,omitempty"`
}

// Serializer converts templates to YAML documents and packs them into zip archives
type Serializer struct {
	layout Layout
}

// NewSerializer creates a serializer for the given layout
func NewSerializer(layout Layout) *Serializer {
	return &Serializer{layout: layout}
}

// Serialize builds the document node of a template
func (s *Serializer) Serialize(t *models.Template) (*models.ExportedTemplate, error) {
	var node yaml.Node
	err := node.Encode(templateDocument{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Properties:  t.Properties,
	})
	if err != nil {
		return nil, fmt.Errorf("encode template %s: %w", t.ID, err)
	}
	return &models.ExportedTemplate{ID: t.ID, Node: &node}, nil
}

// Pack writes one archive member per template, in input order
func (s *Serializer) Pack(templates []*models.ExportedTemplate) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	now := time.Now()
	for _, t := range templates {
		if !s.layout.Holds(t.ID) {
			return nil, &domain.ValidationError{Message: fmt.Sprintf("template id %q cannot be stored as an archive member", t.ID)}
		}
		content, err := encodeNode(t.Node)
		if err != nil {
			return nil, fmt.Errorf("encode template %s: %w", t.ID, err)
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     s.layout.EntryPath(t.ID),
			Method:   zip.Deflate,
			Modified: now,
		})
		if err != nil {
			return nil, fmt.Errorf("create archive entry for %s: %w", t.ID, err)
		}
		if _, err := w.Write(content); err != nil {
			return nil, fmt.Errorf("write archive entry for %s: %w", t.ID, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Unpack reads the template documents of an archive produced by Pack.
// Members outside the layout are skipped.
func (s *Serializer) Unpack(data []byte) ([]*models.ExportedTemplate, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &domain.ExtractionError{Err: err}
	}

	var out []*models.ExportedTemplate
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if ok, _ := doublestar.Match(s.layout.Pattern(), f.Name); !ok {
			continue
		}

		content, err := readMember(f)
		if err != nil {
			return nil, &domain.ExtractionError{Member: f.Name, Err: err}
		}
		node, err := decodeDocument(content, f.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, &models.ExportedTemplate{ID: s.layout.EntityID(f.Name), Node: node})
	}
	return out, nil
}

// ParseFile parses an extracted document
func (s *Serializer) ParseFile(path string) (*yaml.Node, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return decodeDocument(content, filepath.Base(path))
}

// ReadIdentity pulls id and name out of a document without decoding the rest,
// so a later decoding failure can still be attributed. Missing fields come
// back empty.
func (s *Serializer) ReadIdentity(node *yaml.Node) (id, name string, err error) {
	if node == nil || node.Kind != yaml.MappingNode {
		return "", "", fmt.Errorf("document is not a mapping")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			continue
		}
		switch key.Value {
		case "id":
			id = value.Value
		case "name":
			name = value.Value
		}
	}
	return id, name, nil
}

// Deserialize turns a document back into a template
func (s *Serializer) Deserialize(node *yaml.Node, fileName string) (*models.Template, error) {
	var doc templateDocument
	if err := node.Decode(&doc); err != nil {
		return nil, &domain.DeserializationError{FileName: fileName, Reason: "malformed template document", Err: err}
	}
	if doc.ID == "" {
		return nil, &domain.DeserializationError{FileName: fileName, Reason: "missing required field 'id'"}
	}

	props := doc.Properties
	if props == nil {
		props = map[string]any{}
	}
	return &models.Template{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		Properties:  props,
	}, nil
}

func encodeNode(node *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeDocument(content []byte, fileName string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, &domain.DeserializationError{FileName: fileName, Reason: "unparsable document", Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &domain.DeserializationError{FileName: fileName, Reason: "empty document"}
	}
	return doc.Content[0], nil
}

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

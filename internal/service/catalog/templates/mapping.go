package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chaincatalog/internal/domain"
	models "chaincatalog/internal/domain/models/catalog"
)

// Property names of the mapping reference pair.
const (
	PropertyMappingTemplateID  = "mappingTemplateId"
	PropertyMappingDescription = "mappingDescription"
)

// MappingRule describes where a mapping reference lives: a list property of
// the element whose entries of SubElementType carry ReferenceProperty.
type MappingRule struct {
	ElementType       string
	ListProperty      string
	SubElementType    string
	ReferenceProperty string
	BodyProperty      string
}

// MappingReplacer inlines template properties into list entries of an element
type MappingReplacer struct {
	rule      MappingRule
	templates TemplateLookup
}

// NewMappingReplacer creates a replacer for an arbitrary rule
func NewMappingReplacer(rule MappingRule, templates TemplateLookup) *MappingReplacer {
	return &MappingReplacer{rule: rule, templates: templates}
}

// NewServiceCallResponseMappingReplacer handles mapper steps in the "after"
// list of a service call.
func NewServiceCallResponseMappingReplacer(templates TemplateLookup) *MappingReplacer {
	return NewMappingReplacer(MappingRule{
		ElementType:       models.ElementTypeServiceCall,
		ListProperty:      models.PropertyAfter,
		SubElementType:    models.ElementTypeMapper2,
		ReferenceProperty: PropertyMappingTemplateID,
		BodyProperty:      PropertyMappingDescription,
	}, templates)
}

func (m *MappingReplacer) ElementType() string { return m.rule.ElementType }

func (m *MappingReplacer) ApplicableTo(element *models.ChainElement) bool {
	return element.Type == m.rule.ElementType && len(m.referencingEntries(element)) > 0
}

// Replace looks every referenced template up before touching the element, so
// a missing template leaves the element unchanged.
func (m *MappingReplacer) Replace(ctx context.Context, element *models.ChainElement) error {
	entries := m.referencingEntries(element)
	bodies := make([]map[string]any, len(entries))

	for i, entry := range entries {
		templateID := entry[m.rule.ReferenceProperty].(string)
		template, err := m.templates.GetByID(ctx, templateID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.TemplateNotFoundError{
					TemplateID: templateID,
					ElementID:  element.ID,
					ChainID:    element.ChainID,
				}
			}
			return fmt.Errorf("load template %s: %w", templateID, err)
		}
		bodies[i] = template.Properties
	}

	for i, entry := range entries {
		delete(entry, m.rule.ReferenceProperty)
		entry[m.rule.BodyProperty] = bodies[i]
	}
	return nil
}

// referencingEntries returns the list entries of the sub-element type with a
// non-blank reference. The maps are shared with the element.
func (m *MappingReplacer) referencingEntries(element *models.ChainElement) []map[string]any {
	var out []map[string]any
	for _, entry := range listOfMaps(element.Properties[m.rule.ListProperty]) {
		ref, _ := entry[m.rule.ReferenceProperty].(string)
		if strings.TrimSpace(ref) == "" {
			continue
		}
		if kind, _ := entry[models.PropertyType].(string); kind != m.rule.SubElementType {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// listOfMaps accepts both decoded JSON/YAML lists and Go-built slices
func listOfMaps(v any) []map[string]any {
	switch list := v.(type) {
	case []map[string]any:
		return list
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

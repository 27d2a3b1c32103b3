package templates

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaincatalog/internal/domain"
	models "chaincatalog/internal/domain/models/catalog"
)

type mapLookup map[string]*models.Template

func (m mapLookup) GetByID(ctx context.Context, id string) (*models.Template, error) {
	t, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	return t, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serviceCall(after ...any) models.ChainElement {
	return models.ChainElement{
		ID:      "el-1",
		ChainID: "chain-1",
		Type:    models.ElementTypeServiceCall,
		Properties: map[string]any{
			models.PropertyAfter: after,
		},
	}
}

func TestResolve_InlinesMapperTemplate(t *testing.T) {
	lookup := mapLookup{"T1": {ID: "T1", Properties: map[string]any{"source": "body"}}}
	r := NewDefaultResolver(lookup, discardLogger())

	el := serviceCall(
		map[string]any{"type": models.ElementTypeMapper2, PropertyMappingTemplateID: "T1"},
		map[string]any{"type": "script", PropertyMappingTemplateID: "T1"},
		map[string]any{"type": models.ElementTypeMapper2, PropertyMappingTemplateID: "  "},
	)

	require.NoError(t, r.Resolve(context.Background(), &el))

	after := el.Properties[models.PropertyAfter].([]any)
	first := after[0].(map[string]any)
	assert.NotContains(t, first, PropertyMappingTemplateID)
	assert.Equal(t, map[string]any{"source": "body"}, first[PropertyMappingDescription])

	// other types and blank references are left alone
	assert.Equal(t, "T1", after[1].(map[string]any)[PropertyMappingTemplateID])
	assert.NotContains(t, after[2].(map[string]any), PropertyMappingDescription)
}

func TestResolve_SecondPassIsNoop(t *testing.T) {
	lookup := mapLookup{"T1": {ID: "T1", Properties: map[string]any{"v": 1}}}
	r := NewDefaultResolver(lookup, discardLogger())
	el := serviceCall(map[string]any{"type": models.ElementTypeMapper2, PropertyMappingTemplateID: "T1"})

	require.NoError(t, r.Resolve(context.Background(), &el))
	delete(lookup, "T1")
	require.NoError(t, r.Resolve(context.Background(), &el))
}

func TestResolve_MissingTemplate(t *testing.T) {
	r := NewDefaultResolver(mapLookup{}, discardLogger())
	el := serviceCall(map[string]any{"type": models.ElementTypeMapper2, PropertyMappingTemplateID: "T9"})

	err := r.Resolve(context.Background(), &el)

	var notFound *domain.TemplateNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "T9", notFound.TemplateID)
	assert.Equal(t, "el-1", notFound.ElementID)
	assert.Equal(t, "chain-1", notFound.ChainID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// element untouched
	entry := el.Properties[models.PropertyAfter].([]any)[0].(map[string]any)
	assert.Equal(t, "T9", entry[PropertyMappingTemplateID])
}

func TestResolve_OtherElementTypesIgnored(t *testing.T) {
	r := NewDefaultResolver(mapLookup{}, discardLogger())
	el := serviceCall(map[string]any{"type": models.ElementTypeMapper2, PropertyMappingTemplateID: "T9"})
	el.Type = "http-trigger"

	assert.NoError(t, r.Resolve(context.Background(), &el))
}

func TestResolveAll_CustomRule(t *testing.T) {
	lookup := mapLookup{"T1": {ID: "T1", Properties: map[string]any{"k": "v"}}}
	r := NewResolver(discardLogger())
	r.Register(NewMappingReplacer(MappingRule{
		ElementType:       "async-call",
		ListProperty:      "before",
		SubElementType:    models.ElementTypeMapper2,
		ReferenceProperty: PropertyMappingTemplateID,
		BodyProperty:      PropertyMappingDescription,
	}, lookup))

	elements := []models.ChainElement{{
		ID:   "e",
		Type: "async-call",
		Properties: map[string]any{
			"before": []map[string]any{{"type": models.ElementTypeMapper2, PropertyMappingTemplateID: "T1"}},
		},
	}}

	require.NoError(t, r.ResolveAll(context.Background(), elements))
	entry := elements[0].Properties["before"].([]map[string]any)[0]
	assert.Equal(t, map[string]any{"k": "v"}, entry[PropertyMappingDescription])
}

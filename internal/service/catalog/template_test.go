package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaincatalog/internal/domain"
	models "chaincatalog/internal/domain/models/catalog"
	"chaincatalog/internal/repository/memory"
)

func TestTemplateService_CRUD(t *testing.T) {
	ctx := context.Background()
	actions := &recordingActionLogger{}
	svc := NewTemplateService(memory.NewStore(), actions, discardLogger())

	created, err := svc.CreateTemplate(ctx, &models.Template{ID: " T1 ", Name: "first"})
	require.NoError(t, err)
	assert.Equal(t, "T1", created.ID)
	assert.NotNil(t, created.Properties)

	_, err = svc.CreateTemplate(ctx, &models.Template{ID: "T1", Name: "dup"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.UpdateTemplate(ctx, &models.Template{ID: "T1", Name: "renamed", Properties: map[string]any{"a": 1}})
	require.NoError(t, err)

	got, err := svc.GetTemplate(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	list, err := svc.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteTemplate(ctx, "T1"))
	assert.ErrorIs(t, svc.DeleteTemplate(ctx, "T1"), domain.ErrNotFound)

	require.Len(t, actions.actions, 3)
	assert.Equal(t, models.LogOperationDelete, actions.actions[2].Operation)
}

func TestTemplateService_Validation(t *testing.T) {
	svc := NewTemplateService(memory.NewStore(), &recordingActionLogger{}, discardLogger())

	tests := []struct {
		name     string
		template models.Template
	}{
		{"missing id", models.Template{Name: "n"}},
		{"missing name", models.Template{ID: "T1"}},
		{"name too long", models.Template{ID: "T1", Name: strings.Repeat("x", 256)}},
		{"id with slash", models.Template{ID: "team/a", Name: "n"}},
		{"id escaping its directory", models.Template{ID: "../escape", Name: "n"}},
		{"id dot-dot", models.Template{ID: "..", Name: "n"}},
		{"id with space", models.Template{ID: "a b", Name: "n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := tt.template
			_, err := svc.CreateTemplate(context.Background(), &tmpl)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	tmpl := models.Template{ID: "order-to-invoice_v1.2", Name: "dotted"}
	_, err := svc.CreateTemplate(context.Background(), &tmpl)
	assert.NoError(t, err)
}

package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaincatalog/internal/domain"
	models "chaincatalog/internal/domain/models/catalog"
	catalogSvc "chaincatalog/internal/domain/services/catalog"
	"chaincatalog/internal/repository/memory"
	"chaincatalog/internal/service/catalog/templates"
)

func newChainService(store *memory.Store, events *eventLog, actions *recordingActionLogger) catalogSvc.ChainService {
	resolver := templates.NewDefaultResolver(store.Templates(), discardLogger())
	return NewChainService(store, store, &recordingCleaner{log: events}, resolver, actions, discardLogger())
}

func TestChainLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	events := &eventLog{}
	actions := &recordingActionLogger{}
	svc := newChainService(store, events, actions)

	require.NoError(t, store.Folders().Create(ctx, &models.Folder{ID: "f1", Name: "F1"}))
	require.NoError(t, store.Folders().Create(ctx, &models.Folder{ID: "f2", Name: "F2"}))

	chain, err := svc.CreateChain(ctx, &catalogSvc.CreateChainRequest{Name: "orders", ParentFolderID: strPtr("f1")})
	require.NoError(t, err)

	moved, err := svc.MoveChain(ctx, chain.ID, strPtr("f2"))
	require.NoError(t, err)
	assert.Equal(t, "f2", *moved.ParentID)

	_, err = svc.MoveChain(ctx, chain.ID, strPtr("missing"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.DeleteChain(ctx, chain.ID))
	assert.Equal(t, []string{"cleanup:" + chain.ID}, events.events)

	_, err = svc.GetChain(ctx, chain.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ops := make([]models.LogOperation, 0, len(actions.actions))
	for _, a := range actions.actions {
		ops = append(ops, a.Operation)
	}
	assert.Equal(t, []models.LogOperation{models.LogOperationCreate, models.LogOperationMove, models.LogOperationDelete}, ops)
	assert.Equal(t, "F2", actions.actions[1].ParentName)
}

func TestCreateChain_Validation(t *testing.T) {
	svc := newChainService(memory.NewStore(), &eventLog{}, &recordingActionLogger{})

	_, err := svc.CreateChain(context.Background(), &catalogSvc.CreateChainRequest{Name: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMaterializeElements(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newChainService(store, &eventLog{}, &recordingActionLogger{})

	require.NoError(t, store.Templates().Create(ctx, &models.Template{
		ID: "T1", Name: "mapping", Properties: map[string]any{"source": "json"},
	}))
	chain, err := svc.CreateChain(ctx, &catalogSvc.CreateChainRequest{Name: "c"})
	require.NoError(t, err)

	_, err = svc.AddElement(ctx, chain.ID, &catalogSvc.CreateElementRequest{
		Type: models.ElementTypeServiceCall,
		Name: "call",
		Properties: map[string]any{
			models.PropertyAfter: []any{
				map[string]any{"type": models.ElementTypeMapper2, "mappingTemplateId": "T1"},
			},
		},
	})
	require.NoError(t, err)

	elements, err := svc.MaterializeElements(ctx, chain.ID)
	require.NoError(t, err)
	require.Len(t, elements, 1)
	step := elements[0].Properties[models.PropertyAfter].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{"source": "json"}, step["mappingDescription"])
	assert.NotContains(t, step, "mappingTemplateId")

	// stored element keeps the reference
	stored, err := store.Elements().ListByChain(ctx, chain.ID)
	require.NoError(t, err)
	storedStep := stored[0].Properties[models.PropertyAfter].([]any)[0].(map[string]any)
	assert.Equal(t, "T1", storedStep["mappingTemplateId"])
}

func TestMaterializeElements_MissingTemplate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newChainService(store, &eventLog{}, &recordingActionLogger{})

	chain, err := svc.CreateChain(ctx, &catalogSvc.CreateChainRequest{Name: "c"})
	require.NoError(t, err)
	el, err := svc.AddElement(ctx, chain.ID, &catalogSvc.CreateElementRequest{
		Type: models.ElementTypeServiceCall,
		Properties: map[string]any{
			models.PropertyAfter: []any{
				map[string]any{"type": models.ElementTypeMapper2, "mappingTemplateId": "nope"},
			},
		},
	})
	require.NoError(t, err)

	_, err = svc.MaterializeElements(ctx, chain.ID)
	var notFound *domain.TemplateNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, el.ID, notFound.ElementID)
	assert.Equal(t, chain.ID, notFound.ChainID)
}

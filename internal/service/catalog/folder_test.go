package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaincatalog/internal/domain"
	models "chaincatalog/internal/domain/models/catalog"
	catalogSvc "chaincatalog/internal/domain/services/catalog"
	"chaincatalog/internal/repository/memory"
)

type folderFixture struct {
	store   *memory.Store
	service catalogSvc.FolderService
	actions *recordingActionLogger
	events  *eventLog
}

func newFolderFixture() *folderFixture {
	store := memory.NewStore()
	actions := &recordingActionLogger{}
	events := &eventLog{}
	svc := NewFolderService(store, &recordingTxManager{inner: store, log: events}, &recordingCleaner{log: events}, actions, discardLogger())
	return &folderFixture{store: store, service: svc, actions: actions, events: events}
}

func (f *folderFixture) folder(t *testing.T, id, name string, parent *string) {
	t.Helper()
	require.NoError(t, f.store.Folders().Create(context.Background(), &models.Folder{ID: id, Name: name, ParentID: parent}))
}

func (f *folderFixture) chain(t *testing.T, id, name string, parent *string) {
	t.Helper()
	require.NoError(t, f.store.Chains().Create(context.Background(), &models.Chain{ID: id, Name: name, ParentID: parent}))
}

func TestCreateFolder(t *testing.T) {
	ctx := context.Background()
	f := newFolderFixture()

	root, err := f.service.CreateFolder(ctx, &catalogSvc.CreateFolderRequest{Name: "  root  "})
	require.NoError(t, err)
	assert.Equal(t, "root", root.Name)
	assert.Nil(t, root.ParentID)

	child, err := f.service.CreateFolder(ctx, &catalogSvc.CreateFolderRequest{Name: "child", ParentFolderID: &root.ID})
	require.NoError(t, err)
	assert.Equal(t, root.ID, *child.ParentID)

	_, err = f.service.CreateFolder(ctx, &catalogSvc.CreateFolderRequest{Name: "child", ParentFolderID: &root.ID})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, child.ID, conflict.ResourceID)

	_, err = f.service.CreateFolder(ctx, &catalogSvc.CreateFolderRequest{Name: " "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.service.CreateFolder(ctx, &catalogSvc.CreateFolderRequest{Name: "x", ParentFolderID: strPtr("missing")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	creates := f.actions.byOperation(models.LogOperationCreate)
	require.Len(t, creates, 2)
	assert.Equal(t, root.Name, creates[1].ParentName)
}

func TestCreateFolder_ConcurrentSameName(t *testing.T) {
	ctx := context.Background()
	f := newFolderFixture()

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.CreateFolder(ctx, &catalogSvc.CreateFolderRequest{Name: "shared"})
			mu.Lock()
			defer mu.Unlock()
			var conflict *domain.ConflictError
			switch {
			case err == nil:
				created++
			case errors.As(err, &conflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, conflicts)

	roots, err := f.service.ListRoot(ctx)
	require.NoError(t, err)
	assert.Len(t, roots, 1)
}

func TestUpdateFolder(t *testing.T) {
	ctx := context.Background()
	f := newFolderFixture()
	f.folder(t, "a", "alpha", nil)
	f.folder(t, "b", "beta", nil)

	name := "gamma"
	desc := "renamed"
	updated, err := f.service.UpdateFolder(ctx, "a", &catalogSvc.UpdateFolderRequest{Name: &name, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "gamma", updated.Name)
	assert.Equal(t, "renamed", updated.Description)

	taken := "beta"
	_, err = f.service.UpdateFolder(ctx, "a", &catalogSvc.UpdateFolderRequest{Name: &taken})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// tree:
//
//	a
//	├── b
//	│   └── c
//	└── d
func buildTree(t *testing.T, f *folderFixture) {
	f.folder(t, "a", "A", nil)
	f.folder(t, "b", "B", strPtr("a"))
	f.folder(t, "c", "C", strPtr("b"))
	f.folder(t, "d", "D", strPtr("a"))
}

func TestMoveFolder_CycleIffTargetIsSelfOrDescendant(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	descendants := map[string][]string{
		"a": {"b", "c", "d"},
		"b": {"c"},
	}

	for _, moved := range ids {
		for _, target := range ids {
			t.Run(fmt.Sprintf("%s_into_%s", moved, target), func(t *testing.T) {
				ctx := context.Background()
				f := newFolderFixture()
				buildTree(t, f)

				wantCycle := moved == target
				for _, d := range descendants[moved] {
					if d == target {
						wantCycle = true
					}
				}

				got, err := f.service.MoveFolder(ctx, moved, strPtr(target))
				if wantCycle {
					var cycle *domain.MoveCycleError
					require.ErrorAs(t, err, &cycle)
					assert.NotEmpty(t, cycle.FolderName)
					assert.NotEmpty(t, cycle.TargetFolderName)
					assert.Empty(t, f.actions.byOperation(models.LogOperationMove))
					return
				}
				require.NoError(t, err)
				assert.Equal(t, target, *got.ParentID)

				// still a forest: every folder reaches a root
				for _, id := range ids {
					path, err := f.service.GetAncestors(ctx, id)
					require.NoError(t, err)
					assert.Nil(t, mustFolder(t, f, path[0].ID).ParentID)
				}
			})
		}
	}
}

func mustFolder(t *testing.T, f *folderFixture, id string) *models.Folder {
	t.Helper()
	folder, err := f.store.Folders().GetByID(context.Background(), id)
	require.NoError(t, err)
	return folder
}

func TestMoveFolder_CycleLeavesTreeUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFolderFixture()
	buildTree(t, f)

	_, err := f.service.MoveFolder(ctx, "a", strPtr("c"))
	require.ErrorIs(t, err, domain.ErrMoveCycle)
	assert.Nil(t, mustFolder(t, f, "a").ParentID)
	assert.Contains(t, err.Error(), `"A"`)
	assert.Contains(t, err.Error(), `"C"`)
}

func TestMoveFolder_ToRoot(t *testing.T) {
	ctx := context.Background()
	f := newFolderFixture()
	buildTree(t, f)

	moved, err := f.service.MoveFolder(ctx, "c", nil)
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)

	roots, err := f.service.ListRoot(ctx)
	require.NoError(t, err)
	assert.Len(t, roots, 2)
}

func TestDeleteFolder_CleansUpBeforeDeleteAndLogsChains(t *testing.T) {
	ctx := context.Background()
	f := newFolderFixture()
	buildTree(t, f)
	f.chain(t, "ch-a", "chain a", strPtr("a"))
	f.chain(t, "ch-c", "chain c", strPtr("c"))
	f.chain(t, "ch-d", "chain d", strPtr("d"))
	f.chain(t, "ch-out", "outside", nil)
	require.NoError(t, f.store.Deployments().Create(ctx, &models.Deployment{ChainID: "ch-c"}))

	require.NoError(t, f.service.DeleteFolder(ctx, "a"))

	// folder first, then children depth first
	assert.Equal(t, []string{
		"cleanup:ch-a",
		"cleanup:ch-c",
		"cleanup:ch-d",
		"delete-folder:a",
	}, f.events.events)

	deletes := f.actions.byOperation(models.LogOperationDelete)
	require.Len(t, deletes, 3)
	for _, a := range deletes {
		assert.Equal(t, models.EntityTypeChain, a.EntityType)
		assert.Equal(t, models.EntityTypeFolder, a.ParentType)
	}
	assert.Equal(t, "ch-c", deletes[1].EntityID)
	assert.Equal(t, "c", deletes[1].ParentID)
	assert.Equal(t, "C", deletes[1].ParentName)

	for _, id := range []string{"a", "b", "c", "d"} {
		_, err := f.store.Folders().GetByID(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
	_, err := f.store.Chains().GetByID(ctx, "ch-out")
	assert.NoError(t, err)

	deps, err := f.store.Deployments().ListByChain(ctx, "ch-c")
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestDeleteFolder_NotFound(t *testing.T) {
	f := newFolderFixture()
	err := f.service.DeleteFolder(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.events.events)
}

func TestGetAncestors(t *testing.T) {
	f := newFolderFixture()
	buildTree(t, f)

	path, err := f.service.GetAncestors(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, []models.PathEntry{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}}, path)
}

func TestFindNestedChains(t *testing.T) {
	ctx := context.Background()
	f := newFolderFixture()
	buildTree(t, f)
	f.chain(t, "ch-a", "keep a", strPtr("a"))
	f.chain(t, "ch-c", "keep c", strPtr("c"))
	f.chain(t, "ch-d", "drop d", strPtr("d"))
	f.chain(t, "ch-root", "keep root", nil)

	all, err := f.service.FindNestedChains(ctx, "a", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := f.service.FindNestedChains(ctx, "a", func(c *models.Chain) bool {
		return c.Name != "drop d"
	})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	underB, err := f.service.FindNestedChains(ctx, "b", nil)
	require.NoError(t, err)
	require.Len(t, underB, 1)
	assert.Equal(t, "ch-c", underB[0].ID)

	folders, err := f.service.FindNestedFolders(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, folders, 3)
}

func TestReattach_PersistsDetachedSubtree(t *testing.T) {
	ctx := context.Background()
	f := newFolderFixture()
	f.folder(t, "root", "Root", nil)

	// client-side graph: root(persisted) <- parent(new) <- node(new) with two new children
	grandchild := &models.Folder{Name: "grandchild"}
	node := &models.Folder{
		Name: "node",
		Folders: []*models.Folder{
			{Name: "child-1", Folders: []*models.Folder{grandchild}},
			{Name: "child-2"},
		},
		Chains: []*models.Chain{{Name: "new chain"}},
	}
	parent := &models.Folder{Name: "parent", Parent: &models.Folder{ID: "root", Name: "Root"}}
	parent.Folders = []*models.Folder{node}
	node.Parent = parent

	saved, err := f.service.Reattach(ctx, node)
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	path, err := f.service.GetAncestors(ctx, grandchild.ID)
	require.NoError(t, err)
	names := make([]string, 0, len(path))
	for _, p := range path {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Root", "parent", "node", "child-1", "grandchild"}, names)

	chains, err := f.service.FindNestedChains(ctx, "root", nil)
	require.NoError(t, err)
	require.Len(t, chains, 1)
	assert.Equal(t, saved.ID, *chains[0].ParentID)
}

func TestReattach_RejectsCycleBeforeCommit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tx := &uncheckedTxManager{inner: store}
	svc := NewFolderService(store, tx, nil, &recordingActionLogger{}, discardLogger())

	require.NoError(t, store.Folders().Create(ctx, &models.Folder{ID: "A", Name: "alpha"}))
	require.NoError(t, store.Folders().Create(ctx, &models.Folder{ID: "C", Name: "child", ParentID: strPtr("A")}))

	tests := []struct {
		name  string
		state *models.Folder
	}{
		{
			name:  "top folder names its own descendant as parent",
			state: &models.Folder{ID: "A", Name: "alpha", ParentID: strPtr("C")},
		},
		{
			name:  "posted parent folder is a descendant",
			state: &models.Folder{ID: "A", Name: "alpha", Parent: &models.Folder{ID: "C", Name: "child", ParentID: strPtr("A")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Reattach(ctx, tt.state)
			var cycle *domain.MoveCycleError
			require.ErrorAs(t, tx.bodyErr, &cycle)
			assert.ErrorIs(t, err, domain.ErrMoveCycle)

			a, err := store.Folders().GetByID(ctx, "A")
			require.NoError(t, err)
			assert.Nil(t, a.ParentID)
		})
	}
}

func TestReattach_InvalidNameRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFolderFixture()

	node := &models.Folder{Name: "ok", Folders: []*models.Folder{{Name: ""}}}
	_, err := f.service.Reattach(ctx, node)
	require.ErrorIs(t, err, domain.ErrValidation)

	roots, err := f.service.ListRoot(ctx)
	require.NoError(t, err)
	assert.Empty(t, roots)
}

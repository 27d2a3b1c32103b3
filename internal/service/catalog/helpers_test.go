package catalog

import (
	"context"
	"io"
	"log/slog"
	"sync"

	models "chaincatalog/internal/domain/models/catalog"
	catalogRepo "chaincatalog/internal/domain/repositories/catalog"
	"chaincatalog/internal/repository/memory"
)

func strPtr(s string) *string { return &s }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingActionLogger struct {
	mu      sync.Mutex
	actions []models.ActionLog
}

func (r *recordingActionLogger) LogAction(ctx context.Context, action models.ActionLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func (r *recordingActionLogger) List(ctx context.Context, limit int) ([]models.ActionLog, error) {
	return r.actions, nil
}

func (r *recordingActionLogger) byOperation(op models.LogOperation) []models.ActionLog {
	var out []models.ActionLog
	for _, a := range r.actions {
		if a.Operation == op {
			out = append(out, a)
		}
	}
	return out
}

// eventLog records the order of side effects across the cleaner and the store
type eventLog struct {
	events []string
}

func (e *eventLog) add(event string) { e.events = append(e.events, event) }

type recordingCleaner struct {
	log *eventLog
}

func (c *recordingCleaner) DeleteAllByChainID(ctx context.Context, chainID string) error {
	c.log.add("cleanup:" + chainID)
	return nil
}

// recordingTxManager wraps the memory store so folder deletions show up in the event log
type recordingTxManager struct {
	inner *memory.Store
	log   *eventLog
}

func (m *recordingTxManager) ExecTx(ctx context.Context, fn catalogRepo.TxFn) error {
	return m.inner.ExecTx(ctx, func(ctx context.Context, store catalogRepo.Store) error {
		return fn(ctx, &recordingStore{Store: store, log: m.log})
	})
}

type recordingStore struct {
	catalogRepo.Store
	log *eventLog
}

func (s *recordingStore) Folders() catalogRepo.FolderRepository {
	return &recordingFolders{FolderRepository: s.Store.Folders(), log: s.log}
}

type recordingFolders struct {
	catalogRepo.FolderRepository
	log *eventLog
}

func (f *recordingFolders) Delete(ctx context.Context, id string) error {
	f.log.add("delete-folder:" + id)
	return f.FolderRepository.Delete(ctx, id)
}

// uncheckedTxManager reports what the transaction body returned, before the
// memory store's commit-time integrity check gets a say. The postgres backend
// has no such check, so this is what it would commit.
type uncheckedTxManager struct {
	inner   *memory.Store
	bodyErr error
}

func (m *uncheckedTxManager) ExecTx(ctx context.Context, fn catalogRepo.TxFn) error {
	err := m.inner.ExecTx(ctx, func(ctx context.Context, store catalogRepo.Store) error {
		m.bodyErr = fn(ctx, store)
		return m.bodyErr
	})
	if m.bodyErr != nil {
		return m.bodyErr
	}
	return err
}

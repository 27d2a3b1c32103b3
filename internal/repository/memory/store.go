// Package memory is an in-process implementation of the catalog store. It
// backs the test suites and the server's STORAGE=memory mode.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"chaincatalog/internal/domain"
	models "chaincatalog/internal/domain/models/catalog"
	catalogRepo "chaincatalog/internal/domain/repositories/catalog"
)

type state struct {
	folders     map[string]models.Folder
	chains      map[string]models.Chain
	elements    map[string]models.ChainElement
	templates   map[string]models.Template
	deployments map[string]models.Deployment
	seq         int64 // insertion order for elements
	elementSeq  map[string]int64
}

func newState() *state {
	return &state{
		folders:     make(map[string]models.Folder),
		chains:      make(map[string]models.Chain),
		elements:    make(map[string]models.ChainElement),
		templates:   make(map[string]models.Template),
		deployments: make(map[string]models.Deployment),
		elementSeq:  make(map[string]int64),
	}
}

func (s *state) clone() *state {
	c := newState()
	c.seq = s.seq
	for k, v := range s.folders {
		c.folders[k] = v
	}
	for k, v := range s.chains {
		c.chains[k] = v
	}
	for k, v := range s.elements {
		v.Properties = copyProperties(v.Properties)
		c.elements[k] = v
	}
	for k, v := range s.elementSeq {
		c.elementSeq[k] = v
	}
	for k, v := range s.templates {
		v.Properties = copyProperties(v.Properties)
		c.templates[k] = v
	}
	for k, v := range s.deployments {
		c.deployments[k] = v
	}
	return c
}

// checkIntegrity plays the role of deferred foreign keys: it runs when a
// transaction commits.
func (s *state) checkIntegrity() error {
	for id, f := range s.folders {
		if f.ParentID == nil {
			continue
		}
		if _, ok := s.folders[*f.ParentID]; !ok {
			return fmt.Errorf("folder %s references missing parent %s: %w", id, *f.ParentID, domain.ErrValidation)
		}
		// walk up with a visited set; a revisit means a cycle
		visited := map[string]bool{id: true}
		for cur := f.ParentID; cur != nil; {
			if visited[*cur] {
				return fmt.Errorf("folder %s is part of a cycle: %w", id, domain.ErrMoveCycle)
			}
			visited[*cur] = true
			cur = s.folders[*cur].ParentID
		}
	}
	for id, c := range s.chains {
		if c.ParentID == nil {
			continue
		}
		if _, ok := s.folders[*c.ParentID]; !ok {
			return fmt.Errorf("chain %s references missing folder %s: %w", id, *c.ParentID, domain.ErrValidation)
		}
	}
	for id, e := range s.elements {
		if _, ok := s.chains[e.ChainID]; !ok {
			return fmt.Errorf("element %s references missing chain %s: %w", id, e.ChainID, domain.ErrValidation)
		}
	}
	return nil
}

// Store is the root, non-transactional view.
type Store struct {
	mu   sync.RWMutex
	data *state
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{data: newState()}
}

var (
	_ catalogRepo.Store              = (*Store)(nil)
	_ catalogRepo.TransactionManager = (*Store)(nil)
)

func (s *Store) root() view { return view{store: s} }

func (s *Store) Folders() catalogRepo.FolderRepository         { return &folderRepo{s.root()} }
func (s *Store) Chains() catalogRepo.ChainRepository           { return &chainRepo{s.root()} }
func (s *Store) Elements() catalogRepo.ElementRepository       { return &elementRepo{s.root()} }
func (s *Store) Templates() catalogRepo.TemplateRepository     { return &templateRepo{s.root()} }
func (s *Store) Deployments() catalogRepo.DeploymentRepository { return &deploymentRepo{s.root()} }

// ExecTx runs fn against a private copy of the data and publishes it on
// success. Transactions are serialized; fn must only use the store it is
// given, calling back into the root store would deadlock.
func (s *Store) ExecTx(ctx context.Context, fn catalogRepo.TxFn) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.data.clone()
	if err := fn(ctx, &txStore{view{tx: staged}}); err != nil {
		return err
	}
	if err := staged.checkIntegrity(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.data = staged
	return nil
}

type txStore struct{ v view }

func (t *txStore) Folders() catalogRepo.FolderRepository         { return &folderRepo{t.v} }
func (t *txStore) Chains() catalogRepo.ChainRepository           { return &chainRepo{t.v} }
func (t *txStore) Elements() catalogRepo.ElementRepository       { return &elementRepo{t.v} }
func (t *txStore) Templates() catalogRepo.TemplateRepository     { return &templateRepo{t.v} }
func (t *txStore) Deployments() catalogRepo.DeploymentRepository { return &deploymentRepo{t.v} }

// view is either the root store (locking per call) or a staged transaction.
type view struct {
	store *Store
	tx    *state
}

func (v view) read(fn func(d *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.data)
}

// write applies fn directly in a transaction; on the root store it behaves
// like an auto-committed statement.
func (v view) write(fn func(d *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	staged := v.store.data.clone()
	if err := fn(staged); err != nil {
		return err
	}
	if err := staged.checkIntegrity(); err != nil {
		return err
	}
	v.store.data = staged
	return nil
}

func copyProperties(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out, _ := copyValue(props).(map[string]any)
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = copyValue(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = copyValue(val)
		}
		return s
	case []map[string]any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = copyValue(val)
		}
		return s
	default:
		return v
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

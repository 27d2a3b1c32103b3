// Package catalog holds the PostgreSQL implementations of the catalog
// repositories. Every repository is constructed over a DBTX, so the same code
// serves the pool-backed root store and transaction-bound stores.
package catalog

import (
	"chaincatalog/internal/domain/repositories"
	catalogRepo "chaincatalog/internal/domain/repositories/catalog"
	"chaincatalog/internal/repository/postgres"
)

// Store groups the repositories over one executor
type Store struct {
	db     repositories.DBTX
	tables *postgres.TableNames
}

// NewStore creates the root store over the connection pool
func NewStore(config *postgres.RepositoryConfig) *Store {
	return newStore(config.Pool, config.Tables)
}

func newStore(db repositories.DBTX, tables *postgres.TableNames) *Store {
	return &Store{db: db, tables: tables}
}

var _ catalogRepo.Store = (*Store)(nil)

func (s *Store) Folders() catalogRepo.FolderRepository {
	return &FolderRepository{db: s.db, tables: s.tables}
}

func (s *Store) Chains() catalogRepo.ChainRepository {
	return &ChainRepository{db: s.db, tables: s.tables}
}

func (s *Store) Elements() catalogRepo.ElementRepository {
	return &ElementRepository{db: s.db, tables: s.tables}
}

func (s *Store) Templates() catalogRepo.TemplateRepository {
	return &TemplateRepository{db: s.db, tables: s.tables}
}

func (s *Store) Deployments() catalogRepo.DeploymentRepository {
	return &DeploymentRepository{db: s.db, tables: s.tables}
}

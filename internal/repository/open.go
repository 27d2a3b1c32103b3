package repository

import (
	"context"
	"fmt"
	"log/slog"

	"chaincatalog/internal/config"
	catalogRepo "chaincatalog/internal/domain/repositories/catalog"
	"chaincatalog/internal/repository/memory"
	"chaincatalog/internal/repository/postgres"
	postgresCatalog "chaincatalog/internal/repository/postgres/catalog"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Backend is an opened catalog store with its transaction manager
type Backend struct {
	Store     catalogRepo.Store
	TxManager catalogRepo.TransactionManager
	close     func()
}

// Close releases the connection pool, if any
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open opens the storage selected by cfg.Storage. PostgreSQL schemas are
// created on the fly.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.Storage {
	case StorageMemory:
		logger.Warn("using in-memory storage, data is lost on exit")
		store := memory.NewStore()
		return &Backend{Store: store, TxManager: store}, nil

	case StoragePostgres:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.RunSchema(ctx, pool, tables); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("database connected", "tables", tables.All())

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		}
		return &Backend{
			Store:     postgresCatalog.NewStore(repoConfig),
			TxManager: postgresCatalog.NewTransactionManager(repoConfig),
			close:     pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage %q: want %q or %q", cfg.Storage, StoragePostgres, StorageMemory)
	}
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chaincatalog/internal/domain"
	catalogRepo "chaincatalog/internal/domain/repositories/catalog"
	"chaincatalog/internal/repository/postgres"
)

// TransactionManager implements the TransactionManager interface
type TransactionManager struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(config *postgres.RepositoryConfig) *TransactionManager {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionManager{pool: config.Pool, tables: config.Tables, logger: logger}
}

var _ catalogRepo.TransactionManager = (*TransactionManager)(nil)

// ExecTx executes fn within a new transaction. fn receives a store bound to
// that transaction.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn catalogRepo.TxFn) error {
	tx, err := tm.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	// safe even if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			tm.logger.Warn("rollback failed", "error", err)
		}
	}()

	if err := fn(ctx, newStore(tx, tm.tables)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		// deferred parent links are checked here
		if postgres.IsPgForeignKeyError(err) {
			return &domain.ValidationError{
				Message: fmt.Sprintf("commit transaction: dangling reference (%s)", postgres.ConstraintName(err)),
			}
		}
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

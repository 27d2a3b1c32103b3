package catalog

import "context"

// Store groups the catalog repositories over one executor. The root store runs
// each call on its own; the store handed to a TxFn is bound to that
// transaction and must not be used after the function returns.
type Store interface {
	Folders() FolderRepository
	Chains() ChainRepository
	Elements() ElementRepository
	Templates() TemplateRepository
	Deployments() DeploymentRepository
}

// TxFn is a unit of work executed against a transaction-scoped store.
type TxFn func(ctx context.Context, store Store) error

// TransactionManager runs units of work. Each ExecTx call opens a new,
// independent transaction: it commits when fn returns nil and rolls back
// otherwise. Nesting is explicit: code that needs to join a transaction takes
// the Store argument, never an ambient one.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}

package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Folders     string
	Chains      string
	Elements    string
	Templates   string
	Deployments string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Folders:     fmt.Sprintf("%sfolders", prefix),
		Chains:      fmt.Sprintf("%schains", prefix),
		Elements:    fmt.Sprintf("%schain_elements", prefix),
		Templates:   fmt.Sprintf("%stemplates", prefix),
		Deployments: fmt.Sprintf("%sdeployments", prefix),
	}
}

// All returns the tables in dependency order, parents first.
func (t *TableNames) All() []string {
	return []string{t.Folders, t.Chains, t.Elements, t.Templates, t.Deployments}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// Port 6543 is the PgBouncer transaction pooler convention; prepared
// statements are not available there, so the pool switches to
// QueryExecModeCacheDescribe. That mode still uses the extended protocol,
// which is needed to encode map[string]any properties as JSONB. An explicit
// default_query_exec_mode in the connection string wins.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 2

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

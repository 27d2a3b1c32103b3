package postgres

import (
	"context"
	"fmt"

	"chaincatalog/internal/domain/repositories"
)

// Schema renders the DDL for the catalog tables. Parent links are
// DEFERRABLE INITIALLY DEFERRED: a subtree may be written child first inside
// one transaction and is only checked at commit.
func Schema(t *TableNames) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			parent_id   TEXT REFERENCES %[1]s(id) ON DELETE CASCADE DEFERRABLE INITIALLY DEFERRED,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			modified_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, t.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_parent_idx ON %[1]s(parent_id)`, t.Folders),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			parent_id   TEXT REFERENCES %s(id) ON DELETE CASCADE DEFERRABLE INITIALLY DEFERRED,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			modified_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, t.Chains, t.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_parent_idx ON %[1]s(parent_id)`, t.Chains),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id          TEXT PRIMARY KEY,
			chain_id    TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE DEFERRABLE INITIALLY DEFERRED,
			type        TEXT NOT NULL,
			name        TEXT NOT NULL DEFAULT '',
			properties  JSONB NOT NULL DEFAULT '{}'::jsonb,
			seq         BIGSERIAL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			modified_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, t.Elements, t.Chains),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_chain_idx ON %[1]s(chain_id, seq)`, t.Elements),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			properties  JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			modified_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, t.Templates),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id         TEXT PRIMARY KEY,
			chain_id   TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			domain     TEXT NOT NULL DEFAULT 'default',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, t.Deployments, t.Chains),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_chain_idx ON %[1]s(chain_id)`, t.Deployments),
	}
}

// RunSchema creates the catalog tables if they do not exist
func RunSchema(ctx context.Context, db repositories.DBTX, t *TableNames) error {
	for _, stmt := range Schema(t) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("run schema: %w", err)
		}
	}
	return nil
}

// DropSchema drops the catalog tables, children first
func DropSchema(ctx context.Context, db repositories.DBTX, t *TableNames) error {
	all := t.All()
	for i := len(all) - 1; i >= 0; i-- {
		if _, err := db.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", all[i])); err != nil {
			return fmt.Errorf("drop %s: %w", all[i], err)
		}
	}
	return nil
}

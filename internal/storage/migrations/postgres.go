package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"tradelab/internal/storage/postgres"
)

const postgresLedgerDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    filename   TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// RunPostgresMigrations applies the embedded SQL files in lexical order.
// Applied files are recorded in schema_migrations and skipped on rerun,
// so the call is safe at every startup.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	if _, err := pool.Exec(ctx, postgresLedgerDDL); err != nil {
		return fmt.Errorf("create migration ledger: %w", err)
	}

	files, err := sqlFiles(PostgresFS, "postgres")
	if err != nil {
		return fmt.Errorf("read embedded postgres migrations: %w", err)
	}

	for _, file := range files {
		applied, err := postgresApplied(ctx, pool, file)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := applyPostgresFile(ctx, pool, file); err != nil {
			return err
		}
	}
	return nil
}

func postgresApplied(ctx context.Context, pool *postgres.Pool, file string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE filename = $1)`, file).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", file, err)
	}
	return exists, nil
}

// applyPostgresFile runs one migration and records it in the same
// transaction, so a failed apply leaves no ledger entry behind.
func applyPostgresFile(ctx context.Context, pool *postgres.Pool, file string) error {
	data, err := fs.ReadFile(PostgresFS, "postgres/"+file)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", file, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", file, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(data)); err != nil {
		return fmt.Errorf("apply migration %s: %w", file, err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO schema_migrations (filename) VALUES ($1)`, file); err != nil {
		return fmt.Errorf("record migration %s: %w", file, err)
	}
	return tx.Commit(ctx)
}

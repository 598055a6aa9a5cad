package pagesync

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Migrations suffixed ".postgres.sql" only run on Postgres; the GIN indexes
// over tags and meta have no sqlite equivalent.
const postgresOnlySuffix = ".postgres.sql"

//go:embed data/sql/migrations/*.sql
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded migration files for this package.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// RunMigrations applies every embedded migration in lexical order. Applied
// files are tracked in schema_migrations so reruns are no-ops. Each file
// runs inside its own transaction.
func RunMigrations(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return fmt.Errorf("pagesync: migrations require a database")
	}

	if _, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (name VARCHAR PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	); err != nil {
		return fmt.Errorf("pagesync: init migration table: %w", err)
	}

	names, err := migrationNames()
	if err != nil {
		return err
	}

	for _, name := range names {
		if skipMigration(name, db.Dialect().Name()) {
			continue
		}
		applied, err := migrationApplied(ctx, db, name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		content, err := migrationsFS.ReadFile("data/sql/migrations/" + name)
		if err != nil {
			return fmt.Errorf("pagesync: read migration %s: %w", name, err)
		}

		err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, string(content)); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (name) VALUES (?)`, name)
			return err
		})
		if err != nil {
			return fmt.Errorf("pagesync: apply migration %s: %w", name, err)
		}
	}
	return nil
}

func skipMigration(name string, dialectName dialect.Name) bool {
	return strings.HasSuffix(name, postgresOnlySuffix) && dialectName != dialect.PG
}

func migrationNames() ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, "data/sql/migrations")
	if err != nil {
		return nil, fmt.Errorf("pagesync: list migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func migrationApplied(ctx context.Context, db *bun.DB, name string) (bool, error) {
	var count int
	err := db.NewSelect().
		Table("schema_migrations").
		ColumnExpr("count(*)").
		Where("name = ?", name).
		Scan(ctx, &count)
	if err != nil {
		return false, fmt.Errorf("pagesync: check migration %s: %w", name, err)
	}
	return count > 0, nil
}

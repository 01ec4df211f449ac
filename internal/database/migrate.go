package database

import (
	"context"
	"embed"
	"io/fs"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies every embedded migration not yet recorded in
// schema_migrations, in file name order.
func Migrate(ctx context.Context, pool Pool) error {
	log := zap.L().With(zap.String("component", "database.migrate"))

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return eris.Wrap(err, "ensure migration table")
	}

	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return eris.Wrap(err, "read migration dir")
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	applied, err := appliedMigrations(ctx, pool)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		name := entry.Name()
		if applied[name] {
			continue
		}

		data, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return eris.Wrapf(err, "read migration %s", name)
		}
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			return eris.Wrapf(err, "apply migration %s", name)
		}
		if _, err := pool.Exec(ctx, `INSERT INTO schema_migrations (filename) VALUES ($1)`, name); err != nil {
			return eris.Wrapf(err, "record migration %s", name)
		}
		log.Info("migration applied", zap.String("file", name))
	}

	return nil
}

func appliedMigrations(ctx context.Context, pool Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, `SELECT filename FROM schema_migrations`)
	if err != nil {
		return nil, eris.Wrap(err, "query applied migrations")
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "scan migration row")
		}
		applied[name] = true
	}
	return applied, eris.Wrap(rows.Err(), "iterate migrations")
}

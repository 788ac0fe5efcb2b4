package database

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"stock-backend/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrator applies the .sql files of an embedded migrations directory in
// filename order, recording each one in schema_migrations.
type Migrator struct {
	pool   *pgxpool.Pool
	fsys   fs.FS
	logger *logging.Logger
}

func NewMigratorWithFS(pool *pgxpool.Pool, fsys fs.FS, logger *logging.Logger) *Migrator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Migrator{
		pool:   pool,
		fsys:   fsys,
		logger: logger.WithComponent("migrator"),
	}
}

// RunMigrations executes every pending migration. Each file runs in its own
// transaction together with its schema_migrations row, so a failed file leaves
// nothing behind and is retried on the next start.
func (m *Migrator) RunMigrations(ctx context.Context) error {
	m.logger.Info("starting database migrations")

	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	files, err := migrationFiles(m.fsys)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	run := 0
	for _, filename := range pending(files, applied) {
		content, err := fs.ReadFile(m.fsys, filename)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		m.logger.Info("running migration", "file", filename)
		err = pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(content)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx,
				`INSERT INTO schema_migrations (filename) VALUES ($1) ON CONFLICT (filename) DO NOTHING`, filename)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to run migration %s: %w", filename, err)
		}
		run++
	}

	if run > 0 {
		m.logger.Info("migrations applied", "count", run)
	} else {
		m.logger.Info("database is up to date")
	}
	return nil
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	return err
}

func (m *Migrator) getAppliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := m.pool.Query(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	filenames, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}

	applied := make(map[string]bool, len(filenames))
	for _, f := range filenames {
		applied[f] = true
	}
	return applied, nil
}

// migrationFiles lists the top-level .sql files of fsys, sorted by name
func migrationFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// pending drops applied files and destructive reset scripts
func pending(files []string, applied map[string]bool) []string {
	var out []string
	for _, f := range files {
		if strings.Contains(f, "reset") || applied[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

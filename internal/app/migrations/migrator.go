package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/pkg/logger"
)

//go:embed sql/*.sql
var embedded embed.FS

// Embedded returns the schema migrations compiled into the binary
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// File is one migration script, ordered by version
type File struct {
	Version string
	Name    string
}

// Migrator manages database migrations
type Migrator struct {
	db  *pgxpool.Pool
	log zerolog.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(db *pgxpool.Pool) *Migrator {
	return &Migrator{
		db:  db,
		log: logger.Component("migrator"),
	}
}

// ensureMigrationTableExists creates the migration tracking table if it doesn't exist
func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	_, err := m.db.Exec(ctx, createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

// isMigrationApplied checks if a specific migration has already been applied
func (m *Migrator) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1);`
	err := m.db.QueryRow(ctx, query, version).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return exists, nil
}

// recordMigration marks a migration as applied within the migration's transaction
func recordMigration(ctx context.Context, tx pgx.Tx, version string) error {
	_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)`,
		version, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return nil
}

// ListFiles returns the .sql files of fsys in version order.
// The version is the file name prefix before the first underscore, e.g. "001_init.sql" => "001".
func ListFiles(fsys fs.FS) ([]File, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var files []File
	seen := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version := strings.Split(entry.Name(), "_")[0]
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("migrations %s and %s share version %s", prev, entry.Name(), version)
		}
		seen[version] = entry.Name()
		files = append(files, File{Version: version, Name: entry.Name()})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// apply runs one migration file and records it in the same transaction.
// It reports whether the file was applied rather than skipped.
func (m *Migrator) apply(ctx context.Context, fsys fs.FS, file File) (bool, error) {
	applied, err := m.isMigrationApplied(ctx, file.Version)
	if err != nil {
		return false, err
	}
	if applied {
		m.log.Debug().Str("file", file.Name).Msg("Migration already applied, skipping")
		return false, nil
	}

	content, err := fs.ReadFile(fsys, path.Clean(file.Name))
	if err != nil {
		return false, fmt.Errorf("failed to read migration file: %w", err)
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return false, fmt.Errorf("error occurred during SQL migration %s: %w", file.Name, err)
	}

	if err := recordMigration(ctx, tx, file.Version); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	m.log.Info().Str("file", file.Name).Msg("Migration file successfully applied")
	return true, nil
}

// Migrate applies every pending migration of fsys in order and returns the applied versions
func (m *Migrator) Migrate(ctx context.Context, fsys fs.FS) ([]string, error) {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return nil, err
	}

	files, err := ListFiles(fsys)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, file := range files {
		ok, err := m.apply(ctx, fsys, file)
		if err != nil {
			return applied, err
		}
		if ok {
			applied = append(applied, file.Version)
		}
	}
	return applied, nil
}

// MigrateFromDirectory applies the migrations found in a directory on disk
func (m *Migrator) MigrateFromDirectory(ctx context.Context, dirPath string) ([]string, error) {
	if _, err := os.Stat(dirPath); err != nil {
		return nil, fmt.Errorf("migrations directory not found at %s: %w", dirPath, err)
	}
	return m.Migrate(ctx, os.DirFS(dirPath))
}

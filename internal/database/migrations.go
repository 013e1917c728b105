package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
)

// migrationLockID is the advisory lock key held while migrating, so replicas
// starting together apply each migration once
const migrationLockID = 7_340_021

// Migration is one *.up.sql file
type Migration struct {
	Version  string
	Title    string
	UpSQL    string
	Checksum string
}

// ErrChecksumMismatch is returned when an applied migration file was edited
var ErrChecksumMismatch = errors.New("applied migrations have been modified")

// MigrationExecutor applies embedded SQL migrations
type MigrationExecutor struct {
	db *sql.DB
}

// NewMigrationExecutor creates a new migration executor
func NewMigrationExecutor(db *sql.DB) *MigrationExecutor {
	return &MigrationExecutor{db: db}
}

// RunMigrations applies every pending migration in fsys. Applied migrations
// whose file content changed abort the run before anything new is applied.
func (m *MigrationExecutor) RunMigrations(ctx context.Context, fsys fs.FS) error {
	pending, err := ReadMigrations(fsys)
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	conn, err := m.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Error("Failed to release migration connection", "error", err)
		}
	}()

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, migrationLockID); err != nil {
		return fmt.Errorf("failed to take migration lock: %w", err)
	}
	defer func() {
		if _, err := conn.ExecContext(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock($1)`, migrationLockID); err != nil {
			slog.Error("Failed to release migration lock", "error", err)
		}
	}()

	if _, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    VARCHAR(255) PRIMARY KEY,
			title      VARCHAR(500),
			checksum   VARCHAR(64) NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedChecksums(ctx, conn)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}
	if err := verifyChecksums(pending, applied); err != nil {
		return err
	}

	count := 0
	for _, mig := range pending {
		if _, ok := applied[mig.Version]; ok {
			continue
		}
		if err := apply(ctx, conn, mig); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", mig.Version, err)
		}
		slog.Info("Applied migration", "version", mig.Version, "title", mig.Title)
		count++
	}
	slog.Debug("Migrations up to date", "applied_now", count, "total", len(pending))
	return nil
}

// ReadMigrations loads the up migrations in version order. Files are named
// <version>_<title>.up.sql; anything else is ignored.
func ReadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	var migrations []Migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		version, title, ok := strings.Cut(strings.TrimSuffix(name, ".up.sql"), "_")
		if !ok || version == "" {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		migrations = append(migrations, Migration{
			Version:  version,
			Title:    strings.ReplaceAll(title, "_", " "),
			UpSQL:    string(content),
			Checksum: checksum(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func appliedChecksums(ctx context.Context, conn *sql.Conn) (map[string]string, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version, checksum FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]string)
	for rows.Next() {
		var version, sum string
		if err := rows.Scan(&version, &sum); err != nil {
			return nil, err
		}
		applied[version] = sum
	}
	return applied, rows.Err()
}

func verifyChecksums(migrations []Migration, applied map[string]string) error {
	var mismatches []string
	for _, mig := range migrations {
		if sum, ok := applied[mig.Version]; ok && sum != mig.Checksum {
			mismatches = append(mismatches, fmt.Sprintf("%s (%s): applied %s, file %s", mig.Version, mig.Title, sum, mig.Checksum))
		}
	}
	if len(mismatches) > 0 {
		return fmt.Errorf("%w: %s; restore the original files or add a new migration",
			ErrChecksumMismatch, strings.Join(mismatches, ", "))
	}
	return nil
}

func apply(ctx context.Context, conn *sql.Conn, mig Migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("Failed to rollback migration", "version", mig.Version, "error", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, mig.UpSQL); err != nil {
		return fmt.Errorf("migration SQL failed: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, title, checksum) VALUES ($1, $2, $3)`,
		mig.Version, mig.Title, mig.Checksum,
	); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return tx.Commit()
}

func checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Masterminds/squirrel"
)

var (
	// ErrNotFound is returned when a single-row lookup matches nothing
	ErrNotFound = errors.New("record not found")
	// ErrUserExists is returned when an email is already registered
	ErrUserExists = errors.New("user already exists")
)

const (
	tableUsers            = "users"
	tableProfiles         = "business_profiles"
	tableInputs           = "esg_inputs"
	tableSnapshots        = "esg_snapshots"
	tableRecommendations  = "recommendations"
	tableRoadmapItems     = "roadmap_items"
	tableChatSessions     = "chat_sessions"
	tableChatMessages     = "chat_messages"
	tableAuditLogs        = "audit_logs"
	uniqueViolationPQCode = "23505"
)

// builder returns a squirrel statement builder using Postgres placeholders
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

func queryRow(ctx context.Context, q querier, b squirrel.Sqlizer) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return q.QueryRowContext(ctx, query, args...), nil
}

func queryRows(ctx context.Context, q querier, b squirrel.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return q.QueryContext(ctx, query, args...)
}

func exec(ctx context.Context, q querier, b squirrel.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return q.ExecContext(ctx, query, args...)
}

// wrapErr maps driver errors to repository errors
func wrapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		slog.Error("Failed to close rows", "error", err)
	}
}

// withTx runs fn in a transaction, rolling back unless fn succeeds
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("Failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"esg-assess/internal/models"
)

// AuditFilter narrows an audit log listing
type AuditFilter struct {
	UserID *uint
	Action string
	Limit  uint64
	Offset uint64
}

// AuditRepository handles audit log database operations
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create creates a new audit log entry
func (r *AuditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	log.CreatedAt = time.Now()
	row, err := queryRow(ctx, r.db, builder().Insert(tableAuditLogs).
		Columns("user_id", "action", "resource", "details", "ip_address", "user_agent", "created_at").
		Values(log.UserID, log.Action, log.Resource, log.Details, log.IPAddress, log.UserAgent, log.CreatedAt).
		Suffix("RETURNING id"))
	if err != nil {
		return err
	}
	if err := row.Scan(&log.ID); err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// List returns audit entries newest first together with the total match count
func (r *AuditRepository) List(ctx context.Context, f AuditFilter) ([]models.AuditLog, int, error) {
	where := squirrel.And{}
	if f.UserID != nil {
		where = append(where, squirrel.Eq{"a.user_id": *f.UserID})
	}
	if f.Action != "" {
		where = append(where, squirrel.Eq{"a.action": f.Action})
	}

	countRow, err := queryRow(ctx, r.db, builder().Select("COUNT(*)").
		From(tableAuditLogs+" a").
		Where(where))
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := countRow.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	limit := f.Limit
	if limit == 0 || limit > 500 {
		limit = 100
	}
	q := builder().Select(
		"a.id", "a.user_id", "u.email", "a.action", "a.resource",
		"a.details", "a.ip_address", "a.user_agent", "a.created_at",
	).
		From(tableAuditLogs + " a").
		LeftJoin(tableUsers + " u ON u.id = a.user_id").
		Where(where).
		OrderBy("a.created_at DESC", "a.id DESC").
		Limit(limit).
		Offset(f.Offset)

	rows, err := queryRows(ctx, r.db, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer closeRows(rows)

	var logs []models.AuditLog
	for rows.Next() {
		var l models.AuditLog
		var userID sql.NullInt64
		var email sql.NullString
		if err := rows.Scan(&l.ID, &userID, &email, &l.Action, &l.Resource,
			&l.Details, &l.IPAddress, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit log: %w", err)
		}
		if userID.Valid {
			id := uint(userID.Int64)
			l.UserID = &id
		}
		if email.Valid {
			l.UserEmail = &email.String
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}

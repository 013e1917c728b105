package repository

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/Masterminds/squirrel"

	"esg-assess/internal/models"
)

var chatMessageColumns = []string{"id", "session_id", "role", "content", "encrypted", "created_at"}

// ChatRepository stores chat sessions and their messages
type ChatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateSession stores a new session
func (r *ChatRepository) CreateSession(ctx context.Context, session *models.ChatSession) error {
	now := time.Now()
	_, err := exec(ctx, r.db, builder().Insert(tableChatSessions).
		Columns("id", "user_id", "snapshot_id", "created_at", "last_message_at").
		Values(session.ID, session.UserID, session.SnapshotID, now, now))
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	session.CreatedAt = now
	session.LastMessageAt = now
	return nil
}

// GetSession returns a session by ID
func (r *ChatRepository) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	row, err := queryRow(ctx, r.db, builder().
		Select("id", "user_id", "snapshot_id", "created_at", "last_message_at").
		From(tableChatSessions).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	s := &models.ChatSession{}
	if err := row.Scan(&s.ID, &s.UserID, &s.SnapshotID, &s.CreatedAt, &s.LastMessageAt); err != nil {
		return nil, fmt.Errorf("failed to get chat session: %w", wrapErr(err))
	}
	return s, nil
}

// AddMessage appends a message to a session and bumps its activity time
func (r *ChatRepository) AddMessage(ctx context.Context, msg *models.ChatMessage) error {
	msg.CreatedAt = time.Now()
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		row, err := queryRow(ctx, tx, builder().Insert(tableChatMessages).
			Columns("session_id", "role", "content", "encrypted", "created_at").
			Values(msg.SessionID, msg.Role, msg.Content, msg.Encrypted, msg.CreatedAt).
			Suffix("RETURNING id"))
		if err != nil {
			return err
		}
		if err := row.Scan(&msg.ID); err != nil {
			return fmt.Errorf("failed to add chat message: %w", err)
		}

		_, err = exec(ctx, tx, builder().Update(tableChatSessions).
			Set("last_message_at", msg.CreatedAt).
			Where(squirrel.Eq{"id": msg.SessionID}))
		if err != nil {
			return fmt.Errorf("failed to touch chat session: %w", err)
		}
		return nil
	})
}

// RecentMessages returns the last limit messages of a session, oldest first
func (r *ChatRepository) RecentMessages(ctx context.Context, sessionID string, limit uint64) ([]models.ChatMessage, error) {
	msgs, err := r.listMessages(ctx, builder().Select(chatMessageColumns...).
		From(tableChatMessages).
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit))
	if err != nil {
		return nil, err
	}
	slices.Reverse(msgs)
	return msgs, nil
}

// ListMessages returns the full transcript of a session, oldest first
func (r *ChatRepository) ListMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	return r.listMessages(ctx, builder().Select(chatMessageColumns...).
		From(tableChatMessages).
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("created_at ASC", "id ASC"))
}

func (r *ChatRepository) listMessages(ctx context.Context, q squirrel.SelectBuilder) ([]models.ChatMessage, error) {
	rows, err := queryRows(ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer closeRows(rows)

	var msgs []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.Encrypted, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// DeleteSessionsBefore removes sessions idle since before cutoff together with
// their messages and returns how many sessions were removed
func (r *ChatRepository) DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := exec(ctx, r.db, builder().Delete(tableChatSessions).
		Where(squirrel.Lt{"last_message_at": cutoff}))
	if err != nil {
		return 0, fmt.Errorf("failed to delete chat sessions: %w", err)
	}
	return res.RowsAffected()
}

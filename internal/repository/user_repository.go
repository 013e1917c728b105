package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"esg-assess/internal/models"
)

var userColumns = []string{
	"id", "email", "password_hash", "first_name", "last_name",
	"is_active", "is_admin", "last_login_at", "created_at", "updated_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	q := builder().Insert(tableUsers).
		Columns("email", "password_hash", "first_name", "last_name", "is_active", "is_admin", "created_at", "updated_at").
		Values(user.Email, user.PasswordHash, user.FirstName, user.LastName, true, user.IsAdmin, now, now).
		Suffix("RETURNING id")

	row, err := queryRow(ctx, r.db, q)
	if err != nil {
		return err
	}
	if err := row.Scan(&user.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationPQCode {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.IsActive = true
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.User, error) {
	row, err := queryRow(ctx, r.db, builder().Select(userColumns...).From(tableUsers).Where(where))
	if err != nil {
		return nil, err
	}

	user := &models.User{}
	err = row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.IsActive,
		&user.IsAdmin,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", wrapErr(err))
	}
	return user, nil
}

// UpdateLastLogin records a successful login
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID uint) error {
	now := time.Now()
	q := builder().Update(tableUsers).
		Set("last_login_at", now).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": userID})

	if _, err := exec(ctx, r.db, q); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// SetAdmin grants or revokes administrator rights
func (r *UserRepository) SetAdmin(ctx context.Context, userID uint, isAdmin bool) error {
	q := builder().Update(tableUsers).
		Set("is_admin", isAdmin).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID})

	res, err := exec(ctx, r.db, q)
	if err != nil {
		return fmt.Errorf("failed to update admin flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountAll returns the number of registered users
func (r *UserRepository) CountAll(ctx context.Context) (int, error) {
	row, err := queryRow(ctx, r.db, builder().Select("COUNT(*)").From(tableUsers))
	if err != nil {
		return 0, err
	}
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"esg-assess/internal/esg"
	"esg-assess/internal/models"
)

var profileColumns = []string{
	"id", "user_id", "business_name", "industry", "employee_count",
	"office_area_sqm", "location", "created_at", "updated_at",
}

// ProfileRepository stores business profiles, one per user
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Upsert creates the user's profile or replaces its fields
func (r *ProfileRepository) Upsert(ctx context.Context, userID uint, p esg.BusinessProfile) (*models.BusinessProfile, error) {
	now := time.Now()
	q := builder().Insert(tableProfiles).
		Columns("user_id", "business_name", "industry", "employee_count", "office_area_sqm", "location", "created_at", "updated_at").
		Values(userID, p.BusinessName, p.Industry, p.EmployeeCount, nullFloat(p.OfficeAreaSqm), p.Location, now, now).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			business_name = EXCLUDED.business_name,
			industry = EXCLUDED.industry,
			employee_count = EXCLUDED.employee_count,
			office_area_sqm = EXCLUDED.office_area_sqm,
			location = EXCLUDED.location,
			updated_at = EXCLUDED.updated_at
			RETURNING ` + joinColumns(profileColumns))

	row, err := queryRow(ctx, r.db, q)
	if err != nil {
		return nil, err
	}
	profile, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("failed to save business profile: %w", err)
	}
	return profile, nil
}

// GetByUserID returns the profile of a user
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uint) (*models.BusinessProfile, error) {
	return r.getOne(ctx, squirrel.Eq{"user_id": userID})
}

// GetByID returns a profile by its ID
func (r *ProfileRepository) GetByID(ctx context.Context, id uint) (*models.BusinessProfile, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *ProfileRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.BusinessProfile, error) {
	row, err := queryRow(ctx, r.db, builder().Select(profileColumns...).From(tableProfiles).Where(where))
	if err != nil {
		return nil, err
	}
	profile, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get business profile: %w", wrapErr(err))
	}
	return profile, nil
}

func scanProfile(row scanner) (*models.BusinessProfile, error) {
	p := &models.BusinessProfile{}
	var area sql.NullFloat64
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.BusinessName,
		&p.Industry,
		&p.EmployeeCount,
		&area,
		&p.Location,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if area.Valid {
		p.OfficeAreaSqm = esg.Some(area.Float64)
	}
	return p, nil
}

func nullFloat(o esg.Opt[float64]) sql.NullFloat64 {
	v, ok := o.Get()
	return sql.NullFloat64{Float64: v, Valid: ok}
}

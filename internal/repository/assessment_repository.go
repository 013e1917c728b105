package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"esg-assess/internal/esg"
	"esg-assess/internal/models"
)

var snapshotColumns = []string{
	"s.id", "s.esg_input_id", "s.business_profile_id",
	"s.environmental_score", "s.social_score", "s.governance_score", "s.overall_esg_score",
	"s.data_completeness", "s.advanced_disclosure", "s.confidence_level", "s.missing_fields",
	"s.carbon", "s.score_breakdown", "s.created_at",
}

// AssessmentRepository stores submitted inputs and their snapshots. Rows are
// written once and never updated.
type AssessmentRepository struct {
	db *sql.DB
}

// NewAssessmentRepository creates a new assessment repository
func NewAssessmentRepository(db *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// Create stores the input, its snapshot and the ranked recommendations in one
// transaction and returns the stored rows
func (r *AssessmentRepository) Create(
	ctx context.Context,
	profileID uint,
	input esg.ESGInput,
	snapshot esg.Snapshot,
	recs []esg.Recommendation,
) (*models.Assessment, []models.Recommendation, error) {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode input: %w", err)
	}
	carbonJSON, err := json.Marshal(snapshot.Carbon)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode carbon estimate: %w", err)
	}
	breakdownJSON, err := json.Marshal(snapshot.Breakdown)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode score breakdown: %w", err)
	}

	now := time.Now()
	assessment := &models.Assessment{
		BusinessProfileID: profileID,
		Snapshot:          snapshot,
		Input:             &input,
		CreatedAt:         now,
	}
	var stored []models.Recommendation

	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		row, err := queryRow(ctx, tx, builder().Insert(tableInputs).
			Columns("business_profile_id", "data", "created_at").
			Values(profileID, inputJSON, now).
			Suffix("RETURNING id"))
		if err != nil {
			return err
		}
		if err := row.Scan(&assessment.InputID); err != nil {
			return fmt.Errorf("failed to insert input: %w", err)
		}

		row, err = queryRow(ctx, tx, builder().Insert(tableSnapshots).
			Columns(
				"esg_input_id", "business_profile_id",
				"environmental_score", "social_score", "governance_score", "overall_esg_score",
				"data_completeness", "advanced_disclosure", "confidence_level", "missing_fields",
				"carbon", "score_breakdown", "created_at",
			).
			Values(
				assessment.InputID, profileID,
				snapshot.EnvironmentalScore, snapshot.SocialScore, snapshot.GovernanceScore, snapshot.OverallScore,
				snapshot.DataCompleteness, snapshot.AdvancedDisclosure, string(snapshot.Confidence), pq.Array(snapshot.MissingFields),
				carbonJSON, breakdownJSON, now,
			).
			Suffix("RETURNING id"))
		if err != nil {
			return err
		}
		if err := row.Scan(&assessment.ID); err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}

		stored, err = insertRecommendations(ctx, tx, assessment.ID, recs, now)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	return assessment, stored, nil
}

func insertRecommendations(ctx context.Context, tx *sql.Tx, snapshotID uint, recs []esg.Recommendation, now time.Time) ([]models.Recommendation, error) {
	stored := make([]models.Recommendation, 0, len(recs))
	for _, rec := range recs {
		row, err := queryRow(ctx, tx, builder().Insert(tableRecommendations).
			Columns(
				"snapshot_id", "rule_id", "category", "title", "description",
				"priority", "cost_level", "effort_level", "risk_reduction",
				"impact_min", "impact_max", "esg_impact_points",
				"why_matters", "business_benefit", "rank", "created_at",
			).
			Values(
				snapshotID, rec.RuleID, string(rec.Category), rec.Title, rec.Description,
				string(rec.Priority), string(rec.CostLevel), string(rec.EffortLevel), string(rec.RiskReduction),
				rec.Impact.Min, rec.Impact.Max, rec.ImpactPoints,
				rec.WhyMatters, rec.BusinessBenefit, rec.Rank, now,
			).
			Suffix("RETURNING id"))
		if err != nil {
			return nil, err
		}

		m := models.Recommendation{SnapshotID: snapshotID, Recommendation: rec, CreatedAt: now}
		if err := row.Scan(&m.ID); err != nil {
			return nil, fmt.Errorf("failed to insert recommendation %q: %w", rec.Title, err)
		}
		stored = append(stored, m)
	}
	return stored, nil
}

// GetByID returns a snapshot together with the input it was derived from
func (r *AssessmentRepository) GetByID(ctx context.Context, id uint) (*models.Assessment, error) {
	q := builder().Select(append(snapshotColumns, "i.data")...).
		From(tableSnapshots + " s").
		Join(tableInputs + " i ON i.id = s.esg_input_id").
		Where(squirrel.Eq{"s.id": id})

	row, err := queryRow(ctx, r.db, q)
	if err != nil {
		return nil, err
	}

	var inputJSON []byte
	a, err := scanAssessment(row, &inputJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", wrapErr(err))
	}

	var input esg.ESGInput
	if err := json.Unmarshal(inputJSON, &input); err != nil {
		return nil, fmt.Errorf("failed to decode stored input: %w", err)
	}
	a.Input = &input
	return a, nil
}

// Latest returns the newest snapshot of a profile
func (r *AssessmentRepository) Latest(ctx context.Context, profileID uint) (*models.Assessment, error) {
	q := builder().Select(snapshotColumns...).
		From(tableSnapshots + " s").
		Where(squirrel.Eq{"s.business_profile_id": profileID}).
		OrderBy("s.created_at DESC", "s.id DESC").
		Limit(1)

	row, err := queryRow(ctx, r.db, q)
	if err != nil {
		return nil, err
	}
	a, err := scanAssessment(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest assessment: %w", wrapErr(err))
	}
	return a, nil
}

// ListByProfile returns the snapshot history of a profile, newest first
func (r *AssessmentRepository) ListByProfile(ctx context.Context, profileID uint) ([]models.Assessment, error) {
	q := builder().Select(snapshotColumns...).
		From(tableSnapshots + " s").
		Where(squirrel.Eq{"s.business_profile_id": profileID}).
		OrderBy("s.created_at DESC", "s.id DESC")

	rows, err := queryRows(ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer closeRows(rows)

	var assessments []models.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		assessments = append(assessments, *a)
	}
	return assessments, rows.Err()
}

// OwnerUserID returns the user owning a snapshot
func (r *AssessmentRepository) OwnerUserID(ctx context.Context, snapshotID uint) (uint, error) {
	q := builder().Select("p.user_id").
		From(tableSnapshots + " s").
		Join(tableProfiles + " p ON p.id = s.business_profile_id").
		Where(squirrel.Eq{"s.id": snapshotID})

	row, err := queryRow(ctx, r.db, q)
	if err != nil {
		return 0, err
	}
	var userID uint
	if err := row.Scan(&userID); err != nil {
		return 0, fmt.Errorf("failed to get assessment owner: %w", wrapErr(err))
	}
	return userID, nil
}

// ListStale returns active users whose latest assessment is older than cutoff
func (r *AssessmentRepository) ListStale(ctx context.Context, cutoff time.Time) ([]models.ReassessmentCandidate, error) {
	q := builder().Select("u.id", "u.email", "u.first_name", "p.business_name", "MAX(s.created_at)").
		From(tableUsers + " u").
		Join(tableProfiles + " p ON p.user_id = u.id").
		Join(tableSnapshots + " s ON s.business_profile_id = p.id").
		Where(squirrel.Eq{"u.is_active": true}).
		GroupBy("u.id", "u.email", "u.first_name", "p.business_name").
		Having("MAX(s.created_at) < ?", cutoff).
		OrderBy("u.id")

	rows, err := queryRows(ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale assessments: %w", err)
	}
	defer closeRows(rows)

	var candidates []models.ReassessmentCandidate
	for rows.Next() {
		var c models.ReassessmentCandidate
		if err := rows.Scan(&c.UserID, &c.Email, &c.FirstName, &c.BusinessName, &c.LastAssessedAt); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row scanner, extra ...any) (*models.Assessment, error) {
	a := &models.Assessment{}
	s := &a.Snapshot
	var confidence string
	var carbonJSON, breakdownJSON []byte

	dest := []any{
		&a.ID, &a.InputID, &a.BusinessProfileID,
		&s.EnvironmentalScore, &s.SocialScore, &s.GovernanceScore, &s.OverallScore,
		&s.DataCompleteness, &s.AdvancedDisclosure, &confidence, pq.Array(&s.MissingFields),
		&carbonJSON, &breakdownJSON, &a.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	s.Confidence = esg.Confidence(confidence)
	if s.MissingFields == nil {
		s.MissingFields = []string{}
	}
	if err := json.Unmarshal(carbonJSON, &s.Carbon); err != nil {
		return nil, fmt.Errorf("failed to decode carbon estimate: %w", err)
	}
	if err := json.Unmarshal(breakdownJSON, &s.Breakdown); err != nil {
		return nil, fmt.Errorf("failed to decode score breakdown: %w", err)
	}
	return a, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"esg-assess/internal/esg"
	"esg-assess/internal/models"
)

var recommendationColumns = []string{
	"id", "snapshot_id", "rule_id", "category", "title", "description",
	"priority", "cost_level", "effort_level", "risk_reduction",
	"impact_min", "impact_max", "esg_impact_points",
	"why_matters", "business_benefit", "rank", "created_at",
}

// RecommendationRepository reads the recommendations stored with a snapshot
type RecommendationRepository struct {
	db *sql.DB
}

// NewRecommendationRepository creates a new recommendation repository
func NewRecommendationRepository(db *sql.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// ListBySnapshot returns the recommendations of a snapshot in rank order.
// A limit of 0 returns all of them.
func (r *RecommendationRepository) ListBySnapshot(ctx context.Context, snapshotID uint, limit uint64) ([]models.Recommendation, error) {
	q := builder().Select(recommendationColumns...).
		From(tableRecommendations).
		Where(squirrel.Eq{"snapshot_id": snapshotID}).
		OrderBy("rank ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	rows, err := queryRows(ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer closeRows(rows)

	var recs []models.Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// GetByID returns one recommendation
func (r *RecommendationRepository) GetByID(ctx context.Context, id uint) (*models.Recommendation, error) {
	row, err := queryRow(ctx, r.db, builder().Select(recommendationColumns...).
		From(tableRecommendations).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	rec, err := scanRecommendation(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendation: %w", wrapErr(err))
	}
	return rec, nil
}

func scanRecommendation(row scanner) (*models.Recommendation, error) {
	m := &models.Recommendation{}
	var category, priority, cost, effort, risk string
	err := row.Scan(
		&m.ID, &m.SnapshotID, &m.RuleID, &category, &m.Title, &m.Description,
		&priority, &cost, &effort, &risk,
		&m.Impact.Min, &m.Impact.Max, &m.ImpactPoints,
		&m.WhyMatters, &m.BusinessBenefit, &m.Rank, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Category = esg.Category(category)
	m.Priority = esg.Level(priority)
	m.CostLevel = esg.Level(cost)
	m.EffortLevel = esg.Level(effort)
	m.RiskReduction = esg.Level(risk)
	return m, nil
}

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

var roadmapColumns = []string{
	"id", "snapshot_id", "recommendation_id", "phase", "start_day", "end_day",
	"action_title", "description", "effort_level", "responsible_role",
	"esg_category", "priority", "source", "completed_at", "created_at",
}

// roadmapOrder sorts by phase, then priority high first, then category E, S, G, then title
var roadmapOrder = []string{
	"phase ASC",
	"CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END",
	"CASE esg_category WHEN 'E' THEN 0 WHEN 'S' THEN 1 ELSE 2 END",
	"action_title ASC",
	"id ASC",
}

// RoadmapRepository stores roadmap items of a snapshot
type RoadmapRepository struct {
	db *sql.DB
}

// NewRoadmapRepository creates a new roadmap repository
func NewRoadmapRepository(db *sql.DB) *RoadmapRepository {
	return &RoadmapRepository{db: db}
}

// ReplaceGenerated swaps the generated items of a snapshot for a new set.
// Items added manually or from the chat are left alone.
func (r *RoadmapRepository) ReplaceGenerated(ctx context.Context, snapshotID uint, items []models.RoadmapItem) ([]models.RoadmapItem, error) {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := exec(ctx, tx, builder().Delete(tableRoadmapItems).Where(squirrel.Eq{
			"snapshot_id": snapshotID,
			"source":      models.RoadmapSourceGenerated,
		}))
		if err != nil {
			return fmt.Errorf("failed to clear generated roadmap: %w", err)
		}

		for i := range items {
			items[i].SnapshotID = snapshotID
			items[i].Source = models.RoadmapSourceGenerated
			if err := insertRoadmapItem(ctx, tx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Create stores a single roadmap item
func (r *RoadmapRepository) Create(ctx context.Context, item *models.RoadmapItem) error {
	return insertRoadmapItem(ctx, r.db, item)
}

func insertRoadmapItem(ctx context.Context, q querier, item *models.RoadmapItem) error {
	item.CreatedAt = time.Now()
	row, err := queryRow(ctx, q, builder().Insert(tableRoadmapItems).
		Columns(
			"snapshot_id", "recommendation_id", "phase", "start_day", "end_day",
			"action_title", "description", "effort_level", "responsible_role",
			"esg_category", "priority", "source", "created_at",
		).
		Values(
			item.SnapshotID, item.RecommendationID, item.Phase, item.StartDay, item.EndDay,
			item.Title, item.Description, string(item.Effort), item.ResponsibleRole,
			string(item.Category), string(item.Priority), item.Source, item.CreatedAt,
		).
		Suffix("RETURNING id"))
	if err != nil {
		return err
	}
	if err := row.Scan(&item.ID); err != nil {
		return fmt.Errorf("failed to insert roadmap item: %w", err)
	}
	return nil
}

// ListBySnapshot returns the roadmap of a snapshot in display order
func (r *RoadmapRepository) ListBySnapshot(ctx context.Context, snapshotID uint) ([]models.RoadmapItem, error) {
	return r.list(ctx, builder().Select(roadmapColumns...).
		From(tableRoadmapItems).
		Where(squirrel.Eq{"snapshot_id": snapshotID}).
		OrderBy(roadmapOrder...))
}

// ListOpen returns the items of a snapshot that are not completed yet
func (r *RoadmapRepository) ListOpen(ctx context.Context, snapshotID uint) ([]models.RoadmapItem, error) {
	return r.list(ctx, builder().Select(roadmapColumns...).
		From(tableRoadmapItems).
		Where(squirrel.Eq{"snapshot_id": snapshotID, "completed_at": nil}).
		OrderBy(roadmapOrder...))
}

func (r *RoadmapRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]models.RoadmapItem, error) {
	rows, err := queryRows(ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list roadmap items: %w", err)
	}
	defer closeRows(rows)

	var items []models.RoadmapItem
	for rows.Next() {
		item, err := scanRoadmapItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roadmap item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetByID returns one roadmap item
func (r *RoadmapRepository) GetByID(ctx context.Context, id uint) (*models.RoadmapItem, error) {
	row, err := queryRow(ctx, r.db, builder().Select(roadmapColumns...).
		From(tableRoadmapItems).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	item, err := scanRoadmapItem(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get roadmap item: %w", wrapErr(err))
	}
	return item, nil
}

// LatestOpen returns the most recently added open item of a snapshot
func (r *RoadmapRepository) LatestOpen(ctx context.Context, snapshotID uint) (*models.RoadmapItem, error) {
	row, err := queryRow(ctx, r.db, builder().Select(roadmapColumns...).
		From(tableRoadmapItems).
		Where(squirrel.Eq{"snapshot_id": snapshotID, "completed_at": nil}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1))
	if err != nil {
		return nil, err
	}
	item, err := scanRoadmapItem(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get open roadmap item: %w", wrapErr(err))
	}
	return item, nil
}

// ExistsByTitle reports whether the snapshot roadmap already holds an action
func (r *RoadmapRepository) ExistsByTitle(ctx context.Context, snapshotID uint, title string) (bool, error) {
	q := builder().Select("1").
		From(tableRoadmapItems).
		Where(squirrel.Eq{"snapshot_id": snapshotID, "action_title": title}).
		Prefix("SELECT EXISTS (").
		Suffix(")")

	row, err := queryRow(ctx, r.db, q)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check roadmap item: %w", err)
	}
	return exists, nil
}

// MarkCompleted sets the completion time of an item. Completing an item twice
// keeps the first timestamp.
func (r *RoadmapRepository) MarkCompleted(ctx context.Context, id uint) (*models.RoadmapItem, error) {
	q := builder().Update(tableRoadmapItems).
		Set("completed_at", squirrel.Expr("COALESCE(completed_at, ?)", time.Now())).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(roadmapColumns))

	row, err := queryRow(ctx, r.db, q)
	if err != nil {
		return nil, err
	}
	item, err := scanRoadmapItem(row)
	if err != nil {
		return nil, fmt.Errorf("failed to complete roadmap item: %w", wrapErr(err))
	}
	return item, nil
}

func scanRoadmapItem(row scanner) (*models.RoadmapItem, error) {
	item := &models.RoadmapItem{}
	var recID sql.NullInt64
	var effort, category, priority string
	err := row.Scan(
		&item.ID, &item.SnapshotID, &recID, &item.Phase, &item.StartDay, &item.EndDay,
		&item.Title, &item.Description, &effort, &item.ResponsibleRole,
		&category, &priority, &item.Source, &item.CompletedAt, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if recID.Valid {
		id := uint(recID.Int64)
		item.RecommendationID = &id
	}
	item.Effort = esg.Level(effort)
	item.Category = esg.Category(category)
	item.Priority = esg.Level(priority)
	return item, nil
}

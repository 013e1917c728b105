package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"esg-assess/internal/esg"
	"esg-assess/internal/models"
	"esg-assess/internal/repository"
)

// maxPhases is the phase count of the longest roadmap
const maxPhases = 3

// AddItemRequest names what to put on the roadmap: a stored recommendation
// or an inline action
type AddItemRequest struct {
	RecommendationID *uint       `json:"recommendation_id,omitempty"`
	Action           *esg.Action `json:"action,omitempty"`
}

// RoadmapService builds and tracks the roadmap of a snapshot
type RoadmapService struct {
	profileRepo profileStore
	assessRepo  assessmentStore
	recRepo     recommendationStore
	roadmapRepo roadmapStore
	owner       snapshotOwner
}

// NewRoadmapService creates a new roadmap service
func NewRoadmapService(profileRepo profileStore, assessRepo assessmentStore, recRepo recommendationStore, roadmapRepo roadmapStore) *RoadmapService {
	return &RoadmapService{
		profileRepo: profileRepo,
		assessRepo:  assessRepo,
		recRepo:     recRepo,
		roadmapRepo: roadmapRepo,
		owner:       snapshotOwner{assessments: assessRepo},
	}
}

// Generate lays the snapshot's recommendations out over a 30, 60 or 90 day
// timeframe and replaces any previously generated plan. Actions already put
// on the roadmap by hand or from the chat are not planned again. Only the
// planned items are returned, so every item fits the timeframe.
func (s *RoadmapService) Generate(ctx context.Context, userID, snapshotID uint, timeframe int) ([]models.RoadmapItem, error) {
	if _, err := esg.PhaseCount(timeframe); err != nil {
		return nil, err
	}
	if err := s.owner.authorize(ctx, userID, snapshotID); err != nil {
		return nil, err
	}

	employees, err := s.employeeCount(ctx, snapshotID)
	if err != nil {
		return nil, err
	}

	recs, err := s.recRepo.ListBySnapshot(ctx, snapshotID, 0)
	if err != nil {
		return nil, err
	}
	existing, err := s.roadmapRepo.ListBySnapshot(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	kept := make(map[string]bool, len(existing))
	for _, it := range existing {
		if it.Source != models.RoadmapSourceGenerated {
			kept[strings.ToLower(it.Title)] = true
		}
	}

	actions := make([]esg.Recommendation, 0, len(recs))
	recIDs := make(map[string]uint, len(recs))
	for _, r := range recs {
		if kept[strings.ToLower(r.Title)] {
			continue
		}
		actions = append(actions, r.Recommendation)
		recIDs[r.Title] = r.ID
	}

	plan, err := esg.BuildRoadmap(esg.ActionsFromRecommendations(actions), timeframe, employees)
	if err != nil {
		return nil, err
	}

	planned := plan.Items()
	items := make([]models.RoadmapItem, 0, len(planned))
	for _, it := range planned {
		item := models.RoadmapItem{RoadmapItem: it}
		if id, ok := recIDs[it.Title]; ok {
			item.RecommendationID = &id
		}
		items = append(items, item)
	}

	stored, err := s.roadmapRepo.ReplaceGenerated(ctx, snapshotID, items)
	if err != nil {
		return nil, fmt.Errorf("failed to store roadmap: %w", err)
	}

	slog.Info("Roadmap generated", "snapshot_id", snapshotID, "timeframe", timeframe,
		"items", len(stored), "skipped", len(recs)-len(actions))
	return stored, nil
}

// List returns the saved roadmap of a snapshot
func (s *RoadmapService) List(ctx context.Context, userID, snapshotID uint) ([]models.RoadmapItem, error) {
	if err := s.owner.authorize(ctx, userID, snapshotID); err != nil {
		return nil, err
	}
	return s.roadmapRepo.ListBySnapshot(ctx, snapshotID)
}

// AddItem puts a recommendation or an inline action on the roadmap. Effort
// decides the phase. An action already on the roadmap is a conflict.
func (s *RoadmapService) AddItem(ctx context.Context, userID, snapshotID uint, req AddItemRequest) (*models.RoadmapItem, error) {
	if err := s.owner.authorize(ctx, userID, snapshotID); err != nil {
		return nil, err
	}

	var (
		action esg.Action
		recID  *uint
		source = models.RoadmapSourceRecommendation
	)
	switch {
	case req.RecommendationID != nil:
		rec, err := s.recRepo.GetByID(ctx, *req.RecommendationID)
		if err != nil {
			return nil, notFound(err, "recommendation")
		}
		if rec.SnapshotID != snapshotID {
			return nil, fmt.Errorf("recommendation %d: %w", rec.ID, ErrNotFound)
		}
		action = esg.ActionsFromRecommendations([]esg.Recommendation{rec.Recommendation})[0]
		recID = &rec.ID
	case req.Action != nil:
		action = *req.Action
		if err := esg.ValidateAction(action); err != nil {
			return nil, err
		}
	default:
		return nil, &esg.ValidationError{Messages: []string{"recommendation_id or action is required"}}
	}

	employees, err := s.employeeCount(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	return s.addAction(ctx, snapshotID, action, recID, source, PhaseFor(action.Effort), employees)
}

// PhaseFor places an action added outside of generation
func PhaseFor(effort esg.Level) int {
	return esg.PhaseForEffort(effort, maxPhases)
}

func (s *RoadmapService) addAction(ctx context.Context, snapshotID uint, action esg.Action, recID *uint, source string, phase, employees int) (*models.RoadmapItem, error) {
	exists, err := s.roadmapRepo.ExistsByTitle(ctx, snapshotID, action.Title)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%q is already on the roadmap: %w", action.Title, ErrConflict)
	}

	start, end := esg.PhaseDays(phase)
	item := &models.RoadmapItem{
		SnapshotID:       snapshotID,
		RecommendationID: recID,
		RoadmapItem: esg.RoadmapItem{
			Action:          action,
			Phase:           phase,
			StartDay:        start,
			EndDay:          end,
			ResponsibleRole: esg.ResponsibleRole(action.Category, employees),
		},
		Source: source,
	}
	if err := s.roadmapRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add roadmap item: %w", err)
	}
	return item, nil
}

// Complete marks one of the caller's roadmap items as done
func (s *RoadmapService) Complete(ctx context.Context, userID, itemID uint) (*models.RoadmapItem, error) {
	item, err := s.roadmapRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, notFound(err, "roadmap item")
	}
	if err := s.owner.authorize(ctx, userID, item.SnapshotID); err != nil {
		return nil, err
	}
	item, err = s.roadmapRepo.MarkCompleted(ctx, itemID)
	if err != nil {
		return nil, notFound(err, "roadmap item")
	}
	return item, nil
}

// completeLatest marks the most recently added open item of a snapshot as
// done. It returns nil when nothing is open.
func (s *RoadmapService) completeLatest(ctx context.Context, snapshotID uint) (*models.RoadmapItem, error) {
	open, err := s.roadmapRepo.LatestOpen(ctx, snapshotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.roadmapRepo.MarkCompleted(ctx, open.ID)
}

func (s *RoadmapService) employeeCount(ctx context.Context, snapshotID uint) (int, error) {
	a, err := s.assessRepo.GetByID(ctx, snapshotID)
	if err != nil {
		return 0, notFound(err, "assessment")
	}
	if a.Input != nil && a.Input.TotalEmployees > 0 {
		return a.Input.TotalEmployees, nil
	}
	profile, err := s.profileRepo.GetByID(ctx, a.BusinessProfileID)
	if err != nil {
		return 0, notFound(err, "business profile")
	}
	return profile.EmployeeCount, nil
}

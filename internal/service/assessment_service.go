package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"esg-assess/internal/esg"
	"esg-assess/internal/models"
	"esg-assess/internal/repository"
)

// AssessmentResult is the outcome of a submission
type AssessmentResult struct {
	Assessment         *models.Assessment      `json:"assessment"`
	TopRecommendations []models.Recommendation `json:"top_recommendations"`
}

// Dashboard aggregates everything the dashboard shows for one snapshot
type Dashboard struct {
	Assessment         *models.Assessment      `json:"assessment"`
	Insights           esg.DashboardInsights   `json:"insights"`
	MonthlyFocus       string                  `json:"monthly_focus"`
	TopRecommendations []models.Recommendation `json:"top_recommendations"`
	Roadmap            []models.RoadmapItem    `json:"roadmap"`
	NextActions        []models.RoadmapItem    `json:"next_actions"`
	CompletedActions   int                     `json:"completed_actions"`
}

// AssessmentService runs submissions through scoring and recommendation and
// serves the stored results
type AssessmentService struct {
	engine      *esg.Engine
	profileRepo profileStore
	assessRepo  assessmentStore
	recRepo     recommendationStore
	roadmapRepo roadmapStore
	owner       snapshotOwner
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(
	engine *esg.Engine,
	profileRepo profileStore,
	assessRepo assessmentStore,
	recRepo recommendationStore,
	roadmapRepo roadmapStore,
) *AssessmentService {
	return &AssessmentService{
		engine:      engine,
		profileRepo: profileRepo,
		assessRepo:  assessRepo,
		recRepo:     recRepo,
		roadmapRepo: roadmapRepo,
		owner:       snapshotOwner{assessments: assessRepo},
	}
}

// Submit validates and scores a questionnaire, derives recommendations and
// stores all of it. An omitted total_employees falls back to the profile.
func (s *AssessmentService) Submit(ctx context.Context, userID uint, input esg.ESGInput) (*AssessmentResult, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoProfile
		}
		return nil, err
	}

	if input.TotalEmployees == 0 {
		input.TotalEmployees = profile.EmployeeCount
	}
	if err := esg.ValidateInput(input); err != nil {
		return nil, err
	}

	snapshot, err := s.engine.Score(profile.BusinessProfile, input)
	if err != nil {
		slog.Error("Scoring failed", "profile_id", profile.ID, "error", err)
		return nil, err
	}
	recs := esg.Recommend(input, snapshot)

	assessment, stored, err := s.assessRepo.Create(ctx, profile.ID, input, snapshot, recs.All)
	if err != nil {
		return nil, fmt.Errorf("failed to store assessment: %w", err)
	}

	slog.Info("Assessment scored",
		"snapshot_id", assessment.ID,
		"profile_id", profile.ID,
		"overall", snapshot.OverallScore,
		"confidence", snapshot.Confidence,
		"recommendations", len(stored),
	)

	return &AssessmentResult{
		Assessment:         assessment,
		TopRecommendations: stored[:min(esg.TopCount, len(stored))],
	}, nil
}

// Get returns one of the caller's snapshots with its input
func (s *AssessmentService) Get(ctx context.Context, userID, snapshotID uint) (*models.Assessment, error) {
	if err := s.owner.authorize(ctx, userID, snapshotID); err != nil {
		return nil, err
	}
	a, err := s.assessRepo.GetByID(ctx, snapshotID)
	if err != nil {
		return nil, notFound(err, "assessment")
	}
	return a, nil
}

// History returns the caller's snapshots, newest first
func (s *AssessmentService) History(ctx context.Context, userID uint) ([]models.Assessment, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []models.Assessment{}, nil
		}
		return nil, err
	}
	return s.assessRepo.ListByProfile(ctx, profile.ID)
}

// Latest returns the caller's newest snapshot
func (s *AssessmentService) Latest(ctx context.Context, userID uint) (*models.Assessment, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "business profile")
	}
	a, err := s.assessRepo.Latest(ctx, profile.ID)
	if err != nil {
		return nil, notFound(err, "assessment")
	}
	return a, nil
}

// Dashboard loads a snapshot, its top recommendations and its roadmap in
// parallel
func (s *AssessmentService) Dashboard(ctx context.Context, userID, snapshotID uint) (*Dashboard, error) {
	if err := s.owner.authorize(ctx, userID, snapshotID); err != nil {
		return nil, err
	}

	var (
		assessment *models.Assessment
		top        []models.Recommendation
		roadmap    []models.RoadmapItem
		open       []models.RoadmapItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		assessment, err = s.assessRepo.GetByID(gctx, snapshotID)
		return notFound(err, "assessment")
	})
	g.Go(func() error {
		var err error
		top, err = s.recRepo.ListBySnapshot(gctx, snapshotID, esg.TopCount)
		return err
	})
	g.Go(func() error {
		var err error
		roadmap, err = s.roadmapRepo.ListBySnapshot(gctx, snapshotID)
		return err
	})
	g.Go(func() error {
		var err error
		open, err = s.roadmapRepo.ListOpen(gctx, snapshotID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Dashboard{
		Assessment:         assessment,
		Insights:           esg.Insights(assessment.Snapshot),
		MonthlyFocus:       esg.MonthlyFocusText(assessment.Snapshot),
		TopRecommendations: top,
		Roadmap:            roadmap,
		NextActions:        open[:min(len(open), esg.TopCount)],
		CompletedActions:   len(roadmap) - len(open),
	}, nil
}

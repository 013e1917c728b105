package service

import (
	"context"
	"fmt"

	"esg-assess/internal/esg"
	"esg-assess/internal/models"
)

// RecommendationService serves stored recommendations and what-if views
type RecommendationService struct {
	weights     esg.Weights
	profileRepo profileStore
	assessRepo  assessmentStore
	recRepo     recommendationStore
	owner       snapshotOwner
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(weights esg.Weights, profileRepo profileStore, assessRepo assessmentStore, recRepo recommendationStore) *RecommendationService {
	return &RecommendationService{
		weights:     weights,
		profileRepo: profileRepo,
		assessRepo:  assessRepo,
		recRepo:     recRepo,
		owner:       snapshotOwner{assessments: assessRepo},
	}
}

// List returns the top recommendations of a snapshot, or all of them
func (s *RecommendationService) List(ctx context.Context, userID, snapshotID uint, all bool) ([]models.Recommendation, error) {
	if err := s.owner.authorize(ctx, userID, snapshotID); err != nil {
		return nil, err
	}
	var limit uint64 = esg.TopCount
	if all {
		limit = 0
	}
	return s.recRepo.ListBySnapshot(ctx, snapshotID, limit)
}

// Simulate projects the scores after acting on one recommendation
func (s *RecommendationService) Simulate(ctx context.Context, userID, snapshotID, recID uint) (*esg.Simulation, error) {
	if err := s.owner.authorize(ctx, userID, snapshotID); err != nil {
		return nil, err
	}

	rec, err := s.recRepo.GetByID(ctx, recID)
	if err != nil {
		return nil, notFound(err, "recommendation")
	}
	if rec.SnapshotID != snapshotID {
		return nil, fmt.Errorf("recommendation %d: %w", recID, ErrNotFound)
	}

	a, err := s.assessRepo.GetByID(ctx, snapshotID)
	if err != nil {
		return nil, notFound(err, "assessment")
	}

	sim := esg.SimulateImpact(a.Snapshot, rec.Recommendation, s.weights)
	return &sim, nil
}

// Opportunities lists industry specific opportunities for a snapshot
func (s *RecommendationService) Opportunities(ctx context.Context, userID, snapshotID uint) ([]esg.Opportunity, error) {
	if err := s.owner.authorize(ctx, userID, snapshotID); err != nil {
		return nil, err
	}

	a, err := s.assessRepo.GetByID(ctx, snapshotID)
	if err != nil {
		return nil, notFound(err, "assessment")
	}
	profile, err := s.profileRepo.GetByID(ctx, a.BusinessProfileID)
	if err != nil {
		return nil, notFound(err, "business profile")
	}

	return esg.IndustryOpportunities(profile.BusinessProfile, a.Snapshot), nil
}

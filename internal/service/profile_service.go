package service

import (
	"context"
	"errors"
	"fmt"

	"esg-assess/internal/esg"
	"esg-assess/internal/models"
	"esg-assess/internal/repository"
)

// ProfileService manages the business profile of a user
type ProfileService struct {
	profileRepo profileStore
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo profileStore) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

// Get returns the caller's profile or ErrNoProfile
func (s *ProfileService) Get(ctx context.Context, userID uint) (*models.BusinessProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoProfile
		}
		return nil, err
	}
	return profile, nil
}

// Save validates and stores the caller's profile
func (s *ProfileService) Save(ctx context.Context, userID uint, p esg.BusinessProfile) (*models.BusinessProfile, error) {
	if err := esg.ValidateProfile(p); err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.Upsert(ctx, userID, p)
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return profile, nil
}

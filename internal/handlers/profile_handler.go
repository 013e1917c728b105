package handlers

import (
	"context"
	"net/http"

	"esg-assess/internal/esg"
	"esg-assess/internal/models"
	"esg-assess/pkg/validator"
)

type profileAPI interface {
	Get(ctx context.Context, userID uint) (*models.BusinessProfile, error)
	Save(ctx context.Context, userID uint, p esg.BusinessProfile) (*models.BusinessProfile, error)
}

// ProfileHandler serves the caller's business profile
type ProfileHandler struct {
	profiles profileAPI
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles profileAPI) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get returns the caller's business profile
// @Summary Get business profile
// @Tags Business Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.BusinessProfile
// @Failure 412 {object} map[string]string "No profile yet"
// @Router /business-profile [get]
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	profile, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to load business profile")
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

// Save creates or replaces the caller's business profile
// @Summary Save business profile
// @Description Create the business profile or replace all of its fields
// @Tags Business Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body esg.BusinessProfile true "Profile"
// @Success 200 {object} models.BusinessProfile
// @Failure 400 {object} validationResponse "Invalid profile"
// @Router /business-profile [put]
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var p esg.BusinessProfile
	if !decodeJSON(w, r, &p) {
		return
	}
	p.BusinessName = validator.SanitizeString(p.BusinessName)
	p.Location = validator.SanitizeString(p.Location)

	profile, err := h.profiles.Save(r.Context(), userID, p)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to save business profile")
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

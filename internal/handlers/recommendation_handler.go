package handlers

import (
	"context"
	"net/http"
	"strconv"

	"esg-assess/internal/esg"
	"esg-assess/internal/models"
)

type recommendationAPI interface {
	List(ctx context.Context, userID, snapshotID uint, all bool) ([]models.Recommendation, error)
	Simulate(ctx context.Context, userID, snapshotID, recID uint) (*esg.Simulation, error)
	Opportunities(ctx context.Context, userID, snapshotID uint) ([]esg.Opportunity, error)
}

// RecommendationHandler serves ranked recommendations of a snapshot
type RecommendationHandler struct {
	recommendations recommendationAPI
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recommendations recommendationAPI) *RecommendationHandler {
	return &RecommendationHandler{recommendations: recommendations}
}

// List returns the top 3 recommendations, or all of them with all=true
// @Summary List recommendations
// @Tags Recommendations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Snapshot ID"
// @Param all query bool false "Return the full ranked list"
// @Success 200 {array} models.Recommendation
// @Failure 403 {object} map[string]string "Not the caller's snapshot"
// @Failure 404 {object} map[string]string "Not found"
// @Router /assessments/{id}/recommendations [get]
func (h *RecommendationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	all := false
	if v := r.URL.Query().Get("all"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid all parameter")
			return
		}
		all = parsed
	}

	recs, err := h.recommendations.List(r.Context(), userID, id, all)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list recommendations")
		return
	}
	respondWithJSON(w, http.StatusOK, recs)
}

// Simulate projects the scores if a recommendation were implemented
// @Summary Simulate recommendation impact
// @Tags Recommendations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Snapshot ID"
// @Param recId path int true "Recommendation ID"
// @Success 200 {object} esg.Simulation
// @Failure 403 {object} map[string]string "Not the caller's snapshot"
// @Failure 404 {object} map[string]string "Not found"
// @Router /assessments/{id}/recommendations/{recId}/simulate [post]
func (h *RecommendationHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	recID, ok := pathID(w, r, "recId")
	if !ok {
		return
	}

	sim, err := h.recommendations.Simulate(r.Context(), userID, id, recID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to simulate impact")
		return
	}
	respondWithJSON(w, http.StatusOK, sim)
}

// Opportunities lists industry specific improvements for the snapshot's business
// @Summary Industry opportunities
// @Tags Recommendations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Snapshot ID"
// @Success 200 {array} esg.Opportunity
// @Failure 403 {object} map[string]string "Not the caller's snapshot"
// @Failure 404 {object} map[string]string "Not found"
// @Router /assessments/{id}/opportunities [get]
func (h *RecommendationHandler) Opportunities(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	opps, err := h.recommendations.Opportunities(r.Context(), userID, id)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to load opportunities")
		return
	}
	respondWithJSON(w, http.StatusOK, opps)
}

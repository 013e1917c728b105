package handlers

import (
	"context"
	"net/http"

	"esg-assess/internal/esg"
	"esg-assess/internal/models"
	"esg-assess/internal/service"
)

type assessmentAPI interface {
	Submit(ctx context.Context, userID uint, input esg.ESGInput) (*service.AssessmentResult, error)
	Get(ctx context.Context, userID, snapshotID uint) (*models.Assessment, error)
	History(ctx context.Context, userID uint) ([]models.Assessment, error)
	Latest(ctx context.Context, userID uint) (*models.Assessment, error)
	Dashboard(ctx context.Context, userID, snapshotID uint) (*service.Dashboard, error)
}

// AssessmentHandler handles questionnaire submissions and their snapshots
type AssessmentHandler struct {
	assessments assessmentAPI
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(assessments assessmentAPI) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

// Submit scores a questionnaire
// @Summary Submit an ESG questionnaire
// @Description Validates and scores the input, stores the snapshot and returns it with the top 3 recommendations
// @Tags Assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body esg.ESGInput true "Questionnaire answers"
// @Success 201 {object} service.AssessmentResult
// @Failure 400 {object} validationResponse "Every validation problem at once"
// @Failure 412 {object} map[string]string "Business profile required"
// @Router /assessments [post]
func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input esg.ESGInput
	if !decodeJSON(w, r, &input) {
		return
	}

	result, err := h.assessments.Submit(r.Context(), userID, input)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to score assessment")
		return
	}
	respondWithJSON(w, http.StatusCreated, result)
}

// List returns the caller's snapshot history
// @Summary List assessments
// @Description Snapshot history of the caller's business, newest first
// @Tags Assessments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Assessment
// @Router /assessments [get]
func (h *AssessmentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	history, err := h.assessments.History(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list assessments")
		return
	}
	respondWithJSON(w, http.StatusOK, history)
}

// Latest returns the caller's newest snapshot
// @Summary Latest assessment
// @Tags Assessments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Assessment
// @Failure 404 {object} map[string]string "No assessment yet"
// @Router /assessments/latest [get]
func (h *AssessmentHandler) Latest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	a, err := h.assessments.Latest(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to load assessment")
		return
	}
	respondWithJSON(w, http.StatusOK, a)
}

// Get returns one snapshot with the input it was scored from
// @Summary Get assessment
// @Tags Assessments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Snapshot ID"
// @Success 200 {object} models.Assessment
// @Failure 403 {object} map[string]string "Not the caller's snapshot"
// @Failure 404 {object} map[string]string "Not found"
// @Router /assessments/{id} [get]
func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a, err := h.assessments.Get(r.Context(), userID, id)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to load assessment")
		return
	}
	respondWithJSON(w, http.StatusOK, a)
}

// Dashboard returns the snapshot with insights, top recommendations and roadmap
// @Summary Assessment dashboard
// @Tags Assessments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Snapshot ID"
// @Success 200 {object} service.Dashboard
// @Failure 403 {object} map[string]string "Not the caller's snapshot"
// @Failure 404 {object} map[string]string "Not found"
// @Router /assessments/{id}/dashboard [get]
func (h *AssessmentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	d, err := h.assessments.Dashboard(r.Context(), userID, id)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to load dashboard")
		return
	}
	respondWithJSON(w, http.StatusOK, d)
}

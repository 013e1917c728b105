package handlers

import (
	"context"
	"net/http"

	"esg-assess/internal/models"
	"esg-assess/internal/service"
)

type roadmapAPI interface {
	Generate(ctx context.Context, userID, snapshotID uint, timeframe int) ([]models.RoadmapItem, error)
	List(ctx context.Context, userID, snapshotID uint) ([]models.RoadmapItem, error)
	AddItem(ctx context.Context, userID, snapshotID uint, req service.AddItemRequest) (*models.RoadmapItem, error)
	Complete(ctx context.Context, userID, itemID uint) (*models.RoadmapItem, error)
}

// RoadmapHandler handles roadmap planning and progress
type RoadmapHandler struct {
	roadmaps roadmapAPI
}

// NewRoadmapHandler creates a new roadmap handler
func NewRoadmapHandler(roadmaps roadmapAPI) *RoadmapHandler {
	return &RoadmapHandler{roadmaps: roadmaps}
}

// GenerateRoadmapRequest selects the roadmap horizon
type GenerateRoadmapRequest struct {
	Timeframe int `json:"timeframe" example:"90"`
}

// Generate builds a 30, 60 or 90 day roadmap from the snapshot's recommendations
// @Summary Generate roadmap
// @Description Replaces previously generated items and returns the newly planned ones. Items added by hand or through the chat are kept and not planned again.
// @Tags Roadmap
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Snapshot ID"
// @Param request body GenerateRoadmapRequest true "Timeframe in days (30, 60 or 90)"
// @Success 200 {array} models.RoadmapItem
// @Failure 400 {object} validationResponse "Invalid timeframe"
// @Failure 403 {object} map[string]string "Not the caller's snapshot"
// @Router /assessments/{id}/roadmap [post]
func (h *RoadmapHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req GenerateRoadmapRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items, err := h.roadmaps.Generate(r.Context(), userID, id, req.Timeframe)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to generate roadmap")
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}

// List returns the saved roadmap items
// @Summary Get roadmap
// @Tags Roadmap
// @Produce json
// @Security BearerAuth
// @Param id path int true "Snapshot ID"
// @Success 200 {array} models.RoadmapItem
// @Failure 403 {object} map[string]string "Not the caller's snapshot"
// @Router /assessments/{id}/roadmap [get]
func (h *RoadmapHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	items, err := h.roadmaps.List(r.Context(), userID, id)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to load roadmap")
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}

// AddItem puts a stored recommendation or an inline action on the roadmap
// @Summary Add roadmap item
// @Tags Roadmap
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Snapshot ID"
// @Param request body service.AddItemRequest true "Recommendation ID or action"
// @Success 201 {object} models.RoadmapItem
// @Failure 400 {object} validationResponse "Invalid action"
// @Failure 404 {object} map[string]string "Recommendation not found"
// @Failure 409 {object} map[string]string "Already on the roadmap"
// @Router /assessments/{id}/roadmap/items [post]
func (h *RoadmapHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req service.AddItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.roadmaps.AddItem(r.Context(), userID, id, req)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to add roadmap item")
		return
	}
	respondWithJSON(w, http.StatusCreated, item)
}

// Complete marks a roadmap item as done
// @Summary Complete roadmap item
// @Tags Roadmap
// @Produce json
// @Security BearerAuth
// @Param itemId path int true "Roadmap item ID"
// @Success 200 {object} models.RoadmapItem
// @Failure 403 {object} map[string]string "Not the caller's item"
// @Failure 404 {object} map[string]string "Not found"
// @Router /roadmap/items/{itemId}/complete [put]
func (h *RoadmapHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}
	item, err := h.roadmaps.Complete(r.Context(), userID, itemID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to complete roadmap item")
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"esg-assess/internal/models"
	"esg-assess/internal/repository"
)

type auditLister interface {
	List(ctx context.Context, f repository.AuditFilter) ([]models.AuditLog, int, error)
}

// AuditHandler handles audit log requests
type AuditHandler struct {
	audit auditLister
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audit auditLister) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// AuditLogPage is one page of audit log entries
type AuditLogPage struct {
	Logs       []models.AuditLog `json:"logs"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// ListAuditLogs lists audit logs with pagination (admin only)
// @Summary List audit logs
// @Description Get a paginated list of audit logs, newest first (admin only)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(50)
// @Param user_id query int false "Filter by user ID"
// @Param action query string false "Filter by action"
// @Success 200 {object} AuditLogPage
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden - admin only"
// @Router /admin/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := 1
	limit := 50

	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	filter := repository.AuditFilter{
		Action: query.Get("action"),
		Limit:  uint64(limit),
		Offset: uint64((page - 1) * limit),
	}
	if userIDStr := query.Get("user_id"); userIDStr != "" {
		userID, err := strconv.ParseUint(userIDStr, 10, 32)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid user_id")
			return
		}
		uid := uint(userID)
		filter.UserID = &uid
	}

	logs, total, err := h.audit.List(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to retrieve audit logs")
		return
	}

	respondWithJSON(w, http.StatusOK, AuditLogPage{
		Logs:       logs,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	})
}

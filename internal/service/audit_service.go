package service

import (
	"context"
	"log/slog"

	"esg-assess/internal/models"
	"esg-assess/internal/repository"
)

// AuditService handles audit logging
type AuditService struct {
	auditRepo auditStore
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo auditStore) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Log records an audit entry. Failures are logged and never fail the caller.
func (s *AuditService) Log(ctx context.Context, entry *models.AuditLog) {
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		slog.Error("Failed to write audit log", "action", entry.Action, "error", err)
	}
}

// List returns audit entries newest first with the total count
func (s *AuditService) List(ctx context.Context, f repository.AuditFilter) ([]models.AuditLog, int, error) {
	return s.auditRepo.List(ctx, f)
}

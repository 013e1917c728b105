package middleware

import (
	"context"
	"net/http"

	"esg-assess/internal/models"
)

// auditLogger persists audit entries without failing the request
type auditLogger interface {
	Log(ctx context.Context, entry *models.AuditLog)
}

// AuditMiddleware records state-changing actions
type AuditMiddleware struct {
	audit auditLogger
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(audit auditLogger) *AuditMiddleware {
	return &AuditMiddleware{audit: audit}
}

// Log records action on resource once the handler has succeeded. Rejected
// requests are not audited.
func (m *AuditMiddleware) Log(action, resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			if wrapped.statusCode >= http.StatusBadRequest {
				return
			}

			var userID *uint
			if id, ok := GetUserID(r); ok {
				userID = &id
			}
			details := r.Method + " " + r.URL.Path
			if email, ok := GetUserEmail(r); ok {
				details += " by " + email
			}
			if id := GetRequestID(r); id != "" {
				details += " request_id=" + id
			}

			m.audit.Log(context.WithoutCancel(r.Context()), &models.AuditLog{
				UserID:    userID,
				Action:    action,
				Resource:  resource,
				Details:   details,
				IPAddress: getIP(r),
				UserAgent: r.UserAgent(),
			})
		})
	}
}

// LogAction records an action outside of a request chain, such as a login
// where the user is only known after the handler ran
func (m *AuditMiddleware) LogAction(r *http.Request, userID *uint, action, resource, details string) {
	m.audit.Log(context.WithoutCancel(r.Context()), &models.AuditLog{
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		Details:   details,
		IPAddress: getIP(r),
		UserAgent: r.UserAgent(),
	})
}

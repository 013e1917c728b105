package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"esg-assess/internal/models"
)

// userLookup loads the account behind an access token
type userLookup interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// AdminMiddleware restricts routes to administrators. The flag is read from
// the database on every request so revoking it takes effect immediately.
type AdminMiddleware struct {
	users userLookup
}

// NewAdminMiddleware creates a new admin middleware
func NewAdminMiddleware(users userLookup) *AdminMiddleware {
	return &AdminMiddleware{users: users}
}

// RequireAdmin rejects callers that are not active administrators
func (m *AdminMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "User not authenticated")
			return
		}

		user, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			slog.Warn("Admin check failed", "user_id", userID, "error", err)
			respondWithError(w, http.StatusForbidden, "Insufficient permissions")
			return
		}
		if !user.IsActive || !user.IsAdmin {
			respondWithError(w, http.StatusForbidden, "Insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}

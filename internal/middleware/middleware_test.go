package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esg-assess/internal/config"
	"esg-assess/internal/models"
	"esg-assess/internal/testutil"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuthenticate(t *testing.T) {
	helper := testutil.NewAuthHelper(t)
	mw := NewAuthMiddleware(helper.Service)
	user := &models.User{ID: 7, Email: "owner@example.com"}

	var gotID uint
	var gotEmail string
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserID(r)
		gotEmail, _ = GetUserEmail(r)
	}))

	t.Run("valid token", func(t *testing.T) {
		rec := testutil.NewTestResponse()
		handler.ServeHTTP(rec, helper.CreateAuthenticatedRequest(t, http.MethodGet, "/", user))
		rec.AssertStatus(t, http.StatusOK)
		assert.Equal(t, uint(7), gotID)
		assert.Equal(t, "owner@example.com", gotEmail)
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := testutil.NewTestResponse()
			handler.ServeHTTP(rec, req)
			rec.AssertStatus(t, http.StatusUnauthorized)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}

	t.Run("token from another key", func(t *testing.T) {
		other := testutil.NewAuthHelper(t)
		rec := testutil.NewTestResponse()
		handler.ServeHTTP(rec, other.CreateAuthenticatedRequest(t, http.MethodGet, "/", user))
		rec.AssertStatus(t, http.StatusUnauthorized)
	})
}

type fakeUsers map[uint]*models.User

func (f fakeUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func TestRequireAdmin(t *testing.T) {
	users := fakeUsers{
		1: {ID: 1, IsActive: true, IsAdmin: true},
		2: {ID: 2, IsActive: true},
		3: {ID: 3, IsActive: false, IsAdmin: true},
	}
	handler := NewAdminMiddleware(users).RequireAdmin(okHandler)

	tests := []struct {
		name   string
		userID uint
		auth   bool
		want   int
	}{
		{"admin", 1, true, http.StatusOK},
		{"regular user", 2, true, http.StatusForbidden},
		{"inactive admin", 3, true, http.StatusForbidden},
		{"unknown user", 9, true, http.StatusForbidden},
		{"anonymous", 0, false, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.auth {
				req = req.WithContext(WithUser(req.Context(), tt.userID, ""))
			}
			rec := testutil.NewTestResponse()
			handler.ServeHTTP(rec, req)
			rec.AssertStatus(t, tt.want)
		})
	}
}

type recordingAudit struct {
	entries []*models.AuditLog
}

func (a *recordingAudit) Log(_ context.Context, entry *models.AuditLog) {
	a.entries = append(a.entries, entry)
}

func TestAuditLog(t *testing.T) {
	audit := &recordingAudit{}
	mw := NewAuditMiddleware(audit)

	handler := Chain(okHandler, RequestID, mw.Log("assessment.submit", "assessment"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", nil)
	req = req.WithContext(WithUser(req.Context(), 4, "x@example.com"))
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.Header.Set("X-Request-ID", "req-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, audit.entries, 1)
	e := audit.entries[0]
	assert.Equal(t, "assessment.submit", e.Action)
	assert.Equal(t, "assessment", e.Resource)
	require.NotNil(t, e.UserID)
	assert.Equal(t, uint(4), *e.UserID)
	assert.Equal(t, "203.0.113.9", e.IPAddress)
	assert.Equal(t, "POST /api/v1/assessments by x@example.com request_id=req-1", e.Details)

	failing := mw.Log("assessment.submit", "assessment")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	failing.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Len(t, audit.entries, 1, "failed requests are not audited")
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc", seen)
}

func TestLoggingMiddlewarePassesThrough(t *testing.T) {
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}

func TestCORS(t *testing.T) {
	cfg := &config.CORSConfig{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	handler := NewCORSMiddleware(cfg).Handler(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/assessments", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "300", rec.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(&config.RateLimitConfig{Enabled: true, Requests: 2, Duration: time.Minute})
	t.Cleanup(rl.Stop)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	handler := rl.Limit(okHandler)

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("192.0.2.1"))
	assert.Equal(t, http.StatusOK, call("192.0.2.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("192.0.2.1"))
	assert.Equal(t, http.StatusOK, call("192.0.2.2"))

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusOK, call("192.0.2.1"))
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(okHandler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, swaggerCSP, rec.Header().Get("Content-Security-Policy"))
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	Chain(okHandler, mark("a"), mark("b"), mark("c")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

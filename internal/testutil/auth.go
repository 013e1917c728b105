package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"esg-assess/internal/auth"
	"esg-assess/internal/config"
	"esg-assess/internal/models"
)

// AuthHelper issues access tokens for tests
type AuthHelper struct {
	Service *auth.Service
}

// NewAuthHelper creates an auth helper with a fresh signing key
func NewAuthHelper(t *testing.T) *AuthHelper {
	t.Helper()

	key, err := auth.GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate signing key: %v", err)
	}
	pemKey, err := auth.EncodePrivateKey(key)
	if err != nil {
		t.Fatalf("Failed to encode signing key: %v", err)
	}

	return &AuthHelper{Service: auth.NewService(&config.JWTConfig{Secret: string(pemKey), Expiration: time.Hour})}
}

// AddAuthHeader adds a bearer token for user to the request
func (h *AuthHelper) AddAuthHeader(t *testing.T, req *http.Request, user *models.User) {
	t.Helper()

	token, _, err := h.Service.GenerateToken(user.ID, user.Email)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

// CreateAuthenticatedRequest creates a request with auth header
func (h *AuthHelper) CreateAuthenticatedRequest(t *testing.T, method, url string, user *models.User) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, url, nil)
	h.AddAuthHeader(t, req, user)
	return req
}

// TestResponse holds response data for assertions
type TestResponse struct {
	*httptest.ResponseRecorder
}

// NewTestResponse creates a new test response recorder
func NewTestResponse() *TestResponse {
	return &TestResponse{ResponseRecorder: httptest.NewRecorder()}
}

// AssertStatus asserts the HTTP status code
func (r *TestResponse) AssertStatus(t *testing.T, expected int) {
	t.Helper()

	if r.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, r.Code, r.Body.String())
	}
}

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"esg-assess/internal/middleware"
	"esg-assess/internal/models"
	"esg-assess/internal/service"
	"esg-assess/pkg/validator"
)

type authAPI interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	GetUser(ctx context.Context, userID uint) (*models.User, error)
}

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService authAPI
	auditMw     *middleware.AuditMiddleware
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService authAPI, auditMw *middleware.AuditMiddleware) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		auditMw:     auditMw,
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register handles user registration
// @Summary Register a new user
// @Description Create a new user account. The first account becomes an administrator.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration details"
// @Success 201 {object} models.User "Registered user"
// @Failure 400 {object} validationResponse "Invalid request"
// @Failure 403 {object} map[string]string "Registration disabled"
// @Failure 409 {object} map[string]string "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = validator.SanitizeEmail(req.Email)
	req.FirstName = validator.SanitizeString(req.FirstName)
	req.LastName = validator.SanitizeString(req.LastName)

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithServiceError(w, r, err, "Registration failed")
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		respondWithServiceError(w, r, err, "Registration failed")
		return
	}

	slog.Info("User registered", "user_id", user.ID)
	h.auditMw.LogAction(r, &user.ID, AuditActionRegister, "users", "User registered")
	respondWithJSON(w, http.StatusCreated, user)
}

// Login handles user login
// @Summary Log in
// @Description Exchange email and password for an access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} service.LoginResult "Access token and user"
// @Failure 400 {object} validationResponse "Invalid request"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 403 {object} map[string]string "Account inactive"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = validator.SanitizeEmail(req.Email)

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithServiceError(w, r, err, "Login failed")
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.auditMw.LogAction(r, nil, AuditActionLoginFailed, "users", "Login failed for "+req.Email)
		respondWithServiceError(w, r, err, "Login failed")
		return
	}

	h.auditMw.LogAction(r, &result.User.ID, AuditActionLogin, "users", "User logged in")
	respondWithJSON(w, http.StatusOK, result)
}

// Me returns the authenticated user
// @Summary Get current user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User "Current user"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to load user")
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

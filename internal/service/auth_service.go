package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"esg-assess/internal/auth"
	"esg-assess/internal/models"
	"esg-assess/internal/repository"
)

// AuthService handles registration and login
type AuthService struct {
	userRepo           userStore
	authSvc            *auth.Service
	enableRegistration bool
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo userStore, authSvc *auth.Service, enableRegistration bool) *AuthService {
	return &AuthService{
		userRepo:           userRepo,
		authSvc:            authSvc,
		enableRegistration: enableRegistration,
	}
}

// LoginResult is a successful login
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Register registers a new user. The first account becomes an administrator.
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
	if !s.enableRegistration {
		return nil, ErrRegistrationDisabled
	}

	passwordHash, err := s.authSvc.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, fmt.Errorf("email already registered: %w", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	count, err := s.userRepo.CountAll(ctx)
	if err != nil {
		slog.Error("Failed to count users", "error", err)
	} else if count == 1 {
		if err := s.userRepo.SetAdmin(ctx, user.ID, true); err != nil {
			slog.Error("Failed to grant admin rights to first user", "user_id", user.ID, "error", err)
		} else {
			user.IsAdmin = true
			slog.Info("First user registered as administrator", "user_id", user.ID)
		}
	}

	return user, nil
}

// Login checks the credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.authSvc.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	token, expiresAt, err := s.authSvc.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("Failed to record last login", "user_id", user.ID, "error", err)
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// GetUser returns a user by ID
func (s *AuthService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

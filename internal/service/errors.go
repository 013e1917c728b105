package service

import (
	"errors"
	"fmt"

	"esg-assess/internal/repository"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrConflict             = errors.New("conflict")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserInactive         = errors.New("user account is inactive")
	ErrNoProfile            = errors.New("business profile required")
	ErrRegistrationDisabled = errors.New("registration is disabled")
)

// notFound translates a repository miss into ErrNotFound naming the resource
func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

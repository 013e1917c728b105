package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"esg-assess/internal/config"
)

func newTestService(t *testing.T, expiration time.Duration) *Service {
	t.Helper()

	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	pemKey, err := EncodePrivateKey(key)
	if err != nil {
		t.Fatalf("Failed to encode key: %v", err)
	}
	return NewService(&config.JWTConfig{Secret: string(pemKey), Expiration: expiration})
}

func TestHashPassword(t *testing.T) {
	svc := newTestService(t, time.Hour)

	password := "testpassword123"
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if hash == "" {
		t.Error("Hash should not be empty")
	}
	if hash == password {
		t.Error("Hash should not equal the original password")
	}
}

func TestVerifyPassword(t *testing.T) {
	svc := newTestService(t, time.Hour)

	hash, err := svc.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if err := svc.VerifyPassword(hash, "testpassword123"); err != nil {
		t.Errorf("Should verify correct password, got error: %v", err)
	}
	if err := svc.VerifyPassword(hash, "wrongpassword"); err == nil {
		t.Error("Should not verify incorrect password")
	}
}

func TestValidateToken(t *testing.T) {
	svc := newTestService(t, time.Hour)

	token, expiresAt, err := svc.GenerateToken(1, "owner@example.com")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Errorf("Expiry %v should be in the future", expiresAt)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims.UserID != 1 {
		t.Errorf("Expected user ID 1, got %d", claims.UserID)
	}
	if claims.Email != "owner@example.com" {
		t.Errorf("Expected email owner@example.com, got %s", claims.Email)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	svc := newTestService(t, -time.Hour)

	token, _, err := svc.GenerateToken(1, "owner@example.com")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateTokenFromOtherKey(t *testing.T) {
	issuer := newTestService(t, time.Hour)
	verifier := newTestService(t, time.Hour)

	token, _, err := issuer.GenerateToken(1, "owner@example.com")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := verifier.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestParsePrivateKeySingleLine(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	pemKey, err := EncodePrivateKey(key)
	if err != nil {
		t.Fatalf("Failed to encode key: %v", err)
	}

	singleLine := strings.ReplaceAll(string(pemKey), "\n", `\n`)
	parsed, err := ParsePrivateKey(singleLine)
	if err != nil {
		t.Fatalf("Failed to parse single line key: %v", err)
	}
	if !parsed.Equal(key) {
		t.Error("Parsed key differs from the original")
	}

	if _, err := ParsePrivateKey("not-a-key"); err == nil {
		t.Error("Should reject a secret without PEM block")
	}
}

func TestGenerateRandomToken(t *testing.T) {
	token1, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("Failed to generate random token: %v", err)
	}
	token2, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("Failed to generate second random token: %v", err)
	}

	if token1 == "" {
		t.Error("Token should not be empty")
	}
	if token1 == token2 {
		t.Error("Random tokens should be different")
	}
}

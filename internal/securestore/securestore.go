// Package securestore seals chat transcript content before it is written to
// the database and opens it again on the way out.
package securestore

import (
	"context"
	"fmt"

	"esg-assess/internal/vault"
)

// Store seals and opens message content. The context string ties a
// ciphertext to its owner, typically the chat session ID.
type Store interface {
	Seal(ctx context.Context, keyContext, plaintext string) (content string, encrypted bool, err error)
	Open(ctx context.Context, keyContext, content string, encrypted bool) (string, error)
}

// transit is the part of the Vault client the store needs
type transit interface {
	EnsureKey(ctx context.Context, keyName string) error
	Encrypt(ctx context.Context, keyName string, plaintext []byte, keyContext string) (string, error)
	Decrypt(ctx context.Context, keyName, ciphertext, keyContext string) ([]byte, error)
}

// TransitStore encrypts content with a Vault transit key
type TransitStore struct {
	client  transit
	keyName string
}

var _ Store = (*TransitStore)(nil)

// NewTransitStore creates the key if needed and returns a store using it
func NewTransitStore(ctx context.Context, client *vault.Client, keyName string) (*TransitStore, error) {
	return newTransitStore(ctx, client, keyName)
}

func newTransitStore(ctx context.Context, client transit, keyName string) (*TransitStore, error) {
	if err := client.EnsureKey(ctx, keyName); err != nil {
		return nil, fmt.Errorf("failed to prepare transit key: %w", err)
	}
	return &TransitStore{client: client, keyName: keyName}, nil
}

// Seal encrypts plaintext
func (s *TransitStore) Seal(ctx context.Context, keyContext, plaintext string) (string, bool, error) {
	ciphertext, err := s.client.Encrypt(ctx, s.keyName, []byte(plaintext), keyContext)
	if err != nil {
		return "", false, err
	}
	return ciphertext, true, nil
}

// Open decrypts content that was sealed. Content stored before encryption was
// enabled is returned unchanged.
func (s *TransitStore) Open(ctx context.Context, keyContext, content string, encrypted bool) (string, error) {
	if !encrypted {
		return content, nil
	}
	plaintext, err := s.client.Decrypt(ctx, s.keyName, content, keyContext)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// Plain stores content as is. It is used when Vault is disabled.
type Plain struct{}

var _ Store = Plain{}

// Seal returns plaintext unchanged
func (Plain) Seal(_ context.Context, _, plaintext string) (string, bool, error) {
	return plaintext, false, nil
}

// Open returns content unchanged. Encrypted content cannot be read without
// Vault and yields an error.
func (Plain) Open(_ context.Context, _, content string, encrypted bool) (string, error) {
	if encrypted {
		return "", fmt.Errorf("message is encrypted but vault is disabled")
	}
	return content, nil
}

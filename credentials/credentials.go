// Package credentials stores API secrets for the lingomeet CLI in the system
// keyring (macOS Keychain, Windows Credential Manager, Linux Secret Service).
//
// For CI and headless environments every secret can be supplied through an
// environment variable instead: LINGOMEET_OPENAI_API_KEY for the
// "openai-api-key" secret, and so on.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// keyringService is the service name used in the system keyring.
const keyringService = "lingomeet"

// Well-known secret names.
const (
	SecretOpenAIKey = "openai-api-key"
)

// ErrNotStored is returned when the requested secret is absent.
var ErrNotStored = errors.New("secret not stored")

// Store reads and writes named secrets.
type Store struct {
	service string
}

// NewStore returns a store backed by the system keyring.
func NewStore() *Store {
	return &Store{service: keyringService}
}

// envName maps a secret name to its environment override:
// "openai-api-key" -> "LINGOMEET_OPENAI_API_KEY".
func envName(name string) string {
	return "LINGOMEET_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// Get returns the named secret. The environment override wins over the
// keyring, so CI jobs never need keyring access.
func (s *Store) Get(name string) (string, error) {
	if v := os.Getenv(envName(name)); v != "" {
		return v, nil
	}

	v, err := keyring.Get(s.service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotStored
	}
	if err != nil {
		return "", fmt.Errorf("reading secret %s from keyring: %w", name, err)
	}
	return v, nil
}

// Set stores the named secret in the keyring.
func (s *Store) Set(name, value string) error {
	if value == "" {
		return fmt.Errorf("secret %s cannot be empty", name)
	}
	if err := keyring.Set(s.service, name, value); err != nil {
		return fmt.Errorf("storing secret %s in keyring: %w", name, err)
	}
	return nil
}

// Delete removes the named secret. Deleting an absent secret is not an
// error.
func (s *Store) Delete(name string) error {
	err := keyring.Delete(s.service, name)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("deleting secret %s from keyring: %w", name, err)
	}
	return nil
}

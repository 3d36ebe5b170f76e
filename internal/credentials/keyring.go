// Package credentials stores the bearer token for a signed-in session.
// The OS keyring is preferred; an environment variable can override it
// for headless use. The persisted auth slot remains the fallback so a
// missing keyring never breaks a session.
package credentials

import (
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name for all timekeep keyring entries
const KeyringService = "timekeep"

// Store saves a token in the OS keyring under the account's email
func Store(email, token string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	if err := keyring.Set(KeyringService, email, token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// Get retrieves a token from the OS keyring
func Get(email string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("email cannot be empty")
	}

	token, err := keyring.Get(KeyringService, email)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", fmt.Errorf("no token found in keyring for %q", email)
		}
		return "", fmt.Errorf("failed to read token from keyring: %w", err)
	}
	return token, nil
}

// Delete removes a token from the OS keyring
func Delete(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	err := keyring.Delete(KeyringService, email)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the keyring is accessible on this host
func IsAvailable() bool {
	const probeUser = "__timekeep_probe__"
	if err := keyring.Set(KeyringService, probeUser, "probe"); err != nil {
		return false
	}
	_ = keyring.Delete(KeyringService, probeUser)
	return true
}

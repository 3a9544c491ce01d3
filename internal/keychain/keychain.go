// Package keychain keeps bot tokens in the OS keychain so config files do
// not have to hold them.
package keychain

import (
	"errors"
	"fmt"

	"github.com/keepmind9/icqbot/pkg/constants"
	"github.com/zalando/go-keyring"
)

// ErrNotFound is returned when no token is stored for an account
var ErrNotFound = errors.New("no token stored in keychain")

// Get retrieves the token stored for account
func Get(account string) (string, error) {
	token, err := keyring.Get(constants.KeychainService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w for account %q", ErrNotFound, account)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read keychain: %w", err)
	}
	return token, nil
}

// Set stores token for account, replacing any previous value
func Set(account, token string) error {
	if err := keyring.Set(constants.KeychainService, account, token); err != nil {
		return fmt.Errorf("failed to write keychain: %w", err)
	}
	return nil
}

// Delete removes the token stored for account
func Delete(account string) error {
	err := keyring.Delete(constants.KeychainService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w for account %q", ErrNotFound, account)
	}
	if err != nil {
		return fmt.Errorf("failed to delete from keychain: %w", err)
	}
	return nil
}

// Package credential keeps the CampHub API token in the system keyring.
package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
)

const (
	serviceName = "camphub"

	// TokenKey is the keyring entry holding the bearer token.
	TokenKey = "camphub-api-token"

	// TokenEnv overrides the keyring when set.
	TokenEnv = "CAMPHUB_TOKEN"
)

// ErrNoToken is returned when neither the environment nor the keyring
// hold a token.
var ErrNoToken = errors.New("no API token configured")

// Vault reads and writes the token in a keyring.
type Vault struct {
	ring keyring.Keyring
}

// Open returns a Vault backed by the first available system keyring.
func Open() (*Vault, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/camphub/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("camphub-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Vault{ring: ring}, nil
}

// NewVault wraps an existing keyring.
func NewVault(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// Token returns the stored token or ErrNoToken.
func (v *Vault) Token() (string, error) {
	item, err := v.ring.Get(TokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", TokenKey, err)
	}
	return string(item.Data), nil
}

// SetToken stores token, replacing any previous value.
func (v *Vault) SetToken(token string) error {
	err := v.ring.Set(keyring.Item{
		Key:   TokenKey,
		Data:  []byte(strings.TrimSpace(token)),
		Label: "CampHub API token",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", TokenKey, err)
	}
	return nil
}

// ClearToken removes the stored token. A missing token is not an error.
func (v *Vault) ClearToken() error {
	err := v.ring.Remove(TokenKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", TokenKey, err)
	}
	return nil
}

// ResolveToken prefers $CAMPHUB_TOKEN and falls back to the vault, which
// may be nil when no keyring could be opened.
func ResolveToken(v *Vault) (string, error) {
	if tok := strings.TrimSpace(os.Getenv(TokenEnv)); tok != "" {
		return tok, nil
	}
	if v == nil {
		return "", ErrNoToken
	}
	return v.Token()
}

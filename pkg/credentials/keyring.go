package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringSource reads the access token from the OS keyring under
// service/AccessTokenKey.
type KeyringSource struct {
	service string
}

func NewKeyringSource(service string) (*KeyringSource, error) {
	service = strings.TrimSpace(service)
	if service == "" {
		return nil, errors.New("keyring token source requires a service name")
	}
	return &KeyringSource{service: service}, nil
}

func (k *KeyringSource) AccessToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	token, err := keyring.Get(k.service, AccessTokenKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read keyring %s: %w", k.service, err)
	}
	return token, nil
}

// Store writes the token to the keyring. Only the CLI token command writes credentials.
func (k *KeyringSource) Store(token string) error {
	if err := keyring.Set(k.service, AccessTokenKey, token); err != nil {
		return fmt.Errorf("write keyring %s: %w", k.service, err)
	}
	return nil
}

// Clear removes the token from the keyring; a missing entry is not an error.
func (k *KeyringSource) Clear() error {
	err := keyring.Delete(k.service, AccessTokenKey)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete keyring %s: %w", k.service, err)
	}
	return nil
}

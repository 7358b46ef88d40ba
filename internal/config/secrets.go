package config

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "clipshr-proxy"

// SaveProxyPassword stores the proxy password for user in the OS keyring.
func SaveProxyPassword(user, password string) error {
	if user == "" {
		return errors.New("proxy username is required")
	}
	if err := keyring.Set(keyringService, user, password); err != nil {
		return fmt.Errorf("error saving proxy password: %v", err)
	}
	return nil
}

// ProxyPassword returns the stored password, or "" when none is stored.
func ProxyPassword(user string) (string, error) {
	if user == "" {
		return "", nil
	}
	password, err := keyring.Get(keyringService, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("error reading proxy password: %v", err)
	}
	return password, nil
}

func DeleteProxyPassword(user string) error {
	err := keyring.Delete(keyringService, user)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("error deleting proxy password: %v", err)
	}
	return nil
}

package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenStore persists the session token between client runs. The token is the
// only client-side session state; clearing the file is a complete logout.
type TokenStore struct {
	path string
}

// NewTokenStore uses the given file path, or a default under the user config
// directory when path is empty.
func NewTokenStore(path string) (*TokenStore, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		path = filepath.Join(dir, "pet-market", "token")
	}
	return &TokenStore{path: path}, nil
}

// Load returns the stored token, or empty when none is stored.
func (s *TokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *TokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// Clear removes the stored token; a missing file is not an error.
func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

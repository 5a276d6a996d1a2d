package session

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

const keyringService = "gdmirror"

// TokenStore caches OAuth tokens in the system keyring, falling back to a
// plain file when no keyring is available.
type TokenStore struct {
	useKeyring bool
}

// NewTokenStore creates a token store, probing keyring availability
func NewTokenStore() *TokenStore {
	return &TokenStore{useKeyring: keyringAvailable()}
}

func keyringAvailable() bool {
	probe := "gdmirror-probe"
	if err := keyring.Set(keyringService, probe, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(keyringService, probe)
	return true
}

// Name returns the active backend name
func (s *TokenStore) Name() string {
	if s.useKeyring {
		return "system-keyring"
	}
	return "plain-file"
}

// Save stores a token for an account key
func (s *TokenStore) Save(key string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	if s.useKeyring {
		return keyring.Set(keyringService, key, string(data))
	}
	return os.WriteFile(tokenFilePath(key), data, 0600)
}

// Load retrieves a token for an account key
func (s *TokenStore) Load(key string) (*oauth2.Token, error) {
	var data []byte
	if s.useKeyring {
		value, err := keyring.Get(keyringService, key)
		if err != nil {
			return nil, err
		}
		data = []byte(value)
	} else {
		var err error
		data, err = os.ReadFile(tokenFilePath(key))
		if err != nil {
			return nil, err
		}
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Delete removes a cached token
func (s *TokenStore) Delete(key string) error {
	if s.useKeyring {
		return keyring.Delete(keyringService, key)
	}
	err := os.Remove(tokenFilePath(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func tokenFilePath(key string) string {
	return fmt.Sprintf("token_%s.json", key)
}

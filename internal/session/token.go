package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// TokenStore persists the opaque session token across runs
type TokenStore interface {
	Token() string
	Save(token string) error
	Clear() error
}

type tokenFile struct {
	Token string `json:"token"`
}

// FileTokenStore keeps the token in a JSON file under the user's home
// directory (~/.kitabu/session.json by default). Safe for concurrent use:
// the HTTP client reads the token from command goroutines while login and
// logout rewrite it.
type FileTokenStore struct {
	mu    sync.Mutex
	path  string
	token string
}

// DefaultTokenPath returns ~/.kitabu/session.json
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".kitabu", "session.json"), nil
}

// NewFileTokenStore loads any existing token from path. A missing or
// unreadable file is treated as "no token".
func NewFileTokenStore(path string) *FileTokenStore {
	s := &FileTokenStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var f tokenFile
	if err := json.Unmarshal(data, &f); err != nil {
		return s
	}
	s.token = f.Token
	return s
}

// Token returns the current token, empty if none
func (s *FileTokenStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Save persists a new token
func (s *FileTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenFile{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Clear forgets the token and removes the file
func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

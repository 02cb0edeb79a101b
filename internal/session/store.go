package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/studiowebux/fxdash/internal/config"
	"github.com/studiowebux/fxdash/internal/types"
)

// Store persists the session across process restarts.
// Load methods return (nil, nil) when the slot is empty.
type Store interface {
	LoadTokens() (*types.AuthTokens, error)
	SaveTokens(tokens types.AuthTokens) error
	LoadUser() (*types.User, error)
	SaveUser(user types.User) error
	Clear() error
}

// FileStore keeps the two slots as JSON files
type FileStore struct {
	tokensPath string
	userPath   string
}

// NewFileStore creates a store backed by the given slot files
func NewFileStore(tokensPath, userPath string) *FileStore {
	return &FileStore{tokensPath: tokensPath, userPath: userPath}
}

// DefaultFileStore uses the slot files under the config directory
func DefaultFileStore() *FileStore {
	return NewFileStore(config.TokensFile, config.UserFile)
}

// LoadTokens reads the token slot
func (s *FileStore) LoadTokens() (*types.AuthTokens, error) {
	var tokens types.AuthTokens
	ok, err := readJSON(s.tokensPath, &tokens)
	if err != nil || !ok {
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("token record has no access token")
	}
	return &tokens, nil
}

// SaveTokens writes the token slot
func (s *FileStore) SaveTokens(tokens types.AuthTokens) error {
	return writeJSON(s.tokensPath, tokens)
}

// LoadUser reads the identity slot
func (s *FileStore) LoadUser() (*types.User, error) {
	var user types.User
	ok, err := readJSON(s.userPath, &user)
	if err != nil || !ok {
		return nil, err
	}
	return &user, nil
}

// SaveUser writes the identity slot
func (s *FileStore) SaveUser(user types.User) error {
	return writeJSON(s.userPath, user)
}

// Clear removes both slots
func (s *FileStore) Clear() error {
	var errs []error
	for _, path := range []string{s.tokensPath, s.userPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return true, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// MemoryStore is an in-process Store, used when nothing should touch disk
type MemoryStore struct {
	mu     sync.Mutex
	tokens *types.AuthTokens
	user   *types.User
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadTokens() (*types.AuthTokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		return nil, nil
	}
	t := *s.tokens
	return &t, nil
}

func (s *MemoryStore) SaveTokens(tokens types.AuthTokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = &tokens
	return nil
}

func (s *MemoryStore) LoadUser() (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, nil
	}
	u := *s.user
	return &u, nil
}

func (s *MemoryStore) SaveUser(user types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = nil
	s.user = nil
	return nil
}

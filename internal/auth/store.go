package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"

	"shotcraft/pkg/logger"
)

const (
	// keyringService is the service name under which the token is stored.
	keyringService = "shotcraft"
	// keyringUser is the keyring account key for the bearer token.
	keyringUser = "access-token"
	// tokenFileName is the fallback token file inside the shotcraft home dir.
	tokenFileName = "access.token"
)

// TokenStore persists the bearer token across process restarts.
//
// Implementations must make writes visible to immediately subsequent reads, and
// Clear must be idempotent.
type TokenStore interface {
	// Get returns the current token, or ok=false when none is stored.
	Get() (token string, ok bool)
	// Set persists the token.
	Set(token string) error
	// Clear removes the token. Clearing an absent token is a no-op.
	Clear() error
}

// KeyringStore stores the token in the OS keyring, falling back to a 0600 file
// in the shotcraft home directory when no keyring backend is available
// (headless machines, CI).
type KeyringStore struct {
	mu       sync.Mutex
	filePath string

	// useFile is latched on the first keyring failure so that every
	// subsequent operation consistently targets the same backend.
	useFile bool
}

// NewKeyringStore creates a token store rooted at the given home directory.
func NewKeyringStore(home string) *KeyringStore {
	return &KeyringStore{filePath: filepath.Join(home, tokenFileName)}
}

// Get returns the current token, or ok=false when none is stored.
func (s *KeyringStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.useFile {
		token, err := keyring.Get(keyringService, keyringUser)
		if err == nil {
			token = strings.TrimSpace(token)
			return token, token != ""
		}
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false
		}
		s.fallBack(err)
	}
	return s.readFile()
}

// Set persists the token.
func (s *KeyringStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.useFile {
		if err := keyring.Set(keyringService, keyringUser, token); err == nil {
			return nil
		} else {
			s.fallBack(err)
		}
	}
	if err := os.WriteFile(s.filePath, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Clear removes the token. Clearing an absent token is a no-op.
func (s *KeyringStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.useFile {
		err := keyring.Delete(keyringService, keyringUser)
		if err == nil || errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		s.fallBack(err)
	}
	if err := os.Remove(s.filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

func (s *KeyringStore) fallBack(err error) {
	if !s.useFile {
		logger.Debugf("keyring unavailable, using file token store: %v", err)
		s.useFile = true
	}
}

func (s *KeyringStore) readFile() (string, bool) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	return token, token != ""
}

// FileStore is a plain file-backed token store. It is the explicit choice for
// environments where the keyring should never be touched (tests, containers).
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file-backed token store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get returns the current token, or ok=false when none is stored.
func (s *FileStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	return token, token != ""
}

// Set persists the token.
func (s *FileStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Clear removes the token. Clearing an absent token is a no-op.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

package storefront

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Identity is the signed-in account as remembered between runs. Orders and cart
// contents are never persisted with it.
type Identity struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
}

// IdentityStore persists the signed-in identity. Load returns nil, nil when
// nothing is stored.
type IdentityStore interface {
	Load() (*Identity, error)
	Save(Identity) error
	Clear() error
}

// MemoryIdentityStore keeps the identity for the life of the process.
type MemoryIdentityStore struct {
	mu       sync.Mutex
	identity *Identity
}

// NewMemoryIdentityStore returns an empty store.
func NewMemoryIdentityStore() *MemoryIdentityStore {
	return &MemoryIdentityStore{}
}

func (s *MemoryIdentityStore) Load() (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil, nil
	}
	identity := *s.identity
	return &identity, nil
}

func (s *MemoryIdentityStore) Save(identity Identity) error {
	s.mu.Lock()
	s.identity = &identity
	s.mu.Unlock()
	return nil
}

func (s *MemoryIdentityStore) Clear() error {
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()
	return nil
}

// FileIdentityStore keeps the identity in a JSON file so it survives restarts.
type FileIdentityStore struct {
	path string
	mu   sync.Mutex
}

// NewFileIdentityStore stores the identity at path.
func NewFileIdentityStore(path string) *FileIdentityStore {
	return &FileIdentityStore{path: path}
}

func (s *FileIdentityStore) Load() (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read identity: %w", err)
	}
	var identity Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	return &identity, nil
}

// Save writes to a temporary file and renames it over the old one.
func (s *FileIdentityStore) Save(identity Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create identity dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace identity: %w", err)
	}
	return nil
}

func (s *FileIdentityStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove identity: %w", err)
	}
	return nil
}

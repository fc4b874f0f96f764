package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/yukikurage/teamtask/internal/client"
)

const (
	storageKey     = "root"
	storageVersion = 1
)

// Auth is the persisted part of a session.
type Auth struct {
	Token string       `json:"token"`
	User  *client.User `json:"user,omitempty"`
}

// Storage persists auth between runs.
type Storage interface {
	Load() (Auth, error)
	Save(Auth) error
	Clear() error
}

type document struct {
	Key     string `json:"key"`
	Version int    `json:"version"`
	Auth    Auth   `json:"auth"`
}

// FileStorage keeps auth in a JSON file.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load returns empty auth when the file is missing or was written under a
// different key or version.
func (s *FileStorage) Load() (Auth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Auth{}, nil
	}
	if err != nil {
		return Auth{}, fmt.Errorf("read session file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Auth{}, fmt.Errorf("decode session file: %w", err)
	}
	if doc.Key != storageKey || doc.Version != storageVersion {
		return Auth{}, nil
	}
	return doc.Auth, nil
}

func (s *FileStorage) Save(auth Auth) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(document{Key: storageKey, Version: storageVersion, Auth: auth}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

func (s *FileStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// MemoryStorage keeps auth in process.
type MemoryStorage struct {
	mu   sync.Mutex
	auth Auth
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Load() (Auth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth, nil
}

func (s *MemoryStorage) Save(auth Auth) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = auth
	return nil
}

func (s *MemoryStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = Auth{}
	return nil
}

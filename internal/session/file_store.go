package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileStore keeps the session in a YAML file readable only by the current user
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath returns $HOME/.config/jifmactl/session.yaml
func DefaultFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "session.yaml"
	}
	return filepath.Join(home, ".config", "jifmactl", "session.yaml")
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

type fileSession struct {
	Token string         `yaml:"jifma_token"`
	User  map[string]any `yaml:"jifma_user"`
}

// Load implements Store
func (s *FileStore) Load(ctx context.Context) (string, map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var fs fileSession
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return "", nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return fs.Token, fs.User, nil
}

// Save implements Store. The file is replaced atomically so token and profile never
// disagree on disk.
func (s *FileStore) Save(ctx context.Context, token string, user map[string]any) error {
	data, err := yaml.Marshal(fileSession{Token: token, User: user})
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// Clear implements Store
func (s *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", s.path, err)
	}
	return nil
}

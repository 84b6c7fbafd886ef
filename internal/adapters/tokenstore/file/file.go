package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"media-pipeline/internal/core/domain"
	"os"
	"path/filepath"
	"sync"
)

// Store keeps the credential in a json file readable only by the owner
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a Store writing to path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the credential, domain.ErrNotAuthenticated when none was saved
func (s *Store) Load(ctx context.Context) (domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Credential{}, domain.ErrNotAuthenticated
		}
		return domain.Credential{}, fmt.Errorf("failed to read credential file: %w", err)
	}

	var cred domain.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return domain.Credential{}, fmt.Errorf("failed to decode credential file: %w", err)
	}
	if cred.IsZero() {
		return domain.Credential{}, domain.ErrNotAuthenticated
	}
	return cred, nil
}

// Save replaces the stored credential atomically
func (s *Store) Save(ctx context.Context, cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create credential dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credential-*")
	if err != nil {
		return fmt.Errorf("failed to create temp credential file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credential: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close credential file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("failed to chmod credential file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace credential file: %w", err)
	}
	return nil
}

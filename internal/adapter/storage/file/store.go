package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/repository"
)

const (
	appDirName      = "stay-client"
	defaultFileName = "credentials.json"
)

// Store persists a flat string map in a single file. When a passphrase is
// set the file is sealed with a key derived from it.
type Store struct {
	path       string
	passphrase string
	mu         sync.Mutex
}

type StoreConfig struct {
	Path       string
	Passphrase string
}

// DefaultPath is <user config dir>/stay-client/credentials.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(dir, appDirName, defaultFileName), nil
}

func NewStore(cfg StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage dir for %s: %w", path, err)
	}
	return &Store{path: path, passphrase: cfg.Passphrase}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", repository.ErrKeyNotFound
	}
	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.loadForWrite()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	changed := false
	if errors.Is(err, repository.ErrStorageFailed) {
		// Nothing readable to keep; replace the file with an empty one.
		values, err, changed = make(map[string]string), nil, true
	}
	if err != nil {
		return err
	}
	for _, k := range keys {
		if _, ok := values[k]; ok {
			delete(values, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.save(values)
}

// loadForWrite treats a file that cannot be decoded or opened with the
// current passphrase as empty, so the next write replaces it instead of
// failing forever. I/O errors are still returned.
func (s *Store) loadForWrite() (map[string]string, error) {
	values, err := s.load()
	if errors.Is(err, repository.ErrStorageFailed) {
		return make(map[string]string), nil
	}
	return values, err
}

func (s *Store) load() (map[string]string, error) {
	blob, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", repository.ErrStorageUnavailable, s.path, err)
	}
	if len(blob) == 0 {
		return make(map[string]string), nil
	}

	if isSealed(blob) {
		blob, err = open(s.passphrase, blob)
		if err != nil {
			return nil, fmt.Errorf("%w: open sealed %s: %v", repository.ErrStorageFailed, s.path, err)
		}
	}

	values := make(map[string]string)
	if err := json.Unmarshal(blob, &values); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", repository.ErrStorageFailed, s.path, err)
	}
	return values, nil
}

func (s *Store) save(values map[string]string) error {
	blob, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", repository.ErrStorageFailed, err)
	}
	if s.passphrase != "" {
		blob, err = seal(s.passphrase, blob)
		if err != nil {
			return fmt.Errorf("%w: seal: %v", repository.ErrStorageFailed, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return fmt.Errorf("%w: write %s: %v", repository.ErrStorageUnavailable, tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: rename %s: %v", repository.ErrStorageUnavailable, tmp, err)
	}
	return nil
}

package memory

import (
	"context"
	"sync"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/repository"
)

// Store keeps values for the lifetime of the process only.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", repository.ErrKeyNotFound
	}
	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

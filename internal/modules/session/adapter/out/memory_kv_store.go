package out

import (
	"context"
	"sync"

	sessionout "hairly/internal/modules/session/port/out"
	apperrors "hairly/internal/platform/errors"
)

type MemoryKeyValueStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryKeyValueStore() sessionout.KeyValueStore {
	return &MemoryKeyValueStore{values: map[string]string{}}
}

func (s *MemoryKeyValueStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return value, nil
}

func (s *MemoryKeyValueStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryKeyValueStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Package storage provides preference store implementations: a flat
// key-value store in the spirit of engine "player prefs".
package storage

import (
	"context"
	"sync"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
)

// Compile-time interface check.
var _ domain.PrefStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory preference store. Safe for concurrent access.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	log    *logger.Logger
}

// NewMemoryStore creates an empty in-memory preference store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
		log:    log,
	}
}

func (s *MemoryStore) get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStore) set(key, v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Debug("set pref %s=%s", key, v)
	s.values[key] = v
}

// GetFloat returns a float preference or the fallback.
func (s *MemoryStore) GetFloat(ctx context.Context, key string, fallback float64) (float64, error) {
	raw, ok := s.get(key)
	if !ok {
		return fallback, nil
	}
	return decodeFloat(key, raw)
}

// SetFloat stores a float preference.
func (s *MemoryStore) SetFloat(ctx context.Context, key string, v float64) error {
	s.set(key, encodeFloat(v))
	return nil
}

// GetInt returns an int preference or the fallback.
func (s *MemoryStore) GetInt(ctx context.Context, key string, fallback int) (int, error) {
	raw, ok := s.get(key)
	if !ok {
		return fallback, nil
	}
	return decodeInt(key, raw)
}

// SetInt stores an int preference.
func (s *MemoryStore) SetInt(ctx context.Context, key string, v int) error {
	s.set(key, encodeInt(v))
	return nil
}

// GetString returns a string preference or the fallback.
func (s *MemoryStore) GetString(ctx context.Context, key, fallback string) (string, error) {
	raw, ok := s.get(key)
	if !ok {
		return fallback, nil
	}
	return raw, nil
}

// SetString stores a string preference.
func (s *MemoryStore) SetString(ctx context.Context, key, v string) error {
	s.set(key, v)
	return nil
}

// HasKey reports whether a preference is set.
func (s *MemoryStore) HasKey(ctx context.Context, key string) (bool, error) {
	_, ok := s.get(key)
	return ok, nil
}

// Delete removes a preference. Deleting a missing key returns ErrNotFound.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return domain.ErrNotFound
	}
	delete(s.values, key)
	s.log.Debug("deleted pref %s", key)
	return nil
}

// Keys returns every stored key, unordered.
func (s *MemoryStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.values))
	for k := range s.values {
		out = append(out, k)
	}
	return out, nil
}

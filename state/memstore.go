package state

import (
	"fmt"
	"sync"
)

// MemStore is an in-memory Store.
type MemStore struct {
	mu  sync.RWMutex
	cfg *Config
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// LoadConfig returns a copy of the stored config.
func (s *MemStore) LoadConfig() (*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg == nil {
		return nil, ErrConfigNotFound
	}
	c := *s.cfg
	return &c, nil
}

// SaveConfig stores a copy of cfg.
func (s *MemStore) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config", ErrNilParam)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *cfg
	s.cfg = &c
	return nil
}

// Package store persists compiled models.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no model has the requested id.
	ErrNotFound = errors.New("model not found")
	// ErrAlreadyExists is returned when adding a model whose id is taken.
	ErrAlreadyExists = errors.New("model already exists")
)

// ModelStore manages compiled model persistence and retrieval
type ModelStore interface {
	// Add stores a new model. CreatedAt is set when zero.
	Add(ctx context.Context, m *Model) error

	// Get a model by ID
	Get(ctx context.Context, id string) (*Model, error)

	// List all models, oldest first
	List(ctx context.Context) ([]*Model, error)

	// Delete a model
	Delete(ctx context.Context, id string) error
}

// InMemoryModelStore implements ModelStore using an in-memory map.
// Safe for concurrent use.
type InMemoryModelStore struct {
	models map[string]*Model
	mu     sync.RWMutex
}

// NewInMemoryModelStore creates an empty in-memory store
func NewInMemoryModelStore() *InMemoryModelStore {
	return &InMemoryModelStore{
		models: make(map[string]*Model),
	}
}

func (s *InMemoryModelStore) Add(_ context.Context, m *Model) error {
	if m.ID == "" {
		return fmt.Errorf("model has no id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.models[m.ID]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, m.ID)
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	s.models[m.ID] = m.clone()
	return nil
}

func (s *InMemoryModelStore) Get(_ context.Context, id string) (*Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.models[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.clone(), nil
}

func (s *InMemoryModelStore) List(_ context.Context) ([]*Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Model, 0, len(s.models))
	for _, m := range s.models {
		out = append(out, m.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *InMemoryModelStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.models[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.models, id)
	return nil
}

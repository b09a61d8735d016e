package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/sketchtrail/pkg/domain"
)

// Store implements ports.GraphStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.SerializedGraph
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.SerializedGraph),
	}
}

// Save persists a deep copy of the graph in memory.
func (s *Store) Save(ctx context.Context, sessionID string, graph *domain.SerializedGraph) error {
	copied := graph.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = copied
	return nil
}

// Load retrieves a copy of the graph so callers can't mutate the stored one.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.SerializedGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	graph, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return graph.Clone(), nil
}

// Delete removes the graph.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns stored sessions in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}

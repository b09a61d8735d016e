package middleware_test

import (
	"context"
	"sort"

	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string]*domain.SerializedGraph
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.SerializedGraph),
	}
}

func (s *MockStore) Save(ctx context.Context, sessionID string, graph *domain.SerializedGraph) error {
	s.data[sessionID] = graph.Clone()
	return nil
}

func (s *MockStore) Load(ctx context.Context, sessionID string) (*domain.SerializedGraph, error) {
	graph, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return graph.Clone(), nil
}

func (s *MockStore) Delete(ctx context.Context, sessionID string) error {
	delete(s.data, sessionID)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

var _ ports.GraphStore = (*MockStore)(nil)

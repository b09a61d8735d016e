package ports_test

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"

	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/ports"
)

// jsonStore is a minimal GraphStore that round-trips graphs through JSON,
// standing in for a real adapter.
type jsonStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newJSONStore() *jsonStore {
	return &jsonStore{data: make(map[string][]byte)}
}

func (s *jsonStore) Save(_ context.Context, sessionID string, graph *domain.SerializedGraph) error {
	b, err := json.Marshal(graph)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = b
	return nil
}

func (s *jsonStore) Load(_ context.Context, sessionID string) (*domain.SerializedGraph, error) {
	s.mu.Lock()
	b, ok := s.data[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	var g domain.SerializedGraph
	if err := json.Unmarshal(b, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *jsonStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *jsonStore) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func TestGraphStore_Contract(t *testing.T) {
	ports.RunGraphStoreContract(t, newJSONStore())
}

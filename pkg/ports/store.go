package ports

import (
	"context"

	"github.com/aretw0/sketchtrail/pkg/domain"
)

// GraphStore persists serialized provenance graphs so a drawing session can be
// stopped and resumed exactly where it left off.
type GraphStore interface {
	// Save persists the graph for a given session ID.
	Save(ctx context.Context, sessionID string, graph *domain.SerializedGraph) error

	// Load retrieves the graph for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.SerializedGraph, error)

	// Delete removes the graph for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of every stored session.
	List(ctx context.Context) ([]string, error)
}

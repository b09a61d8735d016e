package middleware

import (
	"context"
	"fmt"

	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/ports"
	"github.com/aretw0/sketchtrail/pkg/provenance"
	"github.com/aretw0/sketchtrail/pkg/registry"
)

type validationMiddleware[S any] struct {
	next ports.GraphStore
	reg  *registry.Registry[S]
}

// NewValidationMiddleware creates a middleware that refuses to save or return
// graphs that would not import against reg. Errors wrap domain.ErrMalformedImport.
func NewValidationMiddleware[S any](reg *registry.Registry[S]) Middleware {
	return func(next ports.GraphStore) ports.GraphStore {
		return &validationMiddleware[S]{next: next, reg: reg}
	}
}

func (m *validationMiddleware[S]) Save(ctx context.Context, sessionID string, graph *domain.SerializedGraph) error {
	if err := provenance.Validate(graph, m.reg); err != nil {
		return fmt.Errorf("refusing to save session %q: %w", sessionID, err)
	}
	return m.next.Save(ctx, sessionID, graph)
}

func (m *validationMiddleware[S]) Load(ctx context.Context, sessionID string) (*domain.SerializedGraph, error) {
	graph, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := provenance.Validate(graph, m.reg); err != nil {
		return nil, fmt.Errorf("stored session %q is corrupt: %w", sessionID, err)
	}
	return graph, nil
}

func (m *validationMiddleware[S]) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *validationMiddleware[S]) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

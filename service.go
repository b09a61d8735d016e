package sketchtrail

import (
	"context"
	"fmt"

	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/session"
)

// Service serves persisted drawing sessions. Each call loads the stored graph
// under the session lock, resumes a Session on it and, for writes, saves the
// resulting graph back.
type Service struct {
	manager *session.Manager
	opts    []Option
}

// NewService creates a service over manager. opts configure every Session it opens.
func NewService(manager *session.Manager, opts ...Option) *Service {
	return &Service{manager: manager, opts: opts}
}

// Manager returns the underlying session manager.
func (s *Service) Manager() *session.Manager {
	return s.manager
}

func (s *Service) open(ctx context.Context, sessionID string, stored *domain.SerializedGraph) (*Session, error) {
	sess, err := New(s.opts...)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return sess, nil
	}
	if err := sess.Resume(ctx, stored); err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, err)
	}
	return sess, nil
}

// Do runs fn against the session, starting a fresh one if it does not exist,
// and persists the graph afterwards. Nothing is saved when fn fails.
func (s *Service) Do(ctx context.Context, sessionID string, fn func(ctx context.Context, sess *Session) error) error {
	return s.manager.Update(ctx, sessionID, func(ctx context.Context, current *domain.SerializedGraph) (*domain.SerializedGraph, error) {
		sess, err := s.open(ctx, sessionID, current)
		if err != nil {
			return nil, err
		}
		if err := fn(ctx, sess); err != nil {
			return nil, err
		}
		return sess.Export()
	})
}

// View runs fn against a stored session without saving it.
// It returns domain.ErrSessionNotFound if the session does not exist.
func (s *Service) View(ctx context.Context, sessionID string, fn func(sess *Session) error) error {
	stored, err := s.manager.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	sess, err := s.open(ctx, sessionID, stored)
	if err != nil {
		return err
	}
	return fn(sess)
}

// Export returns the stored graph of a session.
func (s *Service) Export(ctx context.Context, sessionID string) (*domain.SerializedGraph, error) {
	return s.manager.Load(ctx, sessionID)
}

// Import validates sg and stores it as the session's graph, replacing any existing one.
// A malformed graph is rejected with an error wrapping domain.ErrMalformedImport.
func (s *Service) Import(ctx context.Context, sessionID string, sg *domain.SerializedGraph) error {
	sess, err := New(s.opts...)
	if err != nil {
		return err
	}
	if err := sess.Resume(ctx, sg); err != nil {
		return err
	}
	canonical, err := sess.Export()
	if err != nil {
		return err
	}
	return s.manager.Save(ctx, sessionID, canonical)
}

// Delete removes a stored session.
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	return s.manager.Delete(ctx, sessionID)
}

// List returns the IDs of stored sessions.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.manager.List(ctx)
}

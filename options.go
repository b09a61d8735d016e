package sketchtrail

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/sketchtrail/pkg/domain"
)

// Option defines a functional option for configuring a Session.
type Option func(*Session)

// WithLogger sets a custom structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithClock overrides the clock used for node timestamps and move throttling.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithIDGenerator overrides the node ID generator (default: UUIDv7).
func WithIDGenerator(gen func() string) Option {
	return func(s *Session) {
		s.newID = gen
	}
}

// WithMoveInterval sets the minimum spacing between recorded pointer moves.
// Zero records every move.
func WithMoveInterval(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.moveInterval = d
		}
	}
}

// WithInitialState seeds the root of fresh graphs with state instead of an empty canvas.
func WithInitialState(state domain.DrawingState) Option {
	return func(s *Session) {
		c := state.Clone()
		s.initial = &c
	}
}

// WithToolbar sets the tool, color and width used for new strokes.
func WithToolbar(tb Toolbar) Option {
	return func(s *Session) {
		s.toolbar = tb
	}
}

// WithCommitHandler registers the callback receiving a Commit after each completed stroke.
func WithCommitHandler(fn func(context.Context, *domain.Commit)) Option {
	return func(s *Session) {
		s.onCommit = fn
	}
}

// WithMemoization toggles caching of resolved states at durable nodes (default: on).
func WithMemoization(enabled bool) Option {
	return func(s *Session) {
		s.memoize = enabled
	}
}

package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aretw0/sketchtrail"
	"github.com/aretw0/sketchtrail/internal/logging"
)

// Runner applies a stream of events to one stored session.
type Runner struct {
	service *sketchtrail.Service
	logger  *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a Runner over service.
func New(service *sketchtrail.Service, opts ...Option) *Runner {
	r := &Runner{service: service, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads events from h until the input ends or ctx is cancelled.
// Invalid events are reported on the output and skipped; store failures stop the loop.
func (r *Runner) Run(ctx context.Context, sessionID string, h *JSONHandler) error {
	r.logger.Debug("runner started", "session_id", sessionID)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ev, err := h.Input()
		if errors.Is(err, io.EOF) {
			r.logger.Debug("runner input closed", "session_id", sessionID)
			return nil
		}
		if err == nil {
			var res Result
			res, err = Step(ctx, r.service, sessionID, ev)
			if err == nil {
				if err := h.Output(res); err != nil {
					return err
				}
				continue
			}
		}

		if !errors.Is(err, ErrInvalidEvent) {
			return err
		}
		r.logger.Warn("event rejected", "session_id", sessionID, "err", err)
		if err := h.OutputError(err); err != nil {
			return err
		}
	}
}

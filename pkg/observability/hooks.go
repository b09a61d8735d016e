package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/sketchtrail/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that log every event.
// Node appends log at debug level since pointer moves produce many of them.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeApplied: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_applied",
				"node_id", e.NodeID,
				"parent_id", e.ParentID,
				"kind", e.Kind,
				"mutator", e.MutatorName,
			)
		},
		OnUndo: func(ctx context.Context, e *domain.NavigationEvent) {
			logger.InfoContext(ctx, "undo", "node_id", e.NodeID, "target_id", e.TargetID, "depth", e.Depth)
		},
		OnRedo: func(ctx context.Context, e *domain.NavigationEvent) {
			logger.InfoContext(ctx, "redo", "node_id", e.NodeID, "target_id", e.TargetID, "depth", e.Depth)
		},
		OnCommit: func(ctx context.Context, c *domain.Commit) {
			nodes := 0
			if c.Provenance != nil {
				nodes = len(c.Provenance.Nodes)
			}
			logger.InfoContext(ctx, "commit", "status", c.Status, "nodes", nodes)
		},
		OnImport: func(ctx context.Context, e *domain.ImportEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "import_failed", "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "import", "nodes", e.Nodes)
		},
	}
}

// Combine merges hooks so every non-nil callback runs in argument order.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		out.OnNodeApplied = chainEvent(out.OnNodeApplied, h.OnNodeApplied)
		out.OnUndo = chainEvent(out.OnUndo, h.OnUndo)
		out.OnRedo = chainEvent(out.OnRedo, h.OnRedo)
		out.OnCommit = chainEvent(out.OnCommit, h.OnCommit)
		out.OnImport = chainEvent(out.OnImport, h.OnImport)
		out.OnResolve = chainResolve(out.OnResolve, h.OnResolve)
	}
	return out
}

func chainEvent[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainResolve(a, b func(int, time.Duration)) func(int, time.Duration) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(n int, d time.Duration) {
		a(n, d)
		b(n, d)
	}
}

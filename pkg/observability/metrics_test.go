package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnNodeApplied(ctx, &domain.NodeEvent{Kind: domain.KindEphemeral, MutatorName: "draw"})
	hooks.OnNodeApplied(ctx, &domain.NodeEvent{Kind: domain.KindEphemeral, MutatorName: "draw"})
	hooks.OnNodeApplied(ctx, &domain.NodeEvent{Kind: domain.KindDurable, MutatorName: "drawEnd"})
	hooks.OnUndo(ctx, &domain.NavigationEvent{})
	hooks.OnCommit(ctx, &domain.Commit{Status: domain.StatusCommitted})
	hooks.OnImport(ctx, &domain.ImportEvent{Nodes: 3})
	hooks.OnImport(ctx, &domain.ImportEvent{Err: errors.New("bad")})
	hooks.OnResolve(4, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Nodes.WithLabelValues("ephemeral", "draw")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Nodes.WithLabelValues("durable", "drawEnd")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Navigations.WithLabelValues("undo")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Navigations.WithLabelValues("redo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Imports.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Imports.WithLabelValues("malformed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Replayed))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)

	_, err = observability.NewMetrics(nil)
	assert.NoError(t, err)
}

func TestCombine(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnCommit: func(context.Context, *domain.Commit) { calls = append(calls, "a") },
	}
	b := domain.LifecycleHooks{
		OnCommit:  func(context.Context, *domain.Commit) { calls = append(calls, "b") },
		OnResolve: func(int, time.Duration) { calls = append(calls, "resolve") },
	}

	merged := observability.Combine(a, domain.LifecycleHooks{}, b)
	merged.OnCommit(context.Background(), &domain.Commit{})
	merged.OnResolve(1, 0)

	assert.Equal(t, []string{"a", "b", "resolve"}, calls)
	assert.Nil(t, merged.OnUndo)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := observability.LoggingHooks(logger)
	ctx := context.Background()

	hooks.OnNodeApplied(ctx, &domain.NodeEvent{NodeID: "n1", Kind: domain.KindDurable, MutatorName: "clear"})
	hooks.OnImport(ctx, &domain.ImportEvent{Err: errors.New("dangling parent")})

	out := buf.String()
	assert.Contains(t, out, "node_applied")
	assert.Contains(t, out, "mutator=clear")
	assert.Contains(t, out, "import_failed")
	assert.Contains(t, out, "dangling parent")
}

package observability

import (
	"context"
	"time"

	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by session hooks.
type Metrics struct {
	Nodes       *prometheus.CounterVec
	Navigations *prometheus.CounterVec
	Commits     prometheus.Counter
	Imports     *prometheus.CounterVec
	Replayed    prometheus.Histogram
	ResolveTime prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Nodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sketchtrail_nodes_total",
				Help: "Total number of history nodes appended",
			},
			[]string{"kind", "mutator"},
		),
		Navigations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sketchtrail_navigations_total",
				Help: "Total number of undo and redo operations",
			},
			[]string{"direction"},
		),
		Commits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sketchtrail_commits_total",
				Help: "Total number of completed strokes handed to the host",
			},
		),
		Imports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sketchtrail_imports_total",
				Help: "Total number of graph imports by result",
			},
			[]string{"result"},
		),
		Replayed: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sketchtrail_resolve_replayed_nodes",
				Help:    "Number of invocations replayed per state resolution",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		ResolveTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sketchtrail_resolve_duration_seconds",
				Help:    "Duration of state resolutions",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.Nodes, m.Navigations, m.Commits, m.Imports, m.Replayed, m.ResolveTime} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeApplied: func(_ context.Context, e *domain.NodeEvent) {
			m.Nodes.WithLabelValues(string(e.Kind), e.MutatorName).Inc()
		},
		OnUndo: func(_ context.Context, _ *domain.NavigationEvent) {
			m.Navigations.WithLabelValues("undo").Inc()
		},
		OnRedo: func(_ context.Context, _ *domain.NavigationEvent) {
			m.Navigations.WithLabelValues("redo").Inc()
		},
		OnCommit: func(_ context.Context, _ *domain.Commit) {
			m.Commits.Inc()
		},
		OnImport: func(_ context.Context, e *domain.ImportEvent) {
			result := "ok"
			if e.Err != nil {
				result = "malformed"
			}
			m.Imports.WithLabelValues(result).Inc()
		},
		OnResolve: func(replayed int, d time.Duration) {
			m.Replayed.Observe(float64(replayed))
			m.ResolveTime.Observe(d.Seconds())
		},
	}
}

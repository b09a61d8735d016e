package provenance

import (
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/registry"
)

// ResolverOption configures a Resolver.
type ResolverOption func(*resolverConfig)

type resolverConfig struct {
	memoize   bool
	onResolve func(replayed int, d time.Duration)
}

// WithMemoization toggles caching of resolved states at durable nodes (default: on).
func WithMemoization(enabled bool) ResolverOption {
	return func(c *resolverConfig) {
		c.memoize = enabled
	}
}

// WithResolveHook registers a callback invoked after every resolution with the
// number of invocations replayed.
func WithResolveHook(fn func(replayed int, d time.Duration)) ResolverOption {
	return func(c *resolverConfig) {
		c.onResolve = fn
	}
}

// Resolver reconstructs the application state at any node by replaying the
// invocation chain from the root through the registry.
//
// States returned by Resolve may be shared with the memo cache and must be
// treated as read-only.
type Resolver[S any] struct {
	graph    *Graph[S]
	registry *registry.Registry[S]
	cfg      resolverConfig

	mu    sync.RWMutex
	cache map[string]S
}

// NewResolver creates a resolver for graph using the mutators in reg.
func NewResolver[S any](graph *Graph[S], reg *registry.Registry[S], opts ...ResolverOption) *Resolver[S] {
	cfg := resolverConfig{memoize: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Resolver[S]{
		graph:    graph,
		registry: reg,
		cfg:      cfg,
		cache:    make(map[string]S),
	}
}

// Graph returns the graph being resolved.
func (r *Resolver[S]) Graph() *Graph[S] {
	return r.graph
}

// Registry returns the mutator registry used for replay.
func (r *Resolver[S]) Registry() *registry.Registry[S] {
	return r.registry
}

// ResolveCurrent resolves the state at the graph's current node.
func (r *Resolver[S]) ResolveCurrent() (S, error) {
	return r.Resolve(r.graph.CurrentID())
}

// Resolve computes the state at nodeID. The walk stops at the nearest memoized
// durable ancestor (or the root) and replays forward from there.
func (r *Resolver[S]) Resolve(nodeID string) (S, error) {
	var zero S
	start := time.Now()

	var (
		chain    []domain.HistoryNode
		base     S
		haveBase bool
	)
	err := r.graph.walkBack(nodeID, func(n *domain.HistoryNode) bool {
		if r.cfg.memoize && n.Kind == domain.KindDurable {
			r.mu.RLock()
			cached, ok := r.cache[n.ID]
			r.mu.RUnlock()
			if ok {
				base, haveBase = cached, true
				return false
			}
		}
		if n.ParentID == "" {
			return false
		}
		chain = append(chain, n.Clone())
		return true
	})
	if err != nil {
		return zero, err
	}

	if !haveBase {
		base, err = r.graph.RootState()
		if err != nil {
			return zero, err
		}
		if r.cfg.memoize {
			if root, rootErr := r.graph.Root(); rootErr == nil {
				r.store(root.ID, base)
			}
		}
	}

	state := base
	for i := len(chain) - 1; i >= 0; i-- {
		n := chain[i]
		state, err = r.registry.Apply(state, n.Invocation)
		if err != nil {
			return zero, fmt.Errorf("failed to replay node %q: %w", n.ID, err)
		}
		if r.cfg.memoize && n.Kind == domain.KindDurable {
			r.store(n.ID, state)
		}
	}

	if r.cfg.onResolve != nil {
		r.cfg.onResolve(len(chain), time.Since(start))
	}
	return state, nil
}

// Cached reports how many states are memoized.
func (r *Resolver[S]) Cached() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

func (r *Resolver[S]) store(id string, state S) {
	r.mu.Lock()
	r.cache[id] = state
	r.mu.Unlock()
}

package provenance

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/registry"
	"github.com/google/uuid"
)

// Option configures a Graph.
type Option func(*graphOptions)

type graphOptions struct {
	newID func() string
	now   func() time.Time
}

// WithIDGenerator overrides the node ID generator (default: UUIDv7).
func WithIDGenerator(gen func() string) Option {
	return func(o *graphOptions) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// WithClock overrides the clock used to timestamp nodes.
func WithClock(now func() time.Time) Option {
	return func(o *graphOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func defaultOptions() graphOptions {
	return graphOptions{
		newID: func() string { return uuid.Must(uuid.NewV7()).String() },
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Graph is an append-only DAG of history nodes over application state S.
// It stores S only at the root; every other state is derived by a Resolver.
//
// Writes (CreateRoot, Apply) are expected from a single writer. Reads may run
// concurrently with a write and observe either the pre- or post-apply current node.
type Graph[S any] struct {
	mu        sync.RWMutex
	nodes     map[string]*domain.HistoryNode
	children  map[string][]string
	rootID    string
	rootState json.RawMessage
	currentID string
	opts      graphOptions
}

// NewGraph creates an empty graph. Call CreateRoot before applying invocations.
func NewGraph[S any](opts ...Option) *Graph[S] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Graph[S]{
		nodes:    make(map[string]*domain.HistoryNode),
		children: make(map[string][]string),
		opts:     o,
	}
}

// CreateRoot seeds the graph with its initial state. It may only be called once.
func (g *Graph[S]) CreateRoot(initial S) (domain.HistoryNode, error) {
	raw, err := canonicalState(initial)
	if err != nil {
		return domain.HistoryNode{}, fmt.Errorf("failed to encode root state: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rootID != "" {
		return domain.HistoryNode{}, domain.ErrRootExists
	}

	root := &domain.HistoryNode{
		ID:        g.opts.newID(),
		Kind:      domain.KindDurable,
		Timestamp: g.opts.now(),
	}
	g.nodes[root.ID] = root
	g.rootID = root.ID
	g.rootState = raw
	g.currentID = root.ID
	return root.Clone(), nil
}

// Apply appends a node derived from the current node and advances the current pointer to it.
// The resulting state is not computed here.
func (g *Graph[S]) Apply(inv domain.Invocation, kind domain.NodeKind) (domain.HistoryNode, error) {
	if !kind.Valid() {
		return domain.HistoryNode{}, fmt.Errorf("%w: %q", domain.ErrInvalidKind, kind)
	}
	if inv.MutatorName == "" {
		return domain.HistoryNode{}, fmt.Errorf("%w: empty mutator name", domain.ErrUnknownAction)
	}

	params, err := registry.CanonicalParameters(inv.Parameters)
	if err != nil {
		return domain.HistoryNode{}, fmt.Errorf("action %q: %w", inv.MutatorName, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rootID == "" {
		return domain.HistoryNode{}, domain.ErrNoRoot
	}

	id := g.opts.newID()
	if _, exists := g.nodes[id]; exists {
		return domain.HistoryNode{}, fmt.Errorf("node id collision: %q", id)
	}

	node := &domain.HistoryNode{
		ID:        id,
		ParentID:  g.currentID,
		Kind:      kind,
		Timestamp: g.opts.now(),
		Invocation: domain.Invocation{
			MutatorName: inv.MutatorName,
			Parameters:  params,
		},
	}
	g.nodes[id] = node
	g.children[node.ParentID] = append(g.children[node.ParentID], id)
	g.currentID = id
	return node.Clone(), nil
}

// GetNode returns a copy of the node with the given ID.
func (g *Graph[S]) GetNode(id string) (domain.HistoryNode, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return domain.HistoryNode{}, &domain.NodeNotFoundError{ID: id}
	}
	return n.Clone(), nil
}

// Root returns the root node.
func (g *Graph[S]) Root() (domain.HistoryNode, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.rootID == "" {
		return domain.HistoryNode{}, domain.ErrNoRoot
	}
	return g.nodes[g.rootID].Clone(), nil
}

// RootState decodes a fresh copy of the initial state.
func (g *Graph[S]) RootState() (S, error) {
	g.mu.RLock()
	raw := g.rootState
	g.mu.RUnlock()

	var state S
	if raw == nil {
		return state, domain.ErrNoRoot
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return state, fmt.Errorf("failed to decode root state: %w", err)
	}
	return state, nil
}

// CurrentID returns the ID of the current node.
func (g *Graph[S]) CurrentID() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.currentID
}

// Current returns the current node.
func (g *Graph[S]) Current() (domain.HistoryNode, error) {
	return g.GetNode(g.CurrentID())
}

// Children returns the IDs of the node's children in creation order.
func (g *Graph[S]) Children(id string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.nodes[id]; !ok {
		return nil, &domain.NodeNotFoundError{ID: id}
	}
	return append([]string(nil), g.children[id]...), nil
}

// LatestChild returns the most recently created child of id.
// ok is false when id is a leaf.
func (g *Graph[S]) LatestChild(id string) (child domain.HistoryNode, ok bool, err error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, exists := g.nodes[id]; !exists {
		return domain.HistoryNode{}, false, &domain.NodeNotFoundError{ID: id}
	}
	kids := g.children[id]
	if len(kids) == 0 {
		return domain.HistoryNode{}, false, nil
	}
	return g.nodes[kids[len(kids)-1]].Clone(), true, nil
}

// Path returns the nodes from the root to id, inclusive.
func (g *Graph[S]) Path(id string) ([]domain.HistoryNode, error) {
	var reversed []domain.HistoryNode
	err := g.walkBack(id, func(n *domain.HistoryNode) bool {
		reversed = append(reversed, n.Clone())
		return true
	})
	if err != nil {
		return nil, err
	}
	path := make([]domain.HistoryNode, len(reversed))
	for i, n := range reversed {
		path[len(reversed)-1-i] = n
	}
	return path, nil
}

// Len returns the number of nodes, root included.
func (g *Graph[S]) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Nodes returns a copy of every node ordered by timestamp, then ID.
func (g *Graph[S]) Nodes() []domain.HistoryNode {
	g.mu.RLock()
	out := make([]domain.HistoryNode, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n.Clone())
	}
	g.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return nodeLess(out[i], out[j])
	})
	return out
}

// walkBack visits id and its ancestors up to the root while holding the read lock.
// visit returns false to stop early.
func (g *Graph[S]) walkBack(id string, visit func(*domain.HistoryNode) bool) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return &domain.NodeNotFoundError{ID: id}
	}
	for {
		if !visit(n) {
			return nil
		}
		if n.ParentID == "" {
			return nil
		}
		parent, ok := g.nodes[n.ParentID]
		if !ok {
			return &domain.NodeNotFoundError{ID: n.ParentID}
		}
		n = parent
	}
}

func nodeLess(a, b domain.HistoryNode) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.ID < b.ID
}

// canonicalState round-trips a state through JSON and returns the re-encoded bytes.
func canonicalState[S any](state S) (json.RawMessage, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	var decoded S
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return json.Marshal(decoded)
}

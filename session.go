package sketchtrail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/sketchtrail/internal/logging"
	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/provenance"
	"github.com/aretw0/sketchtrail/pkg/registry"
	"github.com/aretw0/sketchtrail/pkg/sketch"
)

// DefaultMoveInterval is the default minimum spacing between recorded pointer moves.
const DefaultMoveInterval = 50 * time.Millisecond

// Toolbar holds the values applied to new strokes.
type Toolbar struct {
	Tool  domain.Tool `json:"tool" yaml:"tool"`
	Color string      `json:"color" yaml:"color"`
	Width float64     `json:"width" yaml:"width"`
}

// DefaultToolbar is a black 4-unit pen.
var DefaultToolbar = Toolbar{Tool: domain.ToolPen, Color: "#000000", Width: 4}

// Session is the boundary between an input surface and the history engine.
// It turns pointer, clear, undo and redo events into graph nodes and exposes
// the resolved drawing. Methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	logger       *slog.Logger
	hooks        domain.LifecycleHooks
	onCommit     func(context.Context, *domain.Commit)
	now          func() time.Time
	newID        func() string
	moveInterval time.Duration
	memoize      bool
	toolbar      Toolbar
	initial      *domain.DrawingState

	reg      *registry.Registry[domain.DrawingState]
	actions  sketch.Actions
	graph    *provenance.Graph[domain.DrawingState]
	resolver *provenance.Resolver[domain.DrawingState]
	nav      *provenance.Navigator[domain.DrawingState]

	// open is the stroke in progress, nil when none. It is derived from the
	// graph again whenever openKnown is false.
	open      *strokeProgress
	openKnown bool
}

// New creates a session on a fresh graph whose root is an empty canvas.
func New(opts ...Option) (*Session, error) {
	s := &Session{
		moveInterval: DefaultMoveInterval,
		memoize:      true,
		toolbar:      DefaultToolbar,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}

	reg, actions, err := sketch.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to register drawing actions: %w", err)
	}
	s.reg = reg
	s.actions = actions

	if err := s.reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Registry returns the mutator registry used by the session.
func (s *Session) Registry() *registry.Registry[domain.DrawingState] {
	return s.reg
}

// Graph returns the session's provenance graph.
func (s *Session) Graph() *provenance.Graph[domain.DrawingState] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph
}

func (s *Session) graphOptions() []provenance.Option {
	return []provenance.Option{
		provenance.WithIDGenerator(s.newID),
		provenance.WithClock(s.now),
	}
}

func (s *Session) initialState() domain.DrawingState {
	if s.initial != nil {
		return s.initial.Clone()
	}
	return domain.NewDrawingState(s.toolbar.Tool, s.toolbar.Color, s.toolbar.Width)
}

// reset replaces the graph with a fresh root.
func (s *Session) reset() error {
	g := provenance.NewGraph[domain.DrawingState](s.graphOptions()...)
	if _, err := g.CreateRoot(s.initialState()); err != nil {
		return fmt.Errorf("failed to create root: %w", err)
	}
	return s.attach(g)
}

func (s *Session) attach(g *provenance.Graph[domain.DrawingState]) error {
	res := provenance.NewResolver(g, s.reg,
		provenance.WithMemoization(s.memoize),
		provenance.WithResolveHook(s.hooks.OnResolve),
	)
	nav, err := provenance.NewNavigator(res)
	if err != nil {
		return err
	}
	s.graph, s.resolver, s.nav = g, res, nav
	s.open, s.openKnown = nil, false
	return nil
}

func (s *Session) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: s.now(), Type: t}
}

func (s *Session) record(ctx context.Context, h registry.Handle, params any, kind domain.NodeKind) (domain.HistoryNode, error) {
	inv, err := h.InvokeWith(params)
	if err != nil {
		return domain.HistoryNode{}, err
	}
	node, err := s.nav.Apply(inv, kind)
	if err != nil {
		return domain.HistoryNode{}, fmt.Errorf("failed to record %s: %w", h.Name(), err)
	}
	s.nodeApplied(ctx, node)
	return node, nil
}

func (s *Session) nodeApplied(ctx context.Context, node domain.HistoryNode) {
	s.logger.Debug("node applied",
		"node_id", node.ID,
		"kind", node.Kind,
		"mutator", node.MutatorName,
	)
	if s.hooks.OnNodeApplied != nil {
		s.hooks.OnNodeApplied(ctx, &domain.NodeEvent{
			EventBase:   s.event(domain.EventNodeApplied),
			NodeID:      node.ID,
			ParentID:    node.ParentID,
			Kind:        node.Kind,
			MutatorName: node.MutatorName,
		})
	}
}

// PointerDown starts a new stroke with the current toolbar values.
// A stroke still in progress is finished first.
func (s *Session) PointerDown(ctx context.Context, p domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begin(ctx, p)
}

func (s *Session) begin(ctx context.Context, p domain.Point) error {
	if _, err := s.finishStroke(ctx); err != nil {
		return err
	}
	node, err := s.record(ctx, s.actions.Draw, sketch.DrawParams{
		Begin: true,
		Point: p,
		Tool:  s.toolbar.Tool,
		Color: s.toolbar.Color,
		Width: s.toolbar.Width,
	}, domain.KindDurable)
	if err != nil {
		return err
	}
	s.open = &strokeProgress{points: []domain.Point{p}, last: node.Timestamp}
	return nil
}

// PointerMove extends the stroke in progress with an ephemeral node.
// It reports false when no stroke is in progress or when the move arrives
// sooner than the move interval after the previous recorded sample.
func (s *Session) PointerMove(ctx context.Context, p domain.Point) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.move(ctx, p, true)
}

func (s *Session) move(ctx context.Context, p domain.Point, throttle bool) (bool, error) {
	prog, ok, err := s.strokeInProgress()
	if err != nil || !ok {
		return false, err
	}
	if throttle && s.moveInterval > 0 && s.now().Sub(prog.last) < s.moveInterval {
		return false, nil
	}
	node, err := s.record(ctx, s.actions.Draw, sketch.DrawParams{Point: p}, domain.KindEphemeral)
	if err != nil {
		return false, err
	}
	prog.points = append(prog.points, p)
	prog.last = node.Timestamp
	return true, nil
}

// Stroke records a complete stroke from points in one call, as if every
// point had arrived as a pointer event. Moves are not throttled.
func (s *Session) Stroke(ctx context.Context, points []domain.Point) error {
	if len(points) == 0 {
		return fmt.Errorf("stroke needs at least one point")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx, points[0]); err != nil {
		return err
	}
	for _, p := range points[1:] {
		if _, err := s.move(ctx, p, false); err != nil {
			return err
		}
	}
	_, err := s.finishStroke(ctx)
	return err
}

// PointerUp completes the stroke in progress with a durable node and hands a
// Commit to the host. It reports false when no stroke is in progress.
func (s *Session) PointerUp(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishStroke(ctx)
}

// Clear removes every stroke with a durable node.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.record(ctx, s.actions.Clear, nil, domain.KindDurable); err != nil {
		return err
	}
	s.open, s.openKnown = nil, true
	return nil
}

// Undo steps back one durable action. It reports false, without error, when
// there is nothing left to undo.
func (s *Session) Undo(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, target, err := s.nav.Undo()
	if errors.Is(err, domain.ErrRootReached) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.open, s.openKnown = nil, true
	s.nodeApplied(ctx, node)
	if s.hooks.OnUndo != nil {
		s.hooks.OnUndo(ctx, &domain.NavigationEvent{
			EventBase: s.event(domain.EventUndo),
			NodeID:    node.ID,
			TargetID:  target.ID,
			Depth:     s.nav.Depth(),
		})
	}
	return true, nil
}

// Redo returns to the most recently undone state. It reports false, without
// error, when the redo buffer is empty.
func (s *Session) Redo(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, target, err := s.nav.Redo()
	if errors.Is(err, domain.ErrRedoEmpty) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.open, s.openKnown = nil, true
	s.nodeApplied(ctx, node)
	if s.hooks.OnRedo != nil {
		s.hooks.OnRedo(ctx, &domain.NavigationEvent{
			EventBase: s.event(domain.EventRedo),
			NodeID:    node.ID,
			TargetID:  target.ID,
			Depth:     s.nav.Depth(),
		})
	}
	return true, nil
}

// CanUndo reports whether Undo would change the drawing.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.CanUndo()
}

// CanRedo reports whether Redo would change the drawing.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.CanRedo()
}

// Drawing reports whether a stroke is in progress.
func (s *Session) Drawing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok, err := s.strokeInProgress()
	return err == nil && ok
}

// State returns a copy of the drawing state at the current node.
func (s *Session) State() (domain.DrawingState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.resolver.ResolveCurrent()
	if err != nil {
		return domain.DrawingState{}, err
	}
	return state.Clone(), nil
}

// CurrentStrokes returns a copy of the strokes at the current node, ready to render.
func (s *Session) CurrentStrokes() ([]domain.Stroke, error) {
	state, err := s.State()
	if err != nil {
		return nil, err
	}
	return state.Strokes, nil
}

// ResolveAt returns a copy of the drawing state at any node of the graph.
func (s *Session) ResolveAt(nodeID string) (domain.DrawingState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.resolver.Resolve(nodeID)
	if err != nil {
		return domain.DrawingState{}, err
	}
	return state.Clone(), nil
}

// History returns every node ordered by timestamp.
func (s *Session) History() []domain.HistoryNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Nodes()
}

// Export returns a deep copy of the session's graph in transport form.
func (s *Session) Export() (*domain.SerializedGraph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return provenance.Export(s.graph)
}

// Resume replaces the session's graph with an imported one, including its redo buffer.
// A malformed graph is rejected and the session falls back to a fresh root.
func (s *Session) Resume(ctx context.Context, sg *domain.SerializedGraph) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := provenance.Import(sg, s.reg, s.graphOptions()...)
	if err == nil {
		err = s.attach(g)
	}
	if err == nil {
		err = s.nav.Rebuild()
	}
	var state domain.DrawingState
	if err == nil {
		state, err = s.resolver.ResolveCurrent()
	}
	if err != nil {
		s.logger.Warn("import rejected, starting from a fresh root", "err", err)
		s.emitImport(ctx, 0, err)
		if resetErr := s.reset(); resetErr != nil {
			return errors.Join(err, resetErr)
		}
		return err
	}

	s.restoreToolbar(state)
	s.logger.Debug("graph imported", "nodes", g.Len(), "current", g.CurrentID())
	s.emitImport(ctx, g.Len(), nil)
	return nil
}

func (s *Session) emitImport(ctx context.Context, nodes int, err error) {
	if s.hooks.OnImport != nil {
		s.hooks.OnImport(ctx, &domain.ImportEvent{
			EventBase: s.event(domain.EventImport),
			Nodes:     nodes,
			Err:       err,
		})
	}
}

// Toolbar returns the values applied to new strokes.
func (s *Session) Toolbar() Toolbar {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toolbar
}

// restoreToolbar takes the active values recorded in state, keeping the
// current ones for anything state leaves unset.
func (s *Session) restoreToolbar(state domain.DrawingState) {
	if validTool(state.ActiveTool) {
		s.toolbar.Tool = state.ActiveTool
	}
	if state.ActiveColor != "" {
		s.toolbar.Color = state.ActiveColor
	}
	if state.BrushSize > 0 {
		s.toolbar.Width = state.BrushSize
	}
}

func validTool(tool domain.Tool) bool {
	switch tool {
	case domain.ToolPen, domain.ToolHighlighter, domain.ToolEraser:
		return true
	}
	return false
}

// SetTool selects the tool for new strokes.
func (s *Session) SetTool(tool domain.Tool) error {
	if !validTool(tool) {
		return fmt.Errorf("unknown tool %q", tool)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toolbar.Tool = tool
	return nil
}

// SetColor selects the color for new strokes.
func (s *Session) SetColor(color string) error {
	if color == "" {
		return fmt.Errorf("color cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toolbar.Color = color
	return nil
}

// SetBrushSize selects the width for new strokes.
func (s *Session) SetBrushSize(width float64) error {
	if width <= 0 {
		return fmt.Errorf("brush size must be positive, got %v", width)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toolbar.Width = width
	return nil
}

type strokeProgress struct {
	points []domain.Point
	last   time.Time
}

// strokeInProgress returns the open stroke. After attach it is derived once
// from the graph: a run of ephemeral draw nodes back to the draw node that
// began it. Any other node closes it.
func (s *Session) strokeInProgress() (*strokeProgress, bool, error) {
	if !s.openKnown {
		prog, err := s.deriveStroke()
		if err != nil {
			return nil, false, err
		}
		s.open, s.openKnown = prog, true
	}
	return s.open, s.open != nil, nil
}

func (s *Session) deriveStroke() (*strokeProgress, error) {
	node, err := s.graph.Current()
	if err != nil {
		return nil, err
	}
	last := node.Timestamp

	var reversed []domain.Point
	for node.MutatorName == sketch.ActionDraw {
		var p sketch.DrawParams
		if err := registry.Decode(node.Parameters, &p); err != nil {
			return nil, fmt.Errorf("node %q: %w", node.ID, err)
		}
		reversed = append(reversed, p.Point)
		if p.Begin {
			points := make([]domain.Point, len(reversed))
			for i, pt := range reversed {
				points[len(reversed)-1-i] = pt
			}
			return &strokeProgress{points: points, last: last}, nil
		}
		if node, err = s.graph.GetNode(node.ParentID); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (s *Session) finishStroke(ctx context.Context) (bool, error) {
	prog, ok, err := s.strokeInProgress()
	if err != nil || !ok {
		return false, err
	}
	if _, err := s.record(ctx, s.actions.DrawEnd, sketch.DrawEndParams{Points: prog.points}, domain.KindDurable); err != nil {
		return false, err
	}
	s.open, s.openKnown = nil, true

	sg, err := provenance.Export(s.graph)
	if err != nil {
		return true, fmt.Errorf("failed to export provenance: %w", err)
	}
	commit := &domain.Commit{Status: domain.StatusCommitted, Provenance: sg}
	if s.hooks.OnCommit != nil {
		s.hooks.OnCommit(ctx, commit)
	}
	if s.onCommit != nil {
		s.onCommit(ctx, commit)
	}
	return true, nil
}

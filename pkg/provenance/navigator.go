package provenance

import (
	"fmt"
	"sync"

	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/registry"
)

// Names of the navigation mutators recorded by undo and redo.
const (
	ActionUndo = "undo"
	ActionRedo = "redo"
)

const (
	paramState  = "state"
	paramTarget = "target"
)

// RegisterNavigation registers the undo and redo mutators on reg unless they already exist.
// Both replace the prior state with the payload carried in the invocation.
func RegisterNavigation[S any](reg *registry.Registry[S]) error {
	for _, name := range []string{ActionUndo, ActionRedo} {
		if reg.Has(name) {
			continue
		}
		if _, err := reg.Register(name, restoreState[S]); err != nil {
			return err
		}
	}
	return nil
}

func restoreState[S any](_ S, params domain.Parameters) (S, error) {
	var out S
	payload, ok := params[paramState]
	if !ok {
		return out, fmt.Errorf("missing %q parameter", paramState)
	}
	if err := registry.DecodeValue(payload, &out); err != nil {
		return out, err
	}
	return out, nil
}

// IsNavigation reports whether name is one of the navigation mutators.
func IsNavigation(name string) bool {
	return name == ActionUndo || name == ActionRedo
}

// NavigationTarget returns the node an undo or redo node restored.
func NavigationTarget(n domain.HistoryNode) (string, bool) {
	if !IsNavigation(n.MutatorName) {
		return "", false
	}
	target, ok := n.Parameters[paramTarget].(string)
	return target, ok && target != ""
}

// Navigator implements undo and redo on top of an append-only graph.
//
// Undo and redo never move the current pointer backwards. They append an
// ephemeral node whose mutator restores the target's resolved state, and keep
// a stack of the node IDs stepped back over so redo can return to them.
type Navigator[S any] struct {
	graph    *Graph[S]
	resolver *Resolver[S]
	undo     registry.Handle
	redo     registry.Handle

	mu    sync.Mutex
	stack []string
}

// NewNavigator creates a navigator over the resolver's graph, registering the
// navigation mutators if needed.
func NewNavigator[S any](resolver *Resolver[S]) (*Navigator[S], error) {
	reg := resolver.Registry()
	if err := RegisterNavigation(reg); err != nil {
		return nil, fmt.Errorf("failed to register navigation actions: %w", err)
	}
	undo, err := reg.Handle(ActionUndo)
	if err != nil {
		return nil, err
	}
	redo, err := reg.Handle(ActionRedo)
	if err != nil {
		return nil, err
	}
	return &Navigator[S]{
		graph:    resolver.Graph(),
		resolver: resolver,
		undo:     undo,
		redo:     redo,
	}, nil
}

// FindLastNonEphemeralAncestor walks parent links from startID (inclusive) and
// returns the durable node reached after skipping skipCount durable nodes.
// When history is exhausted it returns the root.
func (n *Navigator[S]) FindLastNonEphemeralAncestor(startID string, skipCount int) (domain.HistoryNode, error) {
	var (
		found   domain.HistoryNode
		skipped int
	)
	err := n.graph.walkBack(startID, func(node *domain.HistoryNode) bool {
		if node.ParentID == "" {
			found = node.Clone()
			return false
		}
		if node.Kind != domain.KindDurable {
			return true
		}
		if skipped < skipCount {
			skipped++
			return true
		}
		found = node.Clone()
		return false
	})
	if err != nil {
		return domain.HistoryNode{}, err
	}
	return found, nil
}

// Apply records a new action. A durable action that is not undo or redo
// invalidates the redo buffer.
func (n *Navigator[S]) Apply(inv domain.Invocation, kind domain.NodeKind) (domain.HistoryNode, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	node, err := n.graph.Apply(inv, kind)
	if err != nil {
		return domain.HistoryNode{}, err
	}
	if kind == domain.KindDurable && !IsNavigation(inv.MutatorName) {
		n.stack = nil
	}
	return node, nil
}

// CanUndo reports whether an undo target other than the root exists.
func (n *Navigator[S]) CanUndo() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	target, err := n.undoTarget()
	return err == nil && !target.IsRoot()
}

// CanRedo reports whether the redo buffer holds anything.
func (n *Navigator[S]) CanRedo() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.stack) > 0
}

// Depth returns the size of the redo buffer.
func (n *Navigator[S]) Depth() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.stack)
}

// Stack returns a copy of the redo buffer, oldest first.
func (n *Navigator[S]) Stack() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.stack...)
}

// Undo steps back one durable action. It returns domain.ErrRootReached when
// the only remaining target is the root.
func (n *Navigator[S]) Undo() (node domain.HistoryNode, target domain.HistoryNode, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	current := n.graph.CurrentID()
	target, err = n.undoTarget()
	if err != nil {
		return domain.HistoryNode{}, domain.HistoryNode{}, err
	}
	if target.IsRoot() {
		return domain.HistoryNode{}, target, domain.ErrRootReached
	}

	node, err = n.restore(n.undo, target.ID)
	if err != nil {
		return domain.HistoryNode{}, target, err
	}
	n.stack = append(n.stack, current)
	return node, target, nil
}

// Redo returns to the most recently undone node. It returns domain.ErrRedoEmpty
// when the buffer is empty.
func (n *Navigator[S]) Redo() (node domain.HistoryNode, target domain.HistoryNode, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.stack) == 0 {
		return domain.HistoryNode{}, domain.HistoryNode{}, domain.ErrRedoEmpty
	}
	targetID := n.stack[len(n.stack)-1]
	target, err = n.graph.GetNode(targetID)
	if err != nil {
		return domain.HistoryNode{}, domain.HistoryNode{}, err
	}

	node, err = n.restore(n.redo, targetID)
	if err != nil {
		return domain.HistoryNode{}, target, err
	}
	n.stack = n.stack[:len(n.stack)-1]
	return node, target, nil
}

// Rebuild reconstructs the redo buffer from the path between the root and the
// current node. Undo nodes push their parent, redo nodes pop, and any other
// durable node clears the buffer, mirroring how the buffer evolved live.
func (n *Navigator[S]) Rebuild() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	path, err := n.graph.Path(n.graph.CurrentID())
	if err != nil {
		return err
	}

	var stack []string
	for _, node := range path {
		switch {
		case node.IsRoot():
		case node.MutatorName == ActionUndo:
			stack = append(stack, node.ParentID)
		case node.MutatorName == ActionRedo:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case node.Kind == domain.KindDurable:
			stack = nil
		}
	}
	n.stack = stack
	return nil
}

func (n *Navigator[S]) undoTarget() (domain.HistoryNode, error) {
	return n.FindLastNonEphemeralAncestor(n.graph.CurrentID(), len(n.stack)+1)
}

func (n *Navigator[S]) restore(h registry.Handle, targetID string) (domain.HistoryNode, error) {
	state, err := n.resolver.Resolve(targetID)
	if err != nil {
		return domain.HistoryNode{}, fmt.Errorf("failed to resolve %q: %w", targetID, err)
	}
	inv, err := h.Invoke(domain.Parameters{
		paramTarget: targetID,
		paramState:  state,
	})
	if err != nil {
		return domain.HistoryNode{}, err
	}
	return n.graph.Apply(inv, domain.KindEphemeral)
}

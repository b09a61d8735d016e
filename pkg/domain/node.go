package domain

import (
	"fmt"
	"time"
)

// NodeKind tells navigation whether a node is a meaningful undo/redo target.
type NodeKind string

const (
	// KindEphemeral marks high-frequency intermediate updates (one per pointer-move sample).
	// They stay in the graph as the record of what happened but are skipped by undo/redo.
	KindEphemeral NodeKind = "ephemeral"
	// KindDurable marks discrete, user-intentional actions.
	KindDurable NodeKind = "durable"
)

// Valid reports whether k is one of the known kinds.
func (k NodeKind) Valid() bool {
	return k == KindEphemeral || k == KindDurable
}

// ParseNodeKind converts a wire value into a NodeKind.
func ParseNodeKind(s string) (NodeKind, error) {
	k := NodeKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// Parameters holds the arguments of a mutator invocation.
// Values are kept in canonical JSON shape (float64, string, bool, []any, map[string]any).
type Parameters map[string]any

// Clone returns a deep copy of the parameters.
func (p Parameters) Clone() Parameters {
	if p == nil {
		return nil
	}
	return Parameters(deepCopyMap(p))
}

// Invocation is a mutator call that has not yet been committed to a graph.
type Invocation struct {
	MutatorName string     `json:"mutatorName,omitempty"`
	Parameters  Parameters `json:"parameters,omitempty"`
}

// HistoryNode is one step in the provenance graph.
// The root node has no ParentID and no MutatorName.
type HistoryNode struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parentId,omitempty"`
	Kind      NodeKind  `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Invocation
}

// IsRoot reports whether the node is the graph root.
func (n HistoryNode) IsRoot() bool {
	return n.ParentID == ""
}

// IsDurable reports whether the node is a navigation target.
func (n HistoryNode) IsDurable() bool {
	return n.Kind == KindDurable
}

// Clone returns a copy that shares no mutable state with n.
func (n HistoryNode) Clone() HistoryNode {
	c := n
	c.Parameters = n.Parameters.Clone()
	return c
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case Parameters:
		return Parameters(deepCopyMap(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return val
	}
}

package domain

import (
	"encoding/json"
	"time"
)

// SerializedNode is the transport shape of a HistoryNode.
type SerializedNode struct {
	ParentID    string     `json:"parentId,omitempty"`
	Kind        NodeKind   `json:"kind"`
	MutatorName string     `json:"mutatorName,omitempty"`
	Parameters  Parameters `json:"parameters,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}

// SerializedGraph is the only on-the-wire and on-disk format of a provenance graph.
// Nodes are keyed by ID; the root is the single node without a parent.
type SerializedGraph struct {
	Nodes         map[string]SerializedNode `json:"nodes"`
	RootState     json.RawMessage           `json:"rootState"`
	CurrentNodeID string                    `json:"currentNodeId"`
}

// Clone returns a deep copy of the graph.
func (g *SerializedGraph) Clone() *SerializedGraph {
	if g == nil {
		return nil
	}
	out := &SerializedGraph{
		Nodes:         make(map[string]SerializedNode, len(g.Nodes)),
		CurrentNodeID: g.CurrentNodeID,
	}
	if g.RootState != nil {
		out.RootState = append(json.RawMessage(nil), g.RootState...)
	}
	for id, n := range g.Nodes {
		n.Parameters = n.Parameters.Clone()
		out.Nodes[id] = n
	}
	return out
}

// NodeFromSerialized rebuilds a HistoryNode from its transport shape.
func NodeFromSerialized(id string, n SerializedNode) HistoryNode {
	return HistoryNode{
		ID:        id,
		ParentID:  n.ParentID,
		Kind:      n.Kind,
		Timestamp: n.Timestamp,
		Invocation: Invocation{
			MutatorName: n.MutatorName,
			Parameters:  n.Parameters.Clone(),
		},
	}
}

// Serialize converts a HistoryNode into its transport shape.
func (n HistoryNode) Serialize() SerializedNode {
	return SerializedNode{
		ParentID:    n.ParentID,
		Kind:        n.Kind,
		MutatorName: n.MutatorName,
		Parameters:  n.Parameters.Clone(),
		Timestamp:   n.Timestamp,
	}
}

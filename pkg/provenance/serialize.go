package provenance

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/registry"
)

// Export returns a deep, self-contained snapshot of the graph.
// Nothing in the result aliases the graph's internal state.
func Export[S any](g *Graph[S]) (*domain.SerializedGraph, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.rootID == "" {
		return nil, domain.ErrNoRoot
	}

	out := &domain.SerializedGraph{
		Nodes:         make(map[string]domain.SerializedNode, len(g.nodes)),
		RootState:     append(json.RawMessage(nil), g.rootState...),
		CurrentNodeID: g.currentID,
	}
	for id, n := range g.nodes {
		out.Nodes[id] = n.Serialize()
	}
	return out, nil
}

// Import rebuilds a graph from its serialized form after validating its structure.
// Every non-root node must name a mutator registered in reg. Failures are
// reported as *domain.MalformedImportError.
func Import[S any](sg *domain.SerializedGraph, reg *registry.Registry[S], opts ...Option) (*Graph[S], error) {
	if err := Validate(sg, reg); err != nil {
		return nil, err
	}

	var rootState S
	if err := json.Unmarshal(sg.RootState, &rootState); err != nil {
		return nil, malformed("", "root state does not decode: %v", err)
	}
	raw, err := json.Marshal(rootState)
	if err != nil {
		return nil, malformed("", "root state does not encode: %v", err)
	}

	g := NewGraph[S](opts...)
	g.rootState = raw
	g.currentID = sg.CurrentNodeID

	for id, sn := range sg.Nodes {
		node := domain.NodeFromSerialized(id, sn)
		g.nodes[id] = &node
		if node.ParentID == "" {
			g.rootID = id
		}
	}
	for id, n := range g.nodes {
		if n.ParentID != "" {
			g.children[n.ParentID] = append(g.children[n.ParentID], id)
		}
	}
	for parent, kids := range g.children {
		sort.Slice(kids, func(i, j int) bool {
			return nodeLess(*g.nodes[kids[i]], *g.nodes[kids[j]])
		})
		g.children[parent] = kids
	}
	return g, nil
}

// Validate checks a serialized graph for a single root, dangling parents,
// cycles, unknown kinds and mutators, and a valid current node.
func Validate[S any](sg *domain.SerializedGraph, reg *registry.Registry[S]) error {
	if sg == nil {
		return malformed("", "graph is nil")
	}
	if len(sg.Nodes) == 0 {
		return malformed("", "graph has no nodes")
	}
	if len(sg.RootState) == 0 {
		return malformed("", "missing root state")
	}

	ids := make([]string, 0, len(sg.Nodes))
	for id := range sg.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var roots []string
	for _, id := range ids {
		n := sg.Nodes[id]
		if id == "" {
			return malformed(id, "empty node id")
		}
		if !n.Kind.Valid() {
			return malformed(id, "invalid kind %q", n.Kind)
		}
		if n.ParentID == "" {
			roots = append(roots, id)
			if n.MutatorName != "" {
				return malformed(id, "root must not carry a mutator")
			}
			if n.Kind != domain.KindDurable {
				return malformed(id, "root must be durable")
			}
			continue
		}
		if n.ParentID == id {
			return malformed(id, "cycle detected: node is its own parent")
		}
		if _, ok := sg.Nodes[n.ParentID]; !ok {
			return malformed(id, "dangling parent reference %q", n.ParentID)
		}
		if n.MutatorName == "" {
			return malformed(id, "missing mutator name")
		}
		if reg != nil && !reg.Has(n.MutatorName) {
			return malformed(id, "unknown mutator %q", n.MutatorName)
		}
	}

	switch len(roots) {
	case 0:
		return malformed("", "missing root")
	case 1:
	default:
		return malformed(roots[1], "multiple roots")
	}

	if err := checkAcyclic(sg, ids); err != nil {
		return err
	}

	if sg.CurrentNodeID == "" {
		return malformed("", "missing current node")
	}
	if _, ok := sg.Nodes[sg.CurrentNodeID]; !ok {
		return malformed(sg.CurrentNodeID, "current node does not exist")
	}
	return nil
}

// checkAcyclic verifies that every node reaches the root by following parent links.
// With exactly one root and no dangling parents, a node that cannot reach the
// root sits on a cycle.
func checkAcyclic(sg *domain.SerializedGraph, ids []string) error {
	const (
		unvisited = iota
		visiting
		done
	)
	mark := make(map[string]int, len(ids))

	for _, start := range ids {
		if mark[start] == done {
			continue
		}
		var trail []string
		id := start
		for {
			if mark[id] == done {
				break
			}
			if mark[id] == visiting {
				return malformed(id, "cycle detected through parent links")
			}
			mark[id] = visiting
			trail = append(trail, id)
			parent := sg.Nodes[id].ParentID
			if parent == "" {
				break
			}
			id = parent
		}
		for _, t := range trail {
			mark[t] = done
		}
	}
	return nil
}

func malformed(nodeID, format string, args ...any) error {
	return &domain.MalformedImportError{NodeID: nodeID, Reason: fmt.Sprintf(format, args...)}
}

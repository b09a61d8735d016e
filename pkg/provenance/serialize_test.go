package provenance_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/provenance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImport_RoundTrip(t *testing.T) {
	f := newFixture(t)
	f.apply(t, 1, domain.KindDurable)
	f.apply(t, 2, domain.KindEphemeral)
	f.apply(t, 3, domain.KindDurable)
	_, _, err := f.nav.Undo()
	require.NoError(t, err)

	sg, err := provenance.Export(f.graph)
	require.NoError(t, err)
	assert.Len(t, sg.Nodes, f.graph.Len())
	assert.Equal(t, f.graph.CurrentID(), sg.CurrentNodeID)

	data, err := json.Marshal(sg)
	require.NoError(t, err)
	var decoded domain.SerializedGraph
	require.NoError(t, json.Unmarshal(data, &decoded))

	imported, err := provenance.Import(&decoded, f.reg)
	require.NoError(t, err)
	assert.Equal(t, f.graph.Len(), imported.Len())
	assert.Equal(t, f.graph.CurrentID(), imported.CurrentID())

	res := provenance.NewResolver(imported, f.reg)
	for _, n := range f.graph.Nodes() {
		want, err := f.resolver.Resolve(n.ID)
		require.NoError(t, err)
		got, err := res.Resolve(n.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got, "state at %s", n.ID)
	}

	t.Run("Redo Survives Import", func(t *testing.T) {
		nav, err := provenance.NewNavigator(res)
		require.NoError(t, err)
		require.NoError(t, nav.Rebuild())
		assert.True(t, nav.CanRedo())

		_, _, err = nav.Redo()
		require.NoError(t, err)
		state, err := res.ResolveCurrent()
		require.NoError(t, err)
		assert.Equal(t, 6, state.Value)
	})
}

func TestExport_DeepCopy(t *testing.T) {
	f := newFixture(t)
	n := f.apply(t, 1, domain.KindDurable)

	sg, err := provenance.Export(f.graph)
	require.NoError(t, err)

	sg.Nodes[n.ID].Parameters["by"] = float64(99)
	sg.RootState[0] = ' '
	delete(sg.Nodes, f.root.ID)

	assert.Equal(t, 1, f.value(t))
	assert.Equal(t, 2, f.graph.Len())

	again, err := provenance.Export(f.graph)
	require.NoError(t, err)
	assert.Equal(t, float64(1), again.Nodes[n.ID].Parameters["by"])
}

func TestExport_NoRoot(t *testing.T) {
	_, err := provenance.Export(provenance.NewGraph[counter]())
	assert.ErrorIs(t, err, domain.ErrNoRoot)
}

func TestImport_Malformed(t *testing.T) {
	f := newFixture(t)
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rootState := json.RawMessage(`{"value":0,"log":[]}`)

	root := domain.SerializedNode{Kind: domain.KindDurable, Timestamp: ts}
	step := func(parent string) domain.SerializedNode {
		return domain.SerializedNode{
			ParentID:    parent,
			Kind:        domain.KindDurable,
			MutatorName: "add",
			Parameters:  domain.Parameters{"by": float64(1)},
			Timestamp:   ts,
		}
	}

	tests := []struct {
		name   string
		graph  *domain.SerializedGraph
		nodeID string
	}{
		{
			name:  "Nil Graph",
			graph: nil,
		},
		{
			name:  "No Nodes",
			graph: &domain.SerializedGraph{RootState: rootState, CurrentNodeID: "r"},
		},
		{
			name: "Missing Root",
			graph: &domain.SerializedGraph{
				Nodes:         map[string]domain.SerializedNode{"a": step("b"), "b": step("a")},
				RootState:     rootState,
				CurrentNodeID: "a",
			},
		},
		{
			name: "Multiple Roots",
			graph: &domain.SerializedGraph{
				Nodes:         map[string]domain.SerializedNode{"r1": root, "r2": root},
				RootState:     rootState,
				CurrentNodeID: "r1",
			},
			nodeID: "r2",
		},
		{
			name: "Dangling Parent",
			graph: &domain.SerializedGraph{
				Nodes:         map[string]domain.SerializedNode{"r": root, "a": step("ghost")},
				RootState:     rootState,
				CurrentNodeID: "a",
			},
			nodeID: "a",
		},
		{
			name: "Self Parent",
			graph: &domain.SerializedGraph{
				Nodes:         map[string]domain.SerializedNode{"r": root, "a": step("a")},
				RootState:     rootState,
				CurrentNodeID: "r",
			},
			nodeID: "a",
		},
		{
			name: "Cycle Beside Root",
			graph: &domain.SerializedGraph{
				Nodes: map[string]domain.SerializedNode{
					"r": root,
					"a": step("c"),
					"b": step("a"),
					"c": step("b"),
				},
				RootState:     rootState,
				CurrentNodeID: "r",
			},
		},
		{
			name: "Unknown Mutator",
			graph: &domain.SerializedGraph{
				Nodes: map[string]domain.SerializedNode{
					"r": root,
					"a": {ParentID: "r", Kind: domain.KindDurable, MutatorName: "mul", Timestamp: ts},
				},
				RootState:     rootState,
				CurrentNodeID: "a",
			},
			nodeID: "a",
		},
		{
			name: "Invalid Kind",
			graph: &domain.SerializedGraph{
				Nodes: map[string]domain.SerializedNode{
					"r": root,
					"a": {ParentID: "r", Kind: "sticky", MutatorName: "add", Timestamp: ts},
				},
				RootState:     rootState,
				CurrentNodeID: "a",
			},
			nodeID: "a",
		},
		{
			name: "Root With Mutator",
			graph: &domain.SerializedGraph{
				Nodes: map[string]domain.SerializedNode{
					"r": {Kind: domain.KindDurable, MutatorName: "add", Timestamp: ts},
				},
				RootState:     rootState,
				CurrentNodeID: "r",
			},
			nodeID: "r",
		},
		{
			name: "Missing Current",
			graph: &domain.SerializedGraph{
				Nodes:         map[string]domain.SerializedNode{"r": root},
				RootState:     rootState,
				CurrentNodeID: "elsewhere",
			},
			nodeID: "elsewhere",
		},
		{
			name: "Missing Root State",
			graph: &domain.SerializedGraph{
				Nodes:         map[string]domain.SerializedNode{"r": root},
				CurrentNodeID: "r",
			},
		},
		{
			name: "Undecodable Root State",
			graph: &domain.SerializedGraph{
				Nodes:         map[string]domain.SerializedNode{"r": root},
				RootState:     json.RawMessage(`{"value":"nope"}`),
				CurrentNodeID: "r",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := provenance.Import(tt.graph, f.reg)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, domain.ErrMalformedImport)

			var mi *domain.MalformedImportError
			require.ErrorAs(t, err, &mi)
			if tt.nodeID != "" {
				assert.Equal(t, tt.nodeID, mi.NodeID)
			}
		})
	}
}

func TestImport_ChildOrder(t *testing.T) {
	f := newFixture(t)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	child := func(at time.Duration) domain.SerializedNode {
		return domain.SerializedNode{
			ParentID:    "r",
			Kind:        domain.KindDurable,
			MutatorName: "add",
			Parameters:  domain.Parameters{"by": float64(1)},
			Timestamp:   t0.Add(at),
		}
	}
	sg := &domain.SerializedGraph{
		Nodes: map[string]domain.SerializedNode{
			"r": {Kind: domain.KindDurable, Timestamp: t0},
			"z": child(time.Second),
			"y": child(2 * time.Second),
			"x": child(time.Second),
		},
		RootState:     json.RawMessage(`{"value":0,"log":[]}`),
		CurrentNodeID: "y",
	}

	g, err := provenance.Import(sg, f.reg)
	require.NoError(t, err)

	kids, err := g.Children("r")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "z", "y"}, kids)

	latest, ok, err := g.LatestChild("r")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "y", latest.ID)
}

package ports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SampleGraph returns a small valid graph: a root, one durable and one ephemeral node.
func SampleGraph() *domain.SerializedGraph {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &domain.SerializedGraph{
		Nodes: map[string]domain.SerializedNode{
			"root": {Kind: domain.KindDurable, Timestamp: ts},
			"a": {
				ParentID:    "root",
				Kind:        domain.KindDurable,
				MutatorName: "draw",
				Parameters: domain.Parameters{
					"begin": true,
					"point": map[string]any{"x": float64(1), "y": float64(1)},
				},
				Timestamp: ts.Add(time.Second),
			},
			"b": {
				ParentID:    "a",
				Kind:        domain.KindEphemeral,
				MutatorName: "draw",
				Parameters: domain.Parameters{
					"point": map[string]any{"x": float64(2), "y": float64(2)},
				},
				Timestamp: ts.Add(2 * time.Second),
			},
		},
		RootState:     json.RawMessage(`{"strokes":[],"activeTool":"pen","activeColor":"#000000","brushSize":4}`),
		CurrentNodeID: "b",
	}
}

// RunGraphStoreContract runs a suite of tests to verify that a GraphStore implementation
// adheres to the defined interface contract.
func RunGraphStoreContract(t *testing.T, store GraphStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		graph := SampleGraph()

		err := store.Save(ctx, sessionID, graph)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, graph.CurrentNodeID, loaded.CurrentNodeID)
		require.Len(t, loaded.Nodes, len(graph.Nodes))
		assert.Equal(t, "root", loaded.Nodes["a"].ParentID)
		assert.Equal(t, domain.KindEphemeral, loaded.Nodes["b"].Kind)
		assert.True(t, graph.Nodes["b"].Timestamp.Equal(loaded.Nodes["b"].Timestamp))
		assert.Equal(t, true, loaded.Nodes["a"].Parameters["begin"])
		assert.JSONEq(t, string(graph.RootState), string(loaded.RootState))
	})

	t.Run("Loaded Graph Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Nodes["a"].Parameters["begin"] = false
		delete(loaded.Nodes, "b")

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Len(t, again.Nodes, 3)
		assert.Equal(t, true, again.Nodes["a"].Parameters["begin"])
	})

	t.Run("Overwrite", func(t *testing.T) {
		graph := SampleGraph()
		graph.CurrentNodeID = "a"
		require.NoError(t, store.Save(ctx, sessionID, graph))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "a", loaded.CurrentNodeID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, SampleGraph())
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, SampleGraph()))
		require.NoError(t, store.Save(ctx, id2, SampleGraph()))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

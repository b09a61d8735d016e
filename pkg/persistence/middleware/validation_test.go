package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/persistence/middleware"
	"github.com/aretw0/sketchtrail/pkg/ports"
	"github.com/aretw0/sketchtrail/pkg/sketch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationMiddleware(t *testing.T) {
	reg, _, err := sketch.NewRegistry()
	require.NoError(t, err)

	underlying := NewMockStore()
	store := middleware.NewValidationMiddleware(reg)(underlying)
	ctx := context.Background()

	t.Run("Valid Graph Passes", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "ok", ports.SampleGraph()))
		loaded, err := store.Load(ctx, "ok")
		require.NoError(t, err)
		assert.Equal(t, "b", loaded.CurrentNodeID)
	})

	t.Run("Malformed Graph Is Not Saved", func(t *testing.T) {
		bad := ports.SampleGraph()
		delete(bad.Nodes, "root")

		err := store.Save(ctx, "bad", bad)
		assert.ErrorIs(t, err, domain.ErrMalformedImport)

		_, err = underlying.Load(ctx, "bad")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Corrupt Stored Graph Is Rejected", func(t *testing.T) {
		bad := ports.SampleGraph()
		bad.CurrentNodeID = "ghost"
		require.NoError(t, underlying.Save(ctx, "corrupt", bad))

		_, err := store.Load(ctx, "corrupt")
		assert.ErrorIs(t, err, domain.ErrMalformedImport)
	})

	t.Run("Chain With Encryption", func(t *testing.T) {
		chained := middleware.Chain(NewMockStore(),
			middleware.NewValidationMiddleware(reg),
			middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
		)
		require.NoError(t, chained.Save(ctx, "c", ports.SampleGraph()))
		loaded, err := chained.Load(ctx, "c")
		require.NoError(t, err)
		assert.Len(t, loaded.Nodes, 3)
	})
}

package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sketchtrail"
	"github.com/aretw0/sketchtrail/internal/config"
	"github.com/aretw0/sketchtrail/pkg/domain"
)

func drawDot(ctx context.Context, sess *sketchtrail.Session) error {
	if err := sess.PointerDown(ctx, domain.Point{X: 1, Y: 1}); err != nil {
		return err
	}
	_, err := sess.PointerUp(ctx)
	return err
}

func TestNewRuntime_Memory(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory

	rt, err := NewRuntime(cfg, nil)
	require.NoError(t, err)
	defer rt.Close()

	ctx := context.Background()
	require.NoError(t, rt.Service.Do(ctx, "s1", drawDot))

	ids, err := rt.Service.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)

	assert.Equal(t, float64(1), testutil.ToFloat64(rt.Metrics.Commits))
	count, err := testutil.GatherAndCount(rt.Gatherer, "sketchtrail_commits_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewRuntime_FileWithEncryption(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store.Path = dir
	cfg.Store.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))

	rt, err := NewRuntime(cfg, nil)
	require.NoError(t, err)
	defer rt.Close()

	ctx := context.Background()
	require.NoError(t, rt.Service.Do(ctx, "secret", drawDot))

	raw, err := os.ReadFile(filepath.Join(dir, "secret.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "drawEnd", "mutator names are not stored in clear")

	require.NoError(t, rt.Service.View(ctx, "secret", func(sess *sketchtrail.Session) error {
		strokes, err := sess.CurrentStrokes()
		require.NoError(t, err)
		assert.Len(t, strokes, 1)
		return nil
	}))
}

func TestNewRuntime_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Store.Backend = config.BackendRedis
	cfg.Store.Redis.Addr = mr.Addr()

	rt, err := NewRuntime(cfg, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, rt.Service.Do(ctx, "shared", drawDot))
	assert.True(t, mr.Exists(cfg.Store.Redis.Prefix+"shared"))

	require.NoError(t, rt.Close())
}

func TestNewRuntime_InvalidKey(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory
	cfg.Store.EncryptionKey = "short"

	_, err := NewRuntime(cfg, nil)
	assert.Error(t, err)
}

func TestNewRuntime_UnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "s3"

	_, err := NewRuntime(cfg, nil)
	assert.Error(t, err)
}

func TestPrintSystemMessage(t *testing.T) {
	var buf bytes.Buffer
	PrintSystemMessage(&buf, "session %q removed", "s1")
	assert.Equal(t, ">>> session \"s1\" removed\n", buf.String())
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sketchtrail"
	"github.com/aretw0/sketchtrail/pkg/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "sketchtrail.yaml", `
store:
  backend: redis
  redis:
    addr: cache:6379
    db: 2
    ttl: 24h
session:
  move_interval: 20ms
  toolbar:
    tool: highlighter
    color: "#ff0000"
    width: 9
http:
  addr: ":9090"
render:
  width: 320
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, 24*time.Hour, cfg.Store.Redis.TTL)
	assert.Equal(t, Default().Store.Redis.Prefix, cfg.Store.Redis.Prefix, "unset keys keep defaults")
	assert.Equal(t, 20*time.Millisecond, cfg.Session.MoveInterval)
	assert.Equal(t, sketchtrail.Toolbar{Tool: domain.ToolHighlighter, Color: "#ff0000", Width: 9}, cfg.Session.Toolbar)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.True(t, cfg.HTTP.Metrics)
	assert.Equal(t, 320, cfg.Render.Width)
	assert.Equal(t, 600, cfg.Render.Height)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "sketchtrail.json", `{"store": {"backend": "memory"}, "http": {"metrics": false}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.False(t, cfg.HTTP.Metrics)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"Syntax":   "store: [",
		"Backend":  "store:\n  backend: s3\n",
		"Tool":     "session:\n  toolbar:\n    tool: crayon\n",
		"Width":    "session:\n  toolbar:\n    width: 0\n",
		"Render":   "render:\n  height: -1\n",
		"Interval": "session:\n  move_interval: -5ms\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.yaml", content))
			assert.Error(t, err)
		})
	}
}

func TestSessionOptions(t *testing.T) {
	cfg := Default()
	cfg.Session.Toolbar.Color = "#123456"

	sess, err := sketchtrail.New(cfg.SessionOptions()...)
	require.NoError(t, err)
	assert.Equal(t, "#123456", sess.Toolbar().Color)
}

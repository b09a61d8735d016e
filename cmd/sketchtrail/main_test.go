package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sketchtrail"
	"github.com/aretw0/sketchtrail/internal/cli"
	"github.com/aretw0/sketchtrail/internal/config"
	"github.com/aretw0/sketchtrail/pkg/domain"
)

// seed stores a session with two strokes, then undoes back to the start of the second.
func seed(t *testing.T, dir, sessionID string) {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Path = dir
	rt, err := cli.NewRuntime(cfg, nil)
	require.NoError(t, err)
	defer rt.Close()

	require.NoError(t, rt.Service.Do(context.Background(), sessionID, func(ctx context.Context, sess *sketchtrail.Session) error {
		if err := sess.Stroke(ctx, []domain.Point{{X: 10, Y: 10}, {X: 50, Y: 50}}); err != nil {
			return err
		}
		if err := sess.Stroke(ctx, []domain.Point{{X: 60, Y: 10}}); err != nil {
			return err
		}
		_, err := sess.Undo(ctx)
		return err
	}))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func baseArgs(dir string) []string {
	return []string{"--dir", dir, "--config", filepath.Join(dir, "none.yaml")}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "sketchtrail version "+strings.TrimSpace(sketchtrail.Version)+"\n", out)
}

func TestSessionCommands(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, "demo")

	out, err := run(t, append([]string{"session", "ls"}, baseArgs(dir)...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "- demo")

	out, err = run(t, append([]string{"session", "inspect", "demo", "--format", "md"}, baseArgs(dir)...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "# Session `demo`")
	assert.Contains(t, out, "**Strokes:** 2")

	out, err = run(t, append([]string{"session", "inspect", "demo", "--format", "mermaid"}, baseArgs(dir)...)...)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD\n"))

	exported := filepath.Join(dir, "demo-export.json")
	_, err = run(t, append([]string{"session", "export", "demo", "-o", exported}, baseArgs(dir)...)...)
	require.NoError(t, err)

	out, err = run(t, append([]string{"session", "import", "copy", exported}, baseArgs(dir)...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported session 'copy'")

	out, err = run(t, append([]string{"session", "inspect", "copy", "--format", "json"}, baseArgs(dir)...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `"currentNodeId"`)

	out, err = run(t, append([]string{"session", "rm", "--all"}, baseArgs(dir)...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed session 'copy'")
	assert.Contains(t, out, "Removed session 'demo'")

	out, err = run(t, append([]string{"session", "ls"}, baseArgs(dir)...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found.")
}

func TestSessionImport_Malformed(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"nodes":{},"rootState":{},"currentNodeId":"x"}`), 0644))

	_, err := run(t, append([]string{"session", "import", "bad", bad}, baseArgs(dir)...)...)
	assert.ErrorIs(t, err, domain.ErrMalformedImport)
}

func TestReplay(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, "demo")

	out, err := run(t, append([]string{"replay", "demo", "--at", ""}, baseArgs(dir)...)...)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "root")
	assert.Contains(t, lines[len(lines)-1], "undo")
	assert.Contains(t, lines[len(lines)-1], "strokes=2")
}

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, "demo")
	output := filepath.Join(dir, "demo.png")

	out, err := run(t, append([]string{"snapshot", "demo", "-o", output, "--at", "", "--width", "100", "--height", "70"}, baseArgs(dir)...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "(2 strokes)")

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 70, img.Bounds().Dy())
}

func TestSession_NotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, append([]string{"replay", "ghost", "--at", ""}, baseArgs(dir)...)...)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestPlay(t *testing.T) {
	dir := t.TempDir()
	rootCmd.SetIn(strings.NewReader(`{"type":"stroke","points":[{"x":1,"y":1},{"x":2,"y":2}]}` + "\n" + `{"type":"wiggle"}` + "\n"))
	defer rootCmd.SetIn(nil)

	out, err := run(t, append([]string{"play", "drawn"}, baseArgs(dir)...)...)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"applied":true`)
	assert.Contains(t, lines[1], `"error"`)

	out, err = run(t, append([]string{"session", "ls"}, baseArgs(dir)...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "- drawn")
}

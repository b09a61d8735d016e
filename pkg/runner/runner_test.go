package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sketchtrail"
	"github.com/aretw0/sketchtrail/pkg/adapters/memory"
	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/runner"
	"github.com/aretw0/sketchtrail/pkg/session"
)

func newService(t *testing.T) *sketchtrail.Service {
	t.Helper()
	return sketchtrail.NewService(session.NewManager(memory.NewStore()), sketchtrail.WithMoveInterval(0))
}

type line struct {
	runner.Result
	Error string `json:"error"`
}

func decodeLines(t *testing.T, out string) []line {
	t.Helper()
	var lines []line
	for _, raw := range strings.Split(strings.TrimSpace(out), "\n") {
		var l line
		require.NoError(t, json.Unmarshal([]byte(raw), &l), raw)
		lines = append(lines, l)
	}
	return lines
}

func TestRunner_Run(t *testing.T) {
	svc := newService(t)
	input := strings.Join([]string{
		`{"type":"pointer_down","x":1,"y":1}`,
		`{"type":"pointer_move","x":2,"y":2}`,
		`{"type":"pointer_up"}`,
		``,
		`{"type":"stroke","points":[{"x":5,"y":5},{"x":6,"y":6}]}`,
		`{"type":"undo"}`,
		`{"type":"redo"}`,
	}, "\n")
	var out bytes.Buffer

	r := runner.New(svc)
	require.NoError(t, r.Run(context.Background(), "s1", runner.NewJSONHandler(strings.NewReader(input), &out)))

	lines := decodeLines(t, out.String())
	require.Len(t, lines, 6)
	assert.True(t, lines[0].Applied)
	assert.Len(t, lines[2].Strokes, 1)
	assert.Len(t, lines[3].Strokes, 2)

	// Undo steps back to the start of the second stroke.
	assert.True(t, lines[4].Applied)
	require.Len(t, lines[4].Strokes, 2)
	assert.Equal(t, []domain.Point{{X: 5, Y: 5}}, lines[4].Strokes[1].Points)
	assert.True(t, lines[4].CanRedo)

	assert.True(t, lines[5].Applied)
	require.Len(t, lines[5].Strokes, 2)
	assert.Len(t, lines[5].Strokes[1].Points, 2)
	assert.False(t, lines[5].CanRedo)

	// The stored session reflects every event.
	require.NoError(t, svc.View(context.Background(), "s1", func(sess *sketchtrail.Session) error {
		strokes, err := sess.CurrentStrokes()
		require.NoError(t, err)
		assert.Len(t, strokes, 2)
		return nil
	}))
}

func TestRunner_InvalidEventsAreReported(t *testing.T) {
	svc := newService(t)
	input := "not json\n" +
		`{"type":"wiggle"}` + "\n" +
		`{"type":"stroke"}` + "\n" +
		`{"type":"pointer_down","x":3,"y":4}`
	var out bytes.Buffer

	require.NoError(t, runner.New(svc).Run(context.Background(), "s1", runner.NewJSONHandler(strings.NewReader(input), &out)))

	lines := decodeLines(t, out.String())
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0].Error, "invalid event")
	assert.Contains(t, lines[1].Error, "wiggle")
	assert.Contains(t, lines[2].Error, "stroke without points")
	assert.Empty(t, lines[3].Error)
	assert.True(t, lines[3].Applied)
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runner.New(newService(t)).Run(ctx, "s1", runner.NewJSONHandler(strings.NewReader(`{"type":"clear"}`), &bytes.Buffer{}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStep_FailureSavesNothing(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := runner.Step(ctx, svc, "s1", runner.Event{Type: "wiggle"})
	assert.True(t, errors.Is(err, runner.ErrInvalidEvent))

	_, err = svc.Export(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestApply_PointerMoveWithoutStroke(t *testing.T) {
	sess, err := sketchtrail.New(sketchtrail.WithMoveInterval(0))
	require.NoError(t, err)

	applied, err := runner.Apply(context.Background(), sess, runner.Event{Type: runner.EventPointerMove, X: 1, Y: 1})
	require.NoError(t, err)
	assert.False(t, applied)
}

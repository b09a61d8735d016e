package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/sketchtrail"
	"github.com/aretw0/sketchtrail/pkg/domain"
)

// Event types understood by Apply.
const (
	EventPointerDown = "pointer_down"
	EventPointerMove = "pointer_move"
	EventPointerUp   = "pointer_up"
	EventStroke      = "stroke"
	EventClear       = "clear"
	EventUndo        = "undo"
	EventRedo        = "redo"
)

// ErrInvalidEvent is returned for events that cannot be decoded or dispatched.
var ErrInvalidEvent = errors.New("invalid event")

// Event is one input-surface event.
type Event struct {
	Type   string         `json:"type"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Points []domain.Point `json:"points,omitempty"`
}

// Result reports the session after an event.
type Result struct {
	Applied bool            `json:"applied"`
	CanUndo bool            `json:"canUndo"`
	CanRedo bool            `json:"canRedo"`
	Strokes []domain.Stroke `json:"strokes"`
}

// Apply dispatches ev to sess. It reports whether the event changed the history.
func Apply(ctx context.Context, sess *sketchtrail.Session, ev Event) (bool, error) {
	p := domain.Point{X: ev.X, Y: ev.Y}
	switch ev.Type {
	case EventPointerDown:
		return true, sess.PointerDown(ctx, p)
	case EventPointerMove:
		return sess.PointerMove(ctx, p)
	case EventPointerUp:
		return sess.PointerUp(ctx)
	case EventStroke:
		if len(ev.Points) == 0 {
			return false, fmt.Errorf("%w: stroke without points", ErrInvalidEvent)
		}
		return true, sess.Stroke(ctx, ev.Points)
	case EventClear:
		return true, sess.Clear(ctx)
	case EventUndo:
		return sess.Undo(ctx)
	case EventRedo:
		return sess.Redo(ctx)
	default:
		return false, fmt.Errorf("%w: unknown event type %q", ErrInvalidEvent, ev.Type)
	}
}

// Step applies ev to the stored session inside one Service transaction.
// A failed event leaves the stored session untouched.
func Step(ctx context.Context, service *sketchtrail.Service, sessionID string, ev Event) (Result, error) {
	var res Result
	err := service.Do(ctx, sessionID, func(ctx context.Context, sess *sketchtrail.Session) error {
		applied, err := Apply(ctx, sess, ev)
		if err != nil {
			return err
		}
		strokes, err := sess.CurrentStrokes()
		if err != nil {
			return err
		}
		res = Result{
			Applied: applied,
			CanUndo: sess.CanUndo(),
			CanRedo: sess.CanRedo(),
			Strokes: strokes,
		}
		return nil
	})
	return res, err
}

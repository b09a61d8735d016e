package sketch

import (
	"errors"
	"fmt"

	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/registry"
)

// Mutator names recorded in the provenance graph.
const (
	ActionDraw    = "draw"
	ActionDrawEnd = "drawEnd"
	ActionClear   = "clear"
)

// ErrNoStroke is returned when a stroke is extended or finished before one was begun.
var ErrNoStroke = errors.New("no stroke in progress")

// DrawParams are the parameters of the draw mutator.
// With Begin set, a new stroke is started with the given toolbar values;
// otherwise Point is appended to the last stroke.
type DrawParams struct {
	Begin bool         `json:"begin,omitempty"`
	Point domain.Point `json:"point"`
	Tool  domain.Tool  `json:"tool,omitempty"`
	Color string       `json:"color,omitempty"`
	Width float64      `json:"width,omitempty"`
}

// DrawEndParams are the parameters of the drawEnd mutator.
type DrawEndParams struct {
	Points []domain.Point `json:"points"`
}

// Actions holds the handles of the drawing mutators.
type Actions struct {
	Draw    registry.Handle
	DrawEnd registry.Handle
	Clear   registry.Handle
}

// Register adds the drawing mutators to reg.
func Register(reg *registry.Registry[domain.DrawingState]) (Actions, error) {
	var (
		a   Actions
		err error
	)
	if a.Draw, err = reg.Register(ActionDraw, Draw); err != nil {
		return Actions{}, err
	}
	if a.DrawEnd, err = reg.Register(ActionDrawEnd, DrawEnd); err != nil {
		return Actions{}, err
	}
	if a.Clear, err = reg.Register(ActionClear, Clear); err != nil {
		return Actions{}, err
	}
	return a, nil
}

// NewRegistry returns a registry holding the drawing mutators.
func NewRegistry() (*registry.Registry[domain.DrawingState], Actions, error) {
	reg := registry.New[domain.DrawingState]()
	a, err := Register(reg)
	if err != nil {
		return nil, Actions{}, err
	}
	return reg, a, nil
}

// Draw starts a stroke or extends the last one. Beginning a stroke also makes
// its toolbar values the active ones.
func Draw(prior domain.DrawingState, params domain.Parameters) (domain.DrawingState, error) {
	var p DrawParams
	if err := registry.Decode(params, &p); err != nil {
		return prior, err
	}

	if p.Begin {
		next := withStrokes(prior, len(prior.Strokes)+1)
		next.Strokes = append(next.Strokes, domain.Stroke{
			Tool:   p.Tool,
			Points: []domain.Point{p.Point},
			Width:  p.Width,
			Color:  p.Color,
		})
		if p.Tool != "" {
			next.ActiveTool = p.Tool
		}
		if p.Color != "" {
			next.ActiveColor = p.Color
		}
		if p.Width > 0 {
			next.BrushSize = p.Width
		}
		return next, nil
	}

	if len(prior.Strokes) == 0 {
		return prior, ErrNoStroke
	}
	next := withStrokes(prior, len(prior.Strokes))
	last := next.Strokes[len(next.Strokes)-1].Clone()
	last.Points = append(last.Points, p.Point)
	next.Strokes[len(next.Strokes)-1] = last
	return next, nil
}

// DrawEnd replaces the points of the last stroke with the complete stroke.
func DrawEnd(prior domain.DrawingState, params domain.Parameters) (domain.DrawingState, error) {
	var p DrawEndParams
	if err := registry.Decode(params, &p); err != nil {
		return prior, err
	}
	if len(prior.Strokes) == 0 {
		return prior, ErrNoStroke
	}
	if len(p.Points) == 0 {
		return prior, fmt.Errorf("stroke must have at least one point")
	}

	next := withStrokes(prior, len(prior.Strokes))
	last := next.Strokes[len(next.Strokes)-1]
	last.Points = append([]domain.Point(nil), p.Points...)
	next.Strokes[len(next.Strokes)-1] = last
	return next, nil
}

// Clear removes every stroke and keeps the toolbar values.
func Clear(prior domain.DrawingState, _ domain.Parameters) (domain.DrawingState, error) {
	next := prior
	next.Strokes = []domain.Stroke{}
	return next, nil
}

// withStrokes copies the stroke slice header so appends and replacements never
// reach prior. Individual strokes are shared until a mutator clones the one it edits.
func withStrokes(prior domain.DrawingState, capacity int) domain.DrawingState {
	next := prior
	next.Strokes = make([]domain.Stroke, len(prior.Strokes), capacity)
	copy(next.Strokes, prior.Strokes)
	return next
}

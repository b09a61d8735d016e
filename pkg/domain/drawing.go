package domain

// Tool identifies the instrument used for a stroke.
type Tool string

const (
	ToolPen         Tool = "pen"
	ToolHighlighter Tool = "highlighter"
	ToolEraser      Tool = "eraser"
)

// Point is a stroke coordinate in surface units.
type Point struct {
	X float64 `json:"x" mapstructure:"x"`
	Y float64 `json:"y" mapstructure:"y"`
}

// Stroke is one continuous pointer gesture.
type Stroke struct {
	Tool   Tool    `json:"tool" mapstructure:"tool"`
	Points []Point `json:"points" mapstructure:"points"`
	Width  float64 `json:"width" mapstructure:"width"`
	Color  string  `json:"color" mapstructure:"color"`
}

// Clone returns a copy of the stroke with its own point slice.
func (s Stroke) Clone() Stroke {
	c := s
	c.Points = append(make([]Point, 0, len(s.Points)), s.Points...)
	return c
}

// DrawingState is the application state of a drawing session.
// Only the root stores it; every other node derives it by replay.
type DrawingState struct {
	Strokes     []Stroke `json:"strokes" mapstructure:"strokes"`
	ActiveTool  Tool     `json:"activeTool" mapstructure:"activeTool"`
	ActiveColor string   `json:"activeColor" mapstructure:"activeColor"`
	BrushSize   float64  `json:"brushSize" mapstructure:"brushSize"`
}

// NewDrawingState returns an empty canvas with the given toolbar defaults.
func NewDrawingState(tool Tool, color string, brushSize float64) DrawingState {
	return DrawingState{
		Strokes:     []Stroke{},
		ActiveTool:  tool,
		ActiveColor: color,
		BrushSize:   brushSize,
	}
}

// CloneStrokes returns a deep copy of the strokes, safe to hand to a renderer.
func (s DrawingState) CloneStrokes() []Stroke {
	out := make([]Stroke, len(s.Strokes))
	for i, st := range s.Strokes {
		out[i] = st.Clone()
	}
	return out
}

// Clone returns a deep copy of the state.
func (s DrawingState) Clone() DrawingState {
	c := s
	c.Strokes = s.CloneStrokes()
	return c
}

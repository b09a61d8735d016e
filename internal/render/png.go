// Package render rasterizes drawing states to PNG.
package render

import (
	"fmt"
	"io"

	"github.com/gogpu/gg"

	"github.com/aretw0/sketchtrail/pkg/domain"
)

// highlighterAlpha is the opacity of highlighter strokes.
const highlighterAlpha = 0.35

// Options sizes the canvas.
type Options struct {
	Width      int
	Height     int
	Background string
}

// DefaultOptions is an 800x600 white canvas.
var DefaultOptions = Options{Width: 800, Height: 600, Background: "#ffffff"}

// PNG draws strokes in order and writes the result to w.
// Eraser strokes are painted with the background color.
func PNG(w io.Writer, strokes []domain.Stroke, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", opts.Width, opts.Height)
	}
	if opts.Background == "" {
		opts.Background = DefaultOptions.Background
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	defer dc.Close()

	dc.ClearWithColor(gg.Hex(opts.Background))
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	for i, s := range strokes {
		if err := drawStroke(dc, s, opts.Background); err != nil {
			return fmt.Errorf("stroke %d: %w", i, err)
		}
	}
	return dc.EncodePNG(w)
}

func drawStroke(dc *gg.Context, s domain.Stroke, background string) error {
	if len(s.Points) == 0 {
		return nil
	}

	col := gg.Hex(s.Color)
	switch s.Tool {
	case domain.ToolEraser:
		col = gg.Hex(background)
	case domain.ToolHighlighter:
		col.A = highlighterAlpha
	}
	dc.SetRGBA(col.R, col.G, col.B, col.A)

	width := s.Width
	if width <= 0 {
		width = 1
	}

	if len(s.Points) == 1 {
		dc.DrawCircle(s.Points[0].X, s.Points[0].Y, width/2)
		return dc.Fill()
	}

	dc.SetLineWidth(width)
	dc.MoveTo(s.Points[0].X, s.Points[0].Y)
	for _, p := range s.Points[1:] {
		dc.LineTo(p.X, p.Y)
	}
	return dc.Stroke()
}

package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sketchtrail/pkg/domain"
)

func TestPNG_Dimensions(t *testing.T) {
	strokes := []domain.Stroke{
		{Tool: domain.ToolPen, Color: "#000000", Width: 4, Points: []domain.Point{{X: 10, Y: 10}, {X: 90, Y: 40}}},
		{Tool: domain.ToolHighlighter, Color: "#ffcc00", Width: 12, Points: []domain.Point{{X: 5, Y: 50}, {X: 95, Y: 50}}},
		{Tool: domain.ToolPen, Color: "#ff0000", Width: 6, Points: []domain.Point{{X: 50, Y: 20}}},
	}

	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, strokes, Options{Width: 120, Height: 80}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())
}

func TestPNG_Background(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, nil, Options{Width: 4, Height: 4, Background: "#ff0000"}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	r, g, b, a := img.At(2, 2).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)
	assert.Zero(t, b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestPNG_StrokeMarksCanvas(t *testing.T) {
	strokes := []domain.Stroke{
		{Tool: domain.ToolPen, Color: "#000000", Width: 6, Points: []domain.Point{{X: 0, Y: 10}, {X: 20, Y: 10}}},
	}
	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, strokes, Options{Width: 20, Height: 20}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	r, _, _, _ := img.At(10, 10).RGBA()
	assert.Less(t, r, uint32(0x8000), "pixel under the stroke is dark")
	r, _, _, _ = img.At(10, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r, "pixel away from the stroke keeps the background")
}

func TestPNG_InvalidSize(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, PNG(&buf, nil, Options{Width: 0, Height: 10}))
}

package ggcanvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sld "github.com/flywave/go-sld"
	"github.com/flywave/go-sld/color"
)

func rect(minX, minY, maxX, maxY float64) []sld.Coord {
	return []sld.Coord{{X: minX, Y: minY}, {X: maxX, Y: minY}, {X: maxX, Y: maxY}, {X: minX, Y: maxY}}
}

// reddish reports whether the pixel is clearly red.
func reddish(c *Canvas, x, y int) bool {
	r, g, b, _ := c.Image().At(x, y).RGBA()
	return r > 0xc000 && g < 0x4000 && b < 0x4000
}

func blank(c *Canvas, minX, minY, maxX, maxY int) bool {
	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			r, g, b, _ := c.Image().At(x, y).RGBA()
			if r < 0xf000 || g < 0xf000 || b < 0xf000 {
				return false
			}
		}
	}
	return true
}

func TestFillEvenOdd(t *testing.T) {
	c := New(40, 40)
	defer func() { _ = c.Close() }()
	c.Clear(color.White)
	w, h := c.Size()
	assert.Equal(t, 40, w)
	assert.Equal(t, 40, h)

	s := sld.Shape{Closed: true, Paths: [][]sld.Coord{rect(0, 0, 40, 40), rect(10, 10, 30, 30)}}
	require.NoError(t, c.FillShape(s, sld.Paint{Color: color.FromRGB8(255, 0, 0), Opacity: 1}))
	assert.True(t, reddish(c, 5, 5))
	assert.True(t, blank(c, 15, 15, 25, 25))
}

func TestStroke(t *testing.T) {
	c := New(40, 40)
	defer func() { _ = c.Close() }()
	c.Clear(color.White)
	st := sld.Stroke{Color: color.FromRGB8(255, 0, 0), Width: 4, Opacity: 1, LineCap: sld.LineCapRound, LineJoin: sld.LineJoinRound, Unit: sld.Pixel}
	line := sld.Shape{Paths: [][]sld.Coord{{{X: 0, Y: 20}, {X: 40, Y: 20}}}}
	require.NoError(t, c.StrokeShape(line, st))
	assert.True(t, reddish(c, 20, 20))
	assert.True(t, blank(c, 0, 0, 40, 10))

	st.Unit = sld.Foot
	assert.Error(t, c.StrokeShape(line, st))
}

func TestDrawLabel(t *testing.T) {
	c := New(100, 40)
	defer func() { _ = c.Close() }()
	c.Clear(color.White)
	require.NoError(t, c.DrawLabel(sld.Label{
		Text:   "MMMM",
		At:     sld.Coord{X: 50, Y: 20},
		Anchor: sld.Coord{X: 0.5, Y: 0.5},
		Font:   sld.Font{Size: 20, Style: sld.FontStyleItalic},
		Fill:   sld.Paint{Color: color.Black, Opacity: 1},
		Halo:   &sld.Halo{Radius: 1, Fill: sld.Paint{Color: color.White, Opacity: 1}},
	}))
	assert.False(t, blank(c, 0, 0, 100, 40))
	assert.True(t, blank(c, 0, 0, 100, 3))
}

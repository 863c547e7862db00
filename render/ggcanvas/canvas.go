// Package ggcanvas is a drawing backend on top of a gg.Context.
package ggcanvas

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	sld "github.com/flywave/go-sld"
	"github.com/flywave/go-sld/color"
)

// Canvas draws through a gg.Context. Labels are not rotated. It is not
// safe for concurrent use.
type Canvas struct {
	dc      *gg.Context
	sources map[fontKey]*text.FontSource
}

type fontKey struct {
	style  sld.FontStyle
	weight sld.FontWeight
}

func New(width, height int) *Canvas {
	return &Canvas{
		dc:      gg.NewContext(width, height),
		sources: make(map[fontKey]*text.FontSource),
	}
}

// Close releases the context.
func (c *Canvas) Close() error {
	return c.dc.Close()
}

func (c *Canvas) Size() (int, int) {
	return c.dc.Width(), c.dc.Height()
}

func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

func (c *Canvas) Clear(bg color.Color) {
	c.dc.ClearWithColor(gg.FromColor(bg))
}

func (c *Canvas) FillShape(s sld.Shape, p sld.Paint) error {
	if len(s.Paths) == 0 || len(s.Paths[0]) < 3 {
		return nil
	}
	c.dc.ClearPath()
	for _, path := range s.Paths {
		if len(path) >= 3 {
			c.addPath(path, true)
		}
	}
	c.dc.SetFillRule(gg.FillRuleEvenOdd)
	c.dc.SetColor(p.Effective())
	return c.dc.Fill()
}

func (c *Canvas) StrokeShape(s sld.Shape, st sld.Stroke) error {
	if st.Width <= 0 {
		return nil
	}
	if st.Unit != sld.Pixel {
		return fmt.Errorf("stroke in %s, expected pixels", st.Unit)
	}
	c.dc.ClearPath()
	drawn := false
	for _, path := range s.Paths {
		if len(path) >= 2 {
			c.addPath(path, s.Closed)
			drawn = true
		}
	}
	if !drawn {
		return nil
	}
	c.dc.SetColor(st.Effective())
	c.dc.SetLineWidth(st.Width)
	c.dc.SetLineCap(lineCap(st.LineCap))
	c.dc.SetLineJoin(lineJoin(st.LineJoin))
	if len(st.Dash) > 0 {
		c.dc.SetDash(st.Dash...)
		c.dc.SetDashOffset(st.DashOffset)
	} else {
		c.dc.ClearDash()
	}
	return c.dc.Stroke()
}

func (c *Canvas) addPath(path []sld.Coord, closed bool) {
	c.dc.NewSubPath()
	c.dc.MoveTo(path[0].X, path[0].Y)
	for _, p := range path[1:] {
		c.dc.LineTo(p.X, p.Y)
	}
	if closed {
		c.dc.ClosePath()
	}
}

func lineCap(lc sld.LineCap) gg.LineCap {
	switch lc {
	case sld.LineCapButt:
		return gg.LineCapButt
	case sld.LineCapRound:
		return gg.LineCapRound
	}
	return gg.LineCapSquare
}

func lineJoin(lj sld.LineJoin) gg.LineJoin {
	switch lj {
	case sld.LineJoinRound:
		return gg.LineJoinRound
	case sld.LineJoinBevel:
		return gg.LineJoinBevel
	}
	return gg.LineJoinMiter
}

func (c *Canvas) face(f sld.Font) (text.Face, error) {
	key := fontKey{f.Style, f.Weight}
	src, ok := c.sources[key]
	if !ok {
		data := goregular.TTF
		italic := f.Style != sld.FontStyleNormal
		switch {
		case italic && f.Weight == sld.FontWeightBold:
			data = gobolditalic.TTF
		case italic:
			data = goitalic.TTF
		case f.Weight == sld.FontWeightBold:
			data = gobold.TTF
		}
		var err error
		if src, err = text.NewFontSource(data); err != nil {
			return nil, err
		}
		c.sources[key] = src
	}
	return src.Face(f.Size), nil
}

func (c *Canvas) DrawLabel(l sld.Label) error {
	if l.Text == "" || l.Font.Size <= 0 {
		return nil
	}
	face, err := c.face(l.Font)
	if err != nil {
		return fmt.Errorf("label %q: %w", l.Text, err)
	}
	c.dc.SetFont(face)
	m := face.Metrics()
	w, _ := c.dc.MeasureString(l.Text)
	h := m.Ascent + m.Descent
	x := l.At.X - l.Anchor.X*w
	y := l.At.Y + l.Anchor.Y*h - m.Descent

	if halo := l.Halo; halo != nil && halo.Radius > 0 {
		c.dc.SetColor(halo.Fill.Effective())
		r := int(math.Ceil(halo.Radius))
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if float64(dx*dx+dy*dy) <= halo.Radius*halo.Radius {
					c.dc.DrawString(l.Text, x+float64(dx), y+float64(dy))
				}
			}
		}
	}
	c.dc.SetColor(l.Fill.Effective())
	c.dc.DrawString(l.Text, x, y)
	return nil
}

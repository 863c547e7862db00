package sld

import (
	"github.com/flywave/go-sld/color"
)

// Paint is a resolved fill.
type Paint struct {
	Color   color.Color
	Opacity float64
}

// Effective returns the paint color with the opacity folded into alpha.
func (p Paint) Effective() color.Color {
	return p.Color.WithAlpha(p.Opacity)
}

// PaintFactory resolves fill parameters into a Paint.
type PaintFactory interface {
	Paint(p *Parameters) (Paint, error)
}

// DefaultPaintFactory applies the Symbology Encoding defaults.
type DefaultPaintFactory struct{}

func (DefaultPaintFactory) Paint(p *Parameters) (Paint, error) {
	c, err := p.FillColor()
	if err != nil {
		return Paint{}, err
	}
	o, err := p.FillOpacity()
	if err != nil {
		return Paint{}, err
	}
	return Paint{Color: c, Opacity: o}, nil
}

type FontStyle int

const (
	FontStyleNormal FontStyle = iota
	FontStyleItalic
	FontStyleOblique
)

type FontWeight int

const (
	FontWeightNormal FontWeight = iota
	FontWeightBold
)

// Font is a resolved text font. Size is in pixels.
type Font struct {
	Family string
	Size   float64
	Style  FontStyle
	Weight FontWeight
}

package sld

import (
	"github.com/flywave/go-sld/color"
)

// LineJoin is the shape drawn where two stroke segments meet.
type LineJoin int

const (
	LineJoinMiter LineJoin = iota
	LineJoinRound
	LineJoinBevel
)

func (j LineJoin) String() string {
	switch j {
	case LineJoinRound:
		return "round"
	case LineJoinBevel:
		return "bevel"
	default:
		return "mitre"
	}
}

// LineCap is the shape drawn at the ends of open strokes.
type LineCap int

const (
	LineCapButt LineCap = iota
	LineCapRound
	LineCapSquare
)

func (c LineCap) String() string {
	switch c {
	case LineCapButt:
		return "butt"
	case LineCapRound:
		return "round"
	default:
		return "square"
	}
}

// Stroke is a fully resolved line style. Width, Dash and DashOffset are
// expressed in Unit.
type Stroke struct {
	Color      color.Color
	Width      float64
	Opacity    float64
	LineJoin   LineJoin
	LineCap    LineCap
	Dash       []float64
	DashOffset float64
	Unit       UOM
}

// Effective returns the stroke color with the opacity folded into alpha.
func (s Stroke) Effective() color.Color {
	return s.Color.WithAlpha(s.Opacity)
}

// Pixels returns a copy of s with all lengths converted to pixels.
func (s Stroke) Pixels(metresPerPixel float64) (Stroke, error) {
	if s.Unit == Pixel {
		return s, nil
	}
	scale, err := Value{Magnitude: 1, Unit: s.Unit}.Pixels(metresPerPixel)
	if err != nil {
		return Stroke{}, err
	}
	px := s
	px.Unit = Pixel
	px.Width *= scale
	px.DashOffset *= scale
	if s.Dash != nil {
		px.Dash = make([]float64, len(s.Dash))
		for i, d := range s.Dash {
			px.Dash[i] = d * scale
		}
	}
	return px, nil
}

// StrokeFactory resolves stroke parameters into a Stroke.
type StrokeFactory interface {
	Stroke(p *Parameters, u UOM) (Stroke, error)
}

// DefaultStrokeFactory applies the Symbology Encoding defaults.
type DefaultStrokeFactory struct{}

func (DefaultStrokeFactory) Stroke(p *Parameters, u UOM) (Stroke, error) {
	s := Stroke{Unit: u}
	var err error
	if s.Color, err = p.StrokeColor(); err != nil {
		return Stroke{}, err
	}
	if s.Width, err = p.StrokeWidth(); err != nil {
		return Stroke{}, err
	}
	if s.Opacity, err = p.StrokeOpacity(); err != nil {
		return Stroke{}, err
	}
	if s.LineJoin, err = p.StrokeLinejoin(); err != nil {
		return Stroke{}, err
	}
	if s.LineCap, err = p.StrokeLinecap(); err != nil {
		return Stroke{}, err
	}
	if s.Dash, err = p.StrokeDasharray(); err != nil {
		return Stroke{}, err
	}
	if s.DashOffset, err = p.StrokeDashoffset(); err != nil {
		return Stroke{}, err
	}
	return s, nil
}

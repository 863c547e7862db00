package sld

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

// DefaultGraphicSize is the mark size in pixels when the graphic has none.
const DefaultGraphicSize = 6.0

// Well-known mark names.
const (
	MarkSquare   = "square"
	MarkCircle   = "circle"
	MarkTriangle = "triangle"
	MarkStar     = "star"
	MarkCross    = "cross"
	MarkX        = "x"
)

// markOutlines holds unit outlines centred on the origin with y pointing
// down, scaled by the graphic size when drawn.
var markOutlines = map[string][]Coord{
	MarkSquare:   {{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}},
	MarkCircle:   regularPolygon(32, 0.5, 0),
	MarkTriangle: regularPolygon(3, 0.5, -math.Pi/2),
	MarkStar:     star(5, 0.5, 0.2),
	MarkCross:    cross(0.1),
	MarkX:        rotate(cross(0.1), math.Pi/4),
}

func regularPolygon(n int, r, start float64) []Coord {
	out := make([]Coord, n)
	for i := range out {
		a := start + 2*math.Pi*float64(i)/float64(n)
		out[i] = Coord{r * math.Cos(a), r * math.Sin(a)}
	}
	return out
}

func star(points int, outer, inner float64) []Coord {
	out := make([]Coord, 2*points)
	for i := range out {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := -math.Pi/2 + math.Pi*float64(i)/float64(points)
		out[i] = Coord{r * math.Cos(a), r * math.Sin(a)}
	}
	return out
}

// cross returns a plus sign with arms of half width w.
func cross(w float64) []Coord {
	return []Coord{
		{-w, -0.5}, {w, -0.5}, {w, -w}, {0.5, -w}, {0.5, w}, {w, w},
		{w, 0.5}, {-w, 0.5}, {-w, w}, {-0.5, w}, {-0.5, -w}, {-w, -w},
	}
}

func rotate(cs []Coord, a float64) []Coord {
	sin, cos := math.Sincos(a)
	out := make([]Coord, len(cs))
	for i, c := range cs {
		out[i] = Coord{c.X*cos - c.Y*sin, c.X*sin + c.Y*cos}
	}
	return out
}

// PointSymbolizer draws a mark at every point of a geometry. Lines are
// marked at their middle, polygons at their centroid.
type PointSymbolizer struct {
	base
	mark     string
	fill     *Parameters
	stroke   *Parameters
	size     Value
	rotation float64
	opacity  float64
}

var _ Symbolizer = (*PointSymbolizer)(nil)

func newPointSymbolizer(b base, n *SymbolizerNode) (*PointSymbolizer, error) {
	s := &PointSymbolizer{
		base:    b,
		mark:    MarkSquare,
		size:    Value{Magnitude: DefaultGraphicSize, Unit: Pixel},
		opacity: 1,
	}
	g := n.Graphic
	if g == nil {
		g = &GraphicNode{}
	}
	var err error
	if g.Mark == nil {
		s.fill = ParametersFromMap(nil)
		s.stroke = ParametersFromMap(nil)
	} else {
		if name := strings.ToLower(strings.TrimSpace(g.Mark.WellKnownName)); name != "" {
			if _, ok := markOutlines[name]; !ok {
				return nil, &ParameterError{Name: "WellKnownName", Value: g.Mark.WellKnownName, Err: ErrInvalidStyleValue}
			}
			s.mark = name
		}
		if g.Mark.Fill != nil {
			if s.fill, err = b.parameters(g.Mark.Fill.Parameters); err != nil {
				return nil, err
			}
		}
		if g.Mark.Stroke != nil {
			if s.stroke, err = b.parameters(g.Mark.Stroke.Parameters); err != nil {
				return nil, err
			}
		}
	}
	if s.size, err = b.resolveValue(g.Size, s.size); err != nil {
		return nil, fmt.Errorf("size: %w", err)
	}
	if s.rotation, err = b.resolveFloat(g.Rotation, "rotation", 0); err != nil {
		return nil, err
	}
	if s.opacity, err = b.resolveFloat(g.Opacity, "opacity", 1); err != nil {
		return nil, err
	}
	return s, nil
}

// Mark returns the well-known name of the drawn mark.
func (s *PointSymbolizer) Mark() string { return s.mark }

func (s *PointSymbolizer) Size() Value { return s.size }

// Rotation is in degrees clockwise.
func (s *PointSymbolizer) Rotation() float64 { return s.rotation }

// MarkShape returns the outline of the mark centred on at.
func (s *PointSymbolizer) MarkShape(at Coord, size float64) Shape {
	outline := rotate(markOutlines[s.mark], s.rotation*math.Pi/180)
	path := make([]Coord, len(outline))
	for i, c := range outline {
		path[i] = Coord{at.X + c.X*size, at.Y + c.Y*size}
	}
	return Shape{Paths: [][]Coord{path}, Closed: true}
}

func (s *PointSymbolizer) Symbolize(t Target, f Feature) error {
	var (
		paint           Paint
		st              Stroke
		filled, stroked bool
		err             error
	)
	if s.fill != nil {
		if paint, err = s.opts.paints.Paint(s.fill); err != nil {
			return err
		}
		paint.Opacity *= s.opacity
		filled = true
	}
	if s.stroke != nil {
		if st, err = s.opts.strokes.Stroke(s.stroke, s.uom); err != nil {
			return err
		}
		if st, err = st.Pixels(t.MetresPerPixel()); err != nil {
			return err
		}
		st.Opacity *= s.opacity
		stroked = true
	}
	size, err := s.size.Pixels(t.MetresPerPixel())
	if err != nil {
		return err
	}
	if (!filled && !stroked) || size <= 0 {
		return nil
	}
	shapes, err := s.shapes(t, f)
	if err != nil {
		return err
	}
	points := anchors(shapes)
	s.log.Debug("Marking", zap.String("feature", f.ID()), zap.String("mark", s.mark), zap.Int("points", len(points)))
	for _, at := range points {
		m := s.MarkShape(at, size)
		if filled {
			if err := t.FillShape(m, paint); err != nil {
				return err
			}
		}
		if stroked {
			if err := t.StrokeShape(m, st); err != nil {
				return err
			}
		}
	}
	return nil
}

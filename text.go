package sld

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/flywave/go-sld/color"
)

// DefaultHaloRadius is the halo radius used when a halo has none.
const DefaultHaloRadius = 1.0

// TextSymbolizer places a literal label on a geometry. Point placement
// anchors the label on the point, middle or centroid of the geometry;
// line placement follows the direction of the line at its middle.
type TextSymbolizer struct {
	base
	label string
	font  *Parameters
	fill  *Parameters

	halo       bool
	haloFill   *Parameters
	haloRadius Value

	linePlaced bool
	offset     Value
	anchor     Coord
	dx, dy     Value
	rotation   float64
}

var _ Symbolizer = (*TextSymbolizer)(nil)

func newTextSymbolizer(b base, n *SymbolizerNode) (*TextSymbolizer, error) {
	s := &TextSymbolizer{base: b, anchor: Coord{0, 0.5}, dx: Zero(Pixel), dy: Zero(Pixel), offset: Zero(Pixel)}
	var err error
	if s.label, _, err = literalOf(b.opts.facade, n.Label); err != nil {
		return nil, fmt.Errorf("label: %w", err)
	}
	if n.Font != nil {
		if s.font, err = b.parameters(n.Font.Parameters); err != nil {
			return nil, err
		}
	}
	if n.Fill != nil {
		if s.fill, err = b.parameters(n.Fill.Parameters); err != nil {
			return nil, err
		}
	}
	if h := n.Halo; h != nil {
		s.halo = true
		if s.haloRadius, err = b.resolveValue(h.Radius, Value{Magnitude: DefaultHaloRadius, Unit: b.uom}); err != nil {
			return nil, fmt.Errorf("halo radius: %w", err)
		}
		if h.Fill != nil {
			if s.haloFill, err = b.parameters(h.Fill.Parameters); err != nil {
				return nil, err
			}
		}
	}
	if lp := n.LabelPlacement; lp != nil {
		switch {
		case lp.Line != nil:
			s.linePlaced = true
			s.anchor = Coord{0.5, 0.5}
			if s.offset, err = b.resolvePerpendicularOffset(lp.Line.PerpendicularOffset); err != nil {
				return nil, err
			}
		case lp.Point != nil:
			if err := s.pointPlacement(lp.Point); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func (s *TextSymbolizer) pointPlacement(pp *PointPlacementNode) error {
	var err error
	if a := pp.Anchor; a != nil {
		if s.anchor.X, err = s.resolveFloat(a.X, "anchor x", s.anchor.X); err != nil {
			return err
		}
		if s.anchor.Y, err = s.resolveFloat(a.Y, "anchor y", s.anchor.Y); err != nil {
			return err
		}
	}
	if s.dx, s.dy, err = s.displacement(pp.Displacement); err != nil {
		return err
	}
	s.rotation, err = s.resolveFloat(pp.Rotation, "rotation", 0)
	return err
}

// Label returns the label text. Symbolizers with an empty label draw
// nothing.
func (s *TextSymbolizer) Label() string { return s.label }

// LinePlaced reports whether labels follow the geometry.
func (s *TextSymbolizer) LinePlaced() bool { return s.linePlaced }

// Font resolves the font with its size in the symbolizer's unit.
func (s *TextSymbolizer) Font() (Font, Value, error) {
	f := Font{Family: s.font.FontFamily()}
	size, err := s.font.FontSize()
	if err != nil {
		return Font{}, Value{}, err
	}
	if f.Style, err = s.font.FontStyle(); err != nil {
		return Font{}, Value{}, err
	}
	if f.Weight, err = s.font.FontWeight(); err != nil {
		return Font{}, Value{}, err
	}
	return f, Value{Magnitude: size, Unit: s.uom}, nil
}

// Fill resolves the glyph paint, solid black when no fill is given.
func (s *TextSymbolizer) Fill() (Paint, error) {
	if s.fill == nil {
		return Paint{Color: color.Black, Opacity: 1}, nil
	}
	return s.opts.paints.Paint(s.fill)
}

// Halo resolves the halo paint, white unless a fill color is given. ok is
// false when the symbolizer has no halo.
func (s *TextSymbolizer) Halo() (p Paint, radius Value, ok bool, err error) {
	if !s.halo {
		return Paint{}, Value{}, false, nil
	}
	if s.haloFill == nil {
		return Paint{Color: color.White, Opacity: 1}, s.haloRadius, true, nil
	}
	if p, err = s.opts.paints.Paint(s.haloFill); err != nil {
		return Paint{}, Value{}, false, err
	}
	if _, explicit := s.haloFill.get(ParamFill); !explicit {
		p.Color = color.White
	}
	return p, s.haloRadius, true, nil
}

func (s *TextSymbolizer) resolve(mpp float64) (Label, error) {
	font, size, err := s.Font()
	if err != nil {
		return Label{}, err
	}
	if font.Size, err = size.Pixels(mpp); err != nil {
		return Label{}, err
	}
	l := Label{Text: s.label, Font: font, Anchor: s.anchor, Rotation: s.rotation}
	if l.Fill, err = s.Fill(); err != nil {
		return Label{}, err
	}
	paint, radius, ok, err := s.Halo()
	if err != nil {
		return Label{}, err
	}
	if ok {
		r, err := radius.Pixels(mpp)
		if err != nil {
			return Label{}, err
		}
		l.Halo = &Halo{Radius: r, Fill: paint}
	}
	return l, nil
}

func (s *TextSymbolizer) Symbolize(t Target, f Feature) error {
	if s.label == "" {
		return nil
	}
	mpp := t.MetresPerPixel()
	proto, err := s.resolve(mpp)
	if err != nil {
		return err
	}
	px, err := pixels(t, s.offset, s.dx, s.dy)
	if err != nil {
		return err
	}
	offset, dx, dy := px[0], px[1], -px[2]

	shapes, err := s.shapes(t, f)
	if err != nil {
		return err
	}
	var labels []Label
	for _, sh := range shapes {
		if len(sh.Paths) == 0 || len(sh.Paths[0]) == 0 {
			continue
		}
		l := proto
		if s.linePlaced && !sh.Closed && len(sh.Paths[0]) > 1 {
			at, angle := alongPath(sh.Paths[0], 0.5)
			sin, cos := math.Sincos(angle)
			l.At = Coord{at.X + sin*offset, at.Y - cos*offset}
			l.Rotation = uprightDegrees(angle * 180 / math.Pi)
		} else {
			at := anchors([]Shape{sh})[0]
			l.At = Coord{at.X + dx, at.Y + dy}
		}
		labels = append(labels, l)
	}
	s.log.Debug("Labelling", zap.String("feature", f.ID()), zap.String("label", s.label), zap.Int("labels", len(labels)))
	for _, l := range labels {
		if err := t.DrawLabel(l); err != nil {
			return err
		}
	}
	return nil
}

// uprightDegrees keeps a rotation within (-90, 90] so text never reads
// upside down.
func uprightDegrees(d float64) float64 {
	for d > 90 {
		d -= 180
	}
	for d <= -90 {
		d += 180
	}
	return d
}

package sld

import (
	"go.uber.org/zap"
)

// PolygonSymbolizer fills the interior of a geometry and strokes its
// outline. Either part is skipped when the style does not declare it.
type PolygonSymbolizer struct {
	base
	fill   *Parameters
	stroke *Parameters
	offset Value
	dx, dy Value
}

var _ Symbolizer = (*PolygonSymbolizer)(nil)

func newPolygonSymbolizer(b base, n *SymbolizerNode) (*PolygonSymbolizer, error) {
	s := &PolygonSymbolizer{base: b}
	var err error
	if n.Fill != nil {
		if s.fill, err = b.parameters(n.Fill.Parameters); err != nil {
			return nil, err
		}
	}
	if n.Stroke != nil {
		if s.stroke, err = b.parameters(n.Stroke.Parameters); err != nil {
			return nil, err
		}
	}
	if s.offset, err = b.resolvePerpendicularOffset(n.PerpendicularOffset); err != nil {
		return nil, err
	}
	if s.dx, s.dy, err = b.displacement(n.Displacement); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PolygonSymbolizer) PerpendicularOffset() Value {
	return s.offset
}

// Displacement returns the shift of the polygon, y pointing up.
func (s *PolygonSymbolizer) Displacement() (x, y Value) {
	return s.dx, s.dy
}

// Fill resolves the fill paint. ok is false when the polygon is not filled.
func (s *PolygonSymbolizer) Fill() (p Paint, ok bool, err error) {
	if s.fill == nil {
		return Paint{}, false, nil
	}
	p, err = s.opts.paints.Paint(s.fill)
	return p, err == nil, err
}

// Stroke resolves the outline stroke. ok is false when there is none.
func (s *PolygonSymbolizer) Stroke() (st Stroke, ok bool, err error) {
	if s.stroke == nil {
		return Stroke{}, false, nil
	}
	st, err = s.opts.strokes.Stroke(s.stroke, s.uom)
	return st, err == nil, err
}

func (s *PolygonSymbolizer) Symbolize(t Target, f Feature) error {
	paint, filled, err := s.Fill()
	if err != nil {
		return err
	}
	st, stroked, err := s.Stroke()
	if err != nil {
		return err
	}
	if !filled && !stroked {
		return nil
	}
	mpp := t.MetresPerPixel()
	if stroked {
		if st, err = st.Pixels(mpp); err != nil {
			return err
		}
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
	s.log.Debug("Painting", zap.String("feature", f.ID()), zap.Int("shapes", len(shapes)))
	for _, sh := range shapes {
		sh = translateShape(offsetShape(sh, offset), dx, dy)
		if filled && sh.Closed {
			if err := t.FillShape(sh, paint); err != nil {
				return err
			}
		}
		if stroked {
			if err := t.StrokeShape(sh, st); err != nil {
				return err
			}
		}
	}
	return nil
}

package sld

import (
	"go.uber.org/zap"
)

// LineSymbolizer strokes the outline of a geometry, optionally shifted
// sideways by a perpendicular offset.
type LineSymbolizer struct {
	base
	stroke *Parameters
	offset Value
}

var _ Symbolizer = (*LineSymbolizer)(nil)

func newLineSymbolizer(b base, n *SymbolizerNode) (*LineSymbolizer, error) {
	s := &LineSymbolizer{base: b}
	if n.Stroke != nil {
		p, err := b.parameters(n.Stroke.Parameters)
		if err != nil {
			return nil, err
		}
		s.stroke = p
	}
	offset, err := b.resolvePerpendicularOffset(n.PerpendicularOffset)
	if err != nil {
		return nil, err
	}
	s.offset = offset
	return s, nil
}

// PerpendicularOffset returns the sideways shift of the line.
func (s *LineSymbolizer) PerpendicularOffset() Value {
	return s.offset
}

// Stroke resolves the stroke of the symbolizer. ok is false when the
// symbolizer has no stroke and draws nothing.
func (s *LineSymbolizer) Stroke() (st Stroke, ok bool, err error) {
	if s.stroke == nil {
		return Stroke{}, false, nil
	}
	st, err = s.opts.strokes.Stroke(s.stroke, s.uom)
	return st, err == nil, err
}

func (s *LineSymbolizer) Symbolize(t Target, f Feature) error {
	st, ok, err := s.Stroke()
	if err != nil || !ok {
		return err
	}
	mpp := t.MetresPerPixel()
	if st, err = st.Pixels(mpp); err != nil {
		return err
	}
	offset, err := s.offset.Pixels(mpp)
	if err != nil {
		return err
	}
	shapes, err := s.shapes(t, f)
	if err != nil {
		return err
	}
	s.log.Debug("Stroking", zap.String("feature", f.ID()), zap.Int("shapes", len(shapes)))
	for _, sh := range shapes {
		if err := t.StrokeShape(offsetShape(sh, offset), st); err != nil {
			return err
		}
	}
	return nil
}

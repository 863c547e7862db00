// Package render draws the layers of a project through symbolizers onto
// a Canvas.
package render

import (
	"fmt"
	"image"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	sld "github.com/flywave/go-sld"
	"github.com/flywave/go-sld/color"
)

// Canvas is a drawing backend working in device pixels.
type Canvas interface {
	Size() (width, height int)
	Clear(c color.Color)
	StrokeShape(s sld.Shape, st sld.Stroke) error
	FillShape(s sld.Shape, p sld.Paint) error
	DrawLabel(l sld.Label) error
	Image() image.Image
}

// target binds a canvas to a view to form an sld.Target.
type target struct {
	Canvas
	*View
}

var _ sld.Target = target{}

type layer struct {
	sld.Layer
	styles []*sld.Style
}

// Map collects layers and their styles and renders them in the order
// they were added.
type Map struct {
	layers     []layer
	background color.Color
	extent     sld.Envelope
	log        *zap.Logger
}

func New(log *zap.Logger) *Map {
	if log == nil {
		log = zap.NewNop()
	}
	return &Map{
		background: color.White,
		extent:     sld.EmptyEnvelope(),
		log:        log.Named("render"),
	}
}

func (m *Map) AddLayer(l sld.Layer, styles []*sld.Style) {
	m.layers = append(m.layers, layer{Layer: l, styles: styles})
}

func (m *Map) SetBackgroundColor(c color.Color) {
	m.background = c
}

func (m *Map) SetExtent(e sld.Envelope) {
	m.extent = e
}

// Layers returns the ids of the layers in drawing order.
func (m *Map) Layers() []string {
	ids := make([]string, len(m.layers))
	for i, l := range m.layers {
		ids[i] = l.ID
	}
	return ids
}

// Extent returns the extent set on the map or else the bounds of all
// layer features.
func (m *Map) Extent() (sld.Envelope, error) {
	if !m.extent.IsEmpty() {
		return m.extent, nil
	}
	e := sld.EmptyEnvelope()
	for _, l := range m.layers {
		if l.Datasource == nil {
			continue
		}
		features, err := l.Datasource.Features(sld.EmptyEnvelope())
		if err != nil {
			return e, fmt.Errorf("layer %s: %w", l.ID, err)
		}
		for _, f := range features {
			if g := f.DefaultGeometry(); g != nil {
				e = e.Union(g.Bounds())
			}
		}
	}
	return e, nil
}

// Render clears c with the background color and draws every active
// layer in scale. Failures of single features are logged and returned
// together after all layers were drawn.
func (m *Map) Render(c Canvas) error {
	extent, err := m.Extent()
	if err != nil {
		return err
	}
	w, h := c.Size()
	v, err := NewView(extent, w, h)
	if err != nil {
		return err
	}
	c.Clear(m.background)

	t := target{Canvas: c, View: v}
	scale := v.ScaleDenominator()
	m.log.Debug("Rendering", zap.Float64("scale", scale), zap.Int("layers", len(m.layers)))

	var errs error
	for _, l := range m.layers {
		if !l.InScale(scale) {
			m.log.Debug("Layer out of scale", zap.String("layer", l.ID))
			continue
		}
		errs = multierr.Append(errs, m.renderLayer(t, l, scale))
	}
	return errs
}

func (m *Map) renderLayer(t target, l layer, scale float64) error {
	if l.Datasource == nil {
		m.log.Warn("Layer has no datasource", zap.String("layer", l.ID))
		return nil
	}
	var rules []*sld.Rule
	for _, s := range l.styles {
		rules = append(rules, s.RulesAt(scale)...)
	}
	if len(rules) == 0 {
		return nil
	}
	values := sld.EqualityValues(rules)

	features, err := l.Datasource.Features(t.Extent())
	if err != nil {
		return fmt.Errorf("layer %s: %w", l.ID, err)
	}
	var errs error
	drawn := 0
	for _, f := range features {
		if !sld.Prefilter(values, f) {
			continue
		}
		drawn++
		for _, s := range l.styles {
			if err := s.Render(t, f, scale); err != nil {
				m.log.Warn("Unable to draw feature", zap.String("layer", l.ID), zap.String("feature", f.ID()), zap.Error(err))
				errs = multierr.Append(errs, fmt.Errorf("layer %s: feature %s: %w", l.ID, f.ID(), err))
			}
		}
	}
	m.log.Debug("Layer drawn", zap.String("layer", l.ID), zap.Int("features", len(features)), zap.Int("drawn", drawn))
	return errs
}

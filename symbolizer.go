package sld

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Kind is the closed set of symbolizer variants.
type Kind int

const (
	KindLine Kind = iota + 1
	KindPolygon
	KindPoint
	KindText
)

var kindTags = map[string]Kind{
	"linesymbolizer":    KindLine,
	"polygonsymbolizer": KindPolygon,
	"pointsymbolizer":   KindPoint,
	"textsymbolizer":    KindText,
}

// KindFromTag maps an element name such as LineSymbolizer to its Kind.
func KindFromTag(tag string) (Kind, bool) {
	k, ok := kindTags[strings.ToLower(tag)]
	return k, ok
}

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "LineSymbolizer"
	case KindPolygon:
		return "PolygonSymbolizer"
	case KindPoint:
		return "PointSymbolizer"
	case KindText:
		return "TextSymbolizer"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Symbolizer turns a feature into draw calls on a Target. Symbolizers are
// immutable once built and may be used from several goroutines, each with
// its own Target.
type Symbolizer interface {
	Kind() Kind
	Name() string
	UOM() UOM
	// Geometry returns the name of the geometry property to draw. ok is
	// false when the feature's default geometry is used.
	Geometry() (name string, ok bool)
	// Symbolize draws f. All style parameters are resolved before the
	// first draw call, so a failing call leaves the target untouched.
	Symbolize(t Target, f Feature) error
}

type options struct {
	facade  DocumentFacade
	strokes StrokeFactory
	paints  PaintFactory
	log     *zap.Logger
}

// Option configures symbolizer construction.
type Option func(*options)

// WithFacade sets the accessor used to read literal values.
func WithFacade(f DocumentFacade) Option {
	return func(o *options) { o.facade = f }
}

func WithStrokeFactory(f StrokeFactory) Option {
	return func(o *options) { o.strokes = f }
}

func WithPaintFactory(f PaintFactory) Option {
	return func(o *options) { o.paints = f }
}

func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

func newOptions(opts []Option) options {
	o := options{
		facade:  LiteralFacade{},
		strokes: DefaultStrokeFactory{},
		paints:  DefaultPaintFactory{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	return o
}

// NewSymbolizer builds the symbolizer variant selected by n.Kind.
func NewSymbolizer(n *SymbolizerNode, opts ...Option) (Symbolizer, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil node", ErrUnknownSymbolizer)
	}
	o := newOptions(opts)
	b, err := newBase(n, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.Kind, err)
	}
	var s Symbolizer
	switch n.Kind {
	case KindLine:
		s, err = newLineSymbolizer(b, n)
	case KindPolygon:
		s, err = newPolygonSymbolizer(b, n)
	case KindPoint:
		s, err = newPointSymbolizer(b, n)
	case KindText:
		s, err = newTextSymbolizer(b, n)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbolizer, n.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.Kind, err)
	}
	return s, nil
}

// base carries the state shared by all symbolizer variants.
type base struct {
	kind        Kind
	name        string
	uom         UOM
	geometry    string
	hasGeometry bool
	opts        options
	log         *zap.Logger
}

func newBase(n *SymbolizerNode, o options) (base, error) {
	b := base{kind: n.Kind, name: n.Name, uom: Pixel, opts: o}
	if n.UOM != "" {
		u, err := ParseUOM(n.UOM)
		if err != nil {
			return base{}, err
		}
		b.uom = u
	}
	g, ok, err := b.resolveGeometrySelector(n.Geometry)
	if err != nil {
		return base{}, err
	}
	b.geometry, b.hasGeometry = g, ok
	b.log = o.log.Named("symbolizer").With(zap.Stringer("kind", n.Kind), zap.String("name", n.Name))
	return b, nil
}

func (b *base) Kind() Kind   { return b.kind }
func (b *base) Name() string { return b.name }
func (b *base) UOM() UOM     { return b.uom }

func (b *base) Geometry() (string, bool) {
	return b.geometry, b.hasGeometry
}

// resolveGeometrySelector returns the property name of a se:Geometry
// element. Only a plain property name is supported, not a path.
func (b *base) resolveGeometrySelector(g *GeometryNode) (string, bool, error) {
	if g == nil || g.PropertyName == nil {
		return "", false, nil
	}
	s, _, err := b.opts.facade.Literal(g.PropertyName.Content)
	if err != nil {
		return "", false, fmt.Errorf("geometry: %w", err)
	}
	return s, true, nil
}

// resolvePerpendicularOffset parses an offset in the symbolizer's unit.
// Without a value the offset is zero pixels.
func (b *base) resolvePerpendicularOffset(pv *ParameterValue) (Value, error) {
	return b.resolveValue(pv, Zero(Pixel))
}

func (b *base) resolveValue(pv *ParameterValue, dflt Value) (Value, error) {
	s, ok, err := literalOf(b.opts.facade, pv)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return dflt, nil
	}
	return ParseValue(s, b.uom)
}

func (b *base) resolveFloat(pv *ParameterValue, name string, dflt float64) (float64, error) {
	s, ok, err := literalOf(b.opts.facade, pv)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if !ok {
		return dflt, nil
	}
	v, err := ParseValue(s, Pixel)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v.Magnitude, nil
}

func (b *base) parameters(params []SvgParameter) (*Parameters, error) {
	return ParametersFromList(params, b.opts.facade)
}

// displacement resolves a se:Displacement in the symbolizer's unit.
func (b *base) displacement(n *DisplacementNode) (x, y Value, err error) {
	x, y = Zero(Pixel), Zero(Pixel)
	if n == nil {
		return x, y, nil
	}
	if x, err = b.resolveValue(n.X, x); err != nil {
		return x, y, fmt.Errorf("displacement: %w", err)
	}
	if y, err = b.resolveValue(n.Y, y); err != nil {
		return x, y, fmt.Errorf("displacement: %w", err)
	}
	return x, y, nil
}

// selectGeometry picks the geometry to draw from f.
func (b *base) selectGeometry(f Feature) (Geometry, error) {
	if !b.hasGeometry {
		return f.DefaultGeometry(), nil
	}
	v, ok := f.Property(b.geometry)
	if !ok {
		return nil, fmt.Errorf("%w: feature %s has no property %q", ErrGeometryNotFound, f.ID(), b.geometry)
	}
	g, ok := v.(Geometry)
	if !ok {
		return nil, fmt.Errorf("%w: property %q of feature %s is a %T", ErrGeometryNotFound, b.geometry, f.ID(), v)
	}
	return g, nil
}

// shapes selects the geometry of f and adapts it for t. It returns no
// shapes for features without geometry.
func (b *base) shapes(t Target, f Feature) ([]Shape, error) {
	g, err := b.selectGeometry(f)
	if err != nil {
		return nil, err
	}
	if g == nil {
		b.log.Debug("Feature without geometry, skipping", zap.String("feature", f.ID()))
		return nil, nil
	}
	return t.Shapes(g), nil
}

// pixels converts resolved values to pixels using the scale of t.
func pixels(t Target, vs ...Value) ([]float64, error) {
	out := make([]float64, len(vs))
	for i, v := range vs {
		p, err := v.Pixels(t.MetresPerPixel())
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

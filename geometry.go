package sld

import (
	"math"
)

// Coord is a position in map or device coordinates.
type Coord struct {
	X, Y float64
}

// Envelope is an axis aligned bounding box.
type Envelope struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyEnvelope returns an envelope that Extend can grow from.
func EmptyEnvelope() Envelope {
	return Envelope{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
}

func (e Envelope) IsEmpty() bool {
	return e.MinX > e.MaxX || e.MinY > e.MaxY
}

func (e Envelope) Width() float64  { return e.MaxX - e.MinX }
func (e Envelope) Height() float64 { return e.MaxY - e.MinY }

func (e Envelope) Extend(c Coord) Envelope {
	e.MinX = math.Min(e.MinX, c.X)
	e.MinY = math.Min(e.MinY, c.Y)
	e.MaxX = math.Max(e.MaxX, c.X)
	e.MaxY = math.Max(e.MaxY, c.Y)
	return e
}

func (e Envelope) Union(o Envelope) Envelope {
	if o.IsEmpty() {
		return e
	}
	return e.Extend(Coord{o.MinX, o.MinY}).Extend(Coord{o.MaxX, o.MaxY})
}

func (e Envelope) Intersects(o Envelope) bool {
	return !(e.IsEmpty() || o.IsEmpty() || o.MinX > e.MaxX || o.MaxX < e.MinX || o.MinY > e.MaxY || o.MaxY < e.MinY)
}

// Geometry is a feature geometry in map coordinates.
type Geometry interface {
	Type() GeometryType
	Bounds() Envelope
}

type (
	PointGeometry      Coord
	LineStringGeometry []Coord
	// PolygonGeometry holds the exterior ring followed by the holes.
	PolygonGeometry         [][]Coord
	MultiPointGeometry      []Coord
	MultiLineStringGeometry []LineStringGeometry
	MultiPolygonGeometry    []PolygonGeometry
	CollectionGeometry      []Geometry
)

func (PointGeometry) Type() GeometryType           { return Point }
func (LineStringGeometry) Type() GeometryType      { return LineString }
func (PolygonGeometry) Type() GeometryType         { return Polygon }
func (MultiPointGeometry) Type() GeometryType      { return MultiPoint }
func (MultiLineStringGeometry) Type() GeometryType { return MultiLineString }
func (MultiPolygonGeometry) Type() GeometryType    { return MultiPolygon }
func (CollectionGeometry) Type() GeometryType      { return GeometryCollection }

func (g PointGeometry) Bounds() Envelope {
	return EmptyEnvelope().Extend(Coord(g))
}

func (g LineStringGeometry) Bounds() Envelope {
	return coordsBounds(g)
}

func (g PolygonGeometry) Bounds() Envelope {
	if len(g) == 0 {
		return EmptyEnvelope()
	}
	return coordsBounds(g[0])
}

func (g MultiPointGeometry) Bounds() Envelope {
	return coordsBounds(g)
}

func (g MultiLineStringGeometry) Bounds() Envelope {
	e := EmptyEnvelope()
	for _, l := range g {
		e = e.Union(l.Bounds())
	}
	return e
}

func (g MultiPolygonGeometry) Bounds() Envelope {
	e := EmptyEnvelope()
	for _, p := range g {
		e = e.Union(p.Bounds())
	}
	return e
}

func (g CollectionGeometry) Bounds() Envelope {
	e := EmptyEnvelope()
	for _, c := range g {
		e = e.Union(c.Bounds())
	}
	return e
}

func coordsBounds(cs []Coord) Envelope {
	e := EmptyEnvelope()
	for _, c := range cs {
		e = e.Extend(c)
	}
	return e
}

// Feature is a single map feature as seen by symbolizers.
type Feature interface {
	ID() string
	// DefaultGeometry returns the primary geometry, or nil.
	DefaultGeometry() Geometry
	Property(name string) (interface{}, bool)
}

// MapFeature is a Feature backed by a property map.
type MapFeature struct {
	FID        string
	Geometry   Geometry
	Properties map[string]interface{}
}

func (f *MapFeature) ID() string                { return f.FID }
func (f *MapFeature) DefaultGeometry() Geometry { return f.Geometry }

func (f *MapFeature) Property(name string) (interface{}, bool) {
	v, ok := f.Properties[name]
	return v, ok
}

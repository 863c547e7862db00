package render

import (
	"fmt"
	"math"

	sld "github.com/flywave/go-sld"
)

// StandardPixelSize is the size of a rendering pixel in metres used to
// derive scale denominators.
const StandardPixelSize = 0.00028

// View maps an extent in projected map units (metres) onto a device of
// Width x Height pixels with y pointing down. The extent is centred and
// scaled uniformly to fit.
type View struct {
	Width, Height int

	center sld.Coord
	mpp    float64
}

func NewView(extent sld.Envelope, width, height int) (*View, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid view size %dx%d", width, height)
	}
	if extent.IsEmpty() {
		return nil, fmt.Errorf("empty extent")
	}
	mpp := math.Max(extent.Width()/float64(width), extent.Height()/float64(height))
	if mpp == 0 {
		// a single point, show a square kilometre around it
		mpp = 1000 / math.Min(float64(width), float64(height))
	}
	return &View{
		Width:  width,
		Height: height,
		center: sld.Coord{X: (extent.MinX + extent.MaxX) / 2, Y: (extent.MinY + extent.MaxY) / 2},
		mpp:    mpp,
	}, nil
}

func (v *View) MetresPerPixel() float64 {
	return v.mpp
}

// ScaleDenominator returns the map scale for the standard pixel size.
func (v *View) ScaleDenominator() float64 {
	return v.mpp / StandardPixelSize
}

// Extent returns the map area covered by the device.
func (v *View) Extent() sld.Envelope {
	hw, hh := float64(v.Width)*v.mpp/2, float64(v.Height)*v.mpp/2
	return sld.Envelope{MinX: v.center.X - hw, MinY: v.center.Y - hh, MaxX: v.center.X + hw, MaxY: v.center.Y + hh}
}

func (v *View) ToDevice(c sld.Coord) sld.Coord {
	return sld.Coord{
		X: float64(v.Width)/2 + (c.X-v.center.X)/v.mpp,
		Y: float64(v.Height)/2 - (c.Y-v.center.Y)/v.mpp,
	}
}

func (v *View) path(cs []sld.Coord, closed bool) []sld.Coord {
	n := len(cs)
	if closed && n > 1 && cs[0] == cs[n-1] {
		n--
	}
	out := make([]sld.Coord, n)
	for i := 0; i < n; i++ {
		out[i] = v.ToDevice(cs[i])
	}
	return out
}

// Shapes converts g to device shapes, one per part of multi geometries.
func (v *View) Shapes(g sld.Geometry) []sld.Shape {
	switch t := g.(type) {
	case sld.PointGeometry:
		return []sld.Shape{{Paths: [][]sld.Coord{{v.ToDevice(sld.Coord(t))}}}}
	case sld.MultiPointGeometry:
		out := make([]sld.Shape, len(t))
		for i, c := range t {
			out[i] = sld.Shape{Paths: [][]sld.Coord{{v.ToDevice(c)}}}
		}
		return out
	case sld.LineStringGeometry:
		return []sld.Shape{{Paths: [][]sld.Coord{v.path(t, false)}}}
	case sld.MultiLineStringGeometry:
		out := make([]sld.Shape, len(t))
		for i, l := range t {
			out[i] = sld.Shape{Paths: [][]sld.Coord{v.path(l, false)}}
		}
		return out
	case sld.PolygonGeometry:
		return []sld.Shape{v.polygon(t)}
	case sld.MultiPolygonGeometry:
		out := make([]sld.Shape, len(t))
		for i, p := range t {
			out[i] = v.polygon(p)
		}
		return out
	case sld.CollectionGeometry:
		var out []sld.Shape
		for _, part := range t {
			out = append(out, v.Shapes(part)...)
		}
		return out
	}
	return nil
}

func (v *View) polygon(p sld.PolygonGeometry) sld.Shape {
	s := sld.Shape{Closed: true, Paths: make([][]sld.Coord, len(p))}
	for i, ring := range p {
		s.Paths[i] = v.path(ring, true)
	}
	return s
}

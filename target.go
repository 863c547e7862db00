package sld

import (
	"math"
)

// Shape is a drawable outline in device coordinates. A closed shape with
// several paths is filled with the even-odd rule.
type Shape struct {
	Paths  [][]Coord
	Closed bool
}

// ShapeAdapter converts map geometries into device shapes.
type ShapeAdapter interface {
	Shapes(g Geometry) []Shape
}

// Target is the drawing surface symbolizers render onto. Lengths handed
// to the drawing methods are in device pixels.
type Target interface {
	ShapeAdapter
	// MetresPerPixel is the ground size of one device pixel.
	MetresPerPixel() float64
	StrokeShape(s Shape, st Stroke) error
	FillShape(s Shape, p Paint) error
	DrawLabel(l Label) error
}

// Halo is the outline drawn around label glyphs.
type Halo struct {
	Radius float64
	Fill   Paint
}

// Label is a resolved text label. At is the device position the Anchor
// (fractions of the label box, 0,0 at bottom left) is placed on.
// Rotation is in degrees clockwise.
type Label struct {
	Text     string
	At       Coord
	Anchor   Coord
	Rotation float64
	Font     Font
	Fill     Paint
	Halo     *Halo
}

// anchors returns the positions point-like symbols are placed on: points
// as they are, the middle of open paths and the centroid of the outer
// path of closed shapes.
func anchors(shapes []Shape) []Coord {
	var out []Coord
	for _, s := range shapes {
		if len(s.Paths) == 0 || len(s.Paths[0]) == 0 {
			continue
		}
		path := s.Paths[0]
		switch {
		case len(path) == 1:
			out = append(out, path[0])
		case s.Closed:
			out = append(out, centroid(path))
		default:
			c, _ := alongPath(path, 0.5)
			out = append(out, c)
		}
	}
	return out
}

// alongPath returns the point at fraction t of the path length and the
// direction of the segment it lies on, in radians.
func alongPath(path []Coord, t float64) (Coord, float64) {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += dist(path[i-1], path[i])
	}
	if total == 0 {
		return path[0], 0
	}
	target := total * t
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		d := dist(a, b)
		if d > 0 && target <= d {
			f := target / d
			return Coord{a.X + (b.X-a.X)*f, a.Y + (b.Y-a.Y)*f}, math.Atan2(b.Y-a.Y, b.X-a.X)
		}
		target -= d
	}
	n := len(path)
	a, b := path[n-2], path[n-1]
	return b, math.Atan2(b.Y-a.Y, b.X-a.X)
}

func dist(a, b Coord) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// signedArea is positive when the ring turns counter-clockwise in a
// y-up coordinate system.
func signedArea(ring []Coord) float64 {
	a := 0.0
	for i := range ring {
		j := (i + 1) % len(ring)
		a += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return a / 2
}

func centroid(ring []Coord) Coord {
	a := signedArea(ring)
	if a == 0 {
		e := coordsBounds(ring)
		return Coord{(e.MinX + e.MaxX) / 2, (e.MinY + e.MaxY) / 2}
	}
	var cx, cy float64
	for i := range ring {
		j := (i + 1) % len(ring)
		f := ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
		cx += (ring[i].X + ring[j].X) * f
		cy += (ring[i].Y + ring[j].Y) * f
	}
	return Coord{cx / (6 * a), cy / (6 * a)}
}

// offsetPath shifts path sideways by d. Positive d moves to the left of
// the direction of travel as seen on a y-down device.
func offsetPath(path []Coord, d float64, closed bool) []Coord {
	n := len(path)
	if d == 0 || n < 2 {
		return path
	}
	normal := func(a, b Coord) Coord {
		l := dist(a, b)
		if l == 0 {
			return Coord{}
		}
		return Coord{(b.Y - a.Y) / l, -(b.X - a.X) / l}
	}
	out := make([]Coord, n)
	for i := range path {
		var prev, next Coord
		hasPrev, hasNext := i > 0 || closed, i < n-1 || closed
		if hasPrev {
			prev = normal(path[(i-1+n)%n], path[i])
		}
		if hasNext {
			next = normal(path[i], path[(i+1)%n])
		}
		switch {
		case !hasPrev:
			prev = next
		case !hasNext:
			next = prev
		}
		m := Coord{prev.X + next.X, prev.Y + next.Y}
		ml := math.Hypot(m.X, m.Y)
		if ml < 1e-9 {
			out[i] = Coord{path[i].X + prev.X*d, path[i].Y + prev.Y*d}
			continue
		}
		m = Coord{m.X / ml, m.Y / ml}
		// miter length, limited so sharp corners do not spike
		cos := m.X*prev.X + m.Y*prev.Y
		scale := d
		if cos > 0.25 {
			scale = d / cos
		} else {
			scale = d * 4
		}
		out[i] = Coord{path[i].X + m.X*scale, path[i].Y + m.Y*scale}
	}
	return out
}

func offsetShape(s Shape, d float64) Shape {
	if d == 0 {
		return s
	}
	out := Shape{Closed: s.Closed, Paths: make([][]Coord, len(s.Paths))}
	for i, p := range s.Paths {
		pd := d
		if s.Closed && signedArea(p) < 0 {
			// grow rings outwards whatever their orientation
			pd = -d
		}
		out.Paths[i] = offsetPath(p, pd, s.Closed)
	}
	return out
}

func translateShape(s Shape, dx, dy float64) Shape {
	if dx == 0 && dy == 0 {
		return s
	}
	out := Shape{Closed: s.Closed, Paths: make([][]Coord, len(s.Paths))}
	for i, p := range s.Paths {
		q := make([]Coord, len(p))
		for j, c := range p {
			q[j] = Coord{c.X + dx, c.Y + dy}
		}
		out.Paths[i] = q
	}
	return out
}

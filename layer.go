package sld

type GeometryType string

const (
	Unknown            GeometryType = "Unknown"
	LineString         GeometryType = "LineString"
	Polygon            GeometryType = "Polygon"
	Point              GeometryType = "Point"
	MultiPoint         GeometryType = "MultiPoint"
	MultiLineString    GeometryType = "MultiLineString"
	MultiPolygon       GeometryType = "MultiPolygon"
	GeometryCollection GeometryType = "GeometryCollection"
)

// Layer is a named group of features drawn with one or more styles.
type Layer struct {
	ID         string
	Styles     []string
	SRS        *string
	Datasource Datasource
	Type       GeometryType
	Active     bool
	// MinScale and MaxScale limit the scale denominators the layer is
	// drawn at. Zero means unbounded.
	MinScale float64
	MaxScale float64
}

// InScale reports whether the layer is visible at scale denominator s.
func (l *Layer) InScale(s float64) bool {
	return inScale(l.MinScale, l.MaxScale, s)
}

func inScale(min, max, s float64) bool {
	if min > 0 && s < min {
		return false
	}
	if max > 0 && s >= max {
		return false
	}
	return true
}

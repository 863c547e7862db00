package sld

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

const (
	DatasourceGeoJSON = "geojson"
	DatasourceMemory  = "memory"
)

// Datasource provides the features of a layer.
type Datasource interface {
	GetId() string
	GetType() string
	// Features returns the features whose bounds intersect bbox. An empty
	// bbox, such as EmptyEnvelope(), returns all features. Features without
	// a default geometry are always returned, their symbolizers may select
	// a geometry property.
	Features(bbox Envelope) ([]Feature, error)
}

// Memory is a datasource of features held in memory.
type Memory struct {
	Id   string
	Feat []Feature
}

func (m *Memory) GetId() string   { return m.Id }
func (m *Memory) GetType() string { return DatasourceMemory }

func (m *Memory) Features(bbox Envelope) ([]Feature, error) {
	return clip(m.Feat, bbox), nil
}

func clip(features []Feature, bbox Envelope) []Feature {
	if bbox.IsEmpty() {
		return features
	}
	var out []Feature
	for _, f := range features {
		if g := f.DefaultGeometry(); g == nil || g.Bounds().Intersects(bbox) {
			out = append(out, f)
		}
	}
	return out
}

// GeoJson reads features from a GeoJSON FeatureCollection file. The file
// is read on every call.
type GeoJson struct {
	Id       string
	Filename string
}

func (g *GeoJson) GetId() string   { return g.Id }
func (g *GeoJson) GetType() string { return DatasourceGeoJSON }

func (g *GeoJson) Features(bbox Envelope) ([]Feature, error) {
	r, err := os.Open(g.Filename)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	features, err := DecodeGeoJSON(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.Filename, err)
	}
	return clip(features, bbox), nil
}

type geoJSONCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

type geoJSONFeature struct {
	Type       string                 `json:"type"`
	ID         interface{}            `json:"id"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   *geoJSONGeometry       `json:"geometry"`
}

type geoJSONGeometry struct {
	Type        string            `json:"type"`
	Coordinates json.RawMessage   `json:"coordinates"`
	Geometries  []geoJSONGeometry `json:"geometries"`
}

// DecodeGeoJSON decodes a FeatureCollection, a single Feature or a bare
// geometry. Features without an id are numbered in document order.
func DecodeGeoJSON(r io.Reader) ([]Feature, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}
	var gjs []geoJSONFeature
	switch head.Type {
	case "FeatureCollection":
		var c geoJSONCollection
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		gjs = c.Features
	case "Feature":
		var f geoJSONFeature
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, err
		}
		gjs = []geoJSONFeature{f}
	default:
		var g geoJSONGeometry
		if err := json.Unmarshal(raw, &g); err != nil {
			return nil, err
		}
		gjs = []geoJSONFeature{{Type: "Feature", Geometry: &g}}
	}

	features := make([]Feature, 0, len(gjs))
	for i, gf := range gjs {
		f := &MapFeature{FID: fmt.Sprint(i), Properties: gf.Properties}
		if gf.ID != nil {
			f.FID = fmt.Sprint(gf.ID)
		}
		if gf.Geometry != nil {
			geom, err := gf.Geometry.decode()
			if err != nil {
				return nil, fmt.Errorf("feature %s: %w", f.FID, err)
			}
			f.Geometry = geom
		}
		if err := decodeGeometryProperties(f.Properties); err != nil {
			return nil, fmt.Errorf("feature %s: %w", f.FID, err)
		}
		features = append(features, f)
	}
	return features, nil
}

// decodeGeometryProperties replaces properties holding GeoJSON geometry
// objects with decoded geometries, so they can be selected by name.
func decodeGeometryProperties(props map[string]interface{}) error {
	for k, v := range props {
		m, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		if _, ok := m["type"].(string); !ok {
			continue
		}
		_, hasCoords := m["coordinates"]
		_, hasGeoms := m["geometries"]
		if !hasCoords && !hasGeoms {
			continue
		}
		raw, err := json.Marshal(m)
		if err != nil {
			return err
		}
		var g geoJSONGeometry
		if err := json.Unmarshal(raw, &g); err != nil {
			return err
		}
		geom, err := g.decode()
		if err != nil {
			return fmt.Errorf("property %s: %w", k, err)
		}
		props[k] = geom
	}
	return nil
}

func (g *geoJSONGeometry) decode() (Geometry, error) {
	switch g.Type {
	case "Point":
		var c [2]float64
		if err := json.Unmarshal(g.Coordinates, &c); err != nil {
			return nil, err
		}
		return PointGeometry{X: c[0], Y: c[1]}, nil
	case "MultiPoint":
		cs, err := decodeCoords(g.Coordinates)
		if err != nil {
			return nil, err
		}
		return MultiPointGeometry(cs), nil
	case "LineString":
		cs, err := decodeCoords(g.Coordinates)
		if err != nil {
			return nil, err
		}
		return LineStringGeometry(cs), nil
	case "MultiLineString":
		ls, err := decodeRings(g.Coordinates)
		if err != nil {
			return nil, err
		}
		out := make(MultiLineStringGeometry, len(ls))
		for i, l := range ls {
			out[i] = LineStringGeometry(l)
		}
		return out, nil
	case "Polygon":
		rings, err := decodeRings(g.Coordinates)
		if err != nil {
			return nil, err
		}
		return PolygonGeometry(rings), nil
	case "MultiPolygon":
		var raw []json.RawMessage
		if err := json.Unmarshal(g.Coordinates, &raw); err != nil {
			return nil, err
		}
		out := make(MultiPolygonGeometry, len(raw))
		for i, r := range raw {
			rings, err := decodeRings(r)
			if err != nil {
				return nil, err
			}
			out[i] = PolygonGeometry(rings)
		}
		return out, nil
	case "GeometryCollection":
		out := make(CollectionGeometry, len(g.Geometries))
		for i := range g.Geometries {
			geom, err := g.Geometries[i].decode()
			if err != nil {
				return nil, err
			}
			out[i] = geom
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
}

func decodeCoords(raw json.RawMessage) ([]Coord, error) {
	var pts [][]float64
	if err := json.Unmarshal(raw, &pts); err != nil {
		return nil, err
	}
	out := make([]Coord, len(pts))
	for i, p := range pts {
		if len(p) < 2 {
			return nil, fmt.Errorf("position %d has %d values", i, len(p))
		}
		out[i] = Coord{X: p[0], Y: p[1]}
	}
	return out, nil
}

func decodeRings(raw json.RawMessage) ([][]Coord, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return nil, err
	}
	out := make([][]Coord, len(parts))
	for i, p := range parts {
		cs, err := decodeCoords(p)
		if err != nil {
			return nil, err
		}
		out[i] = cs
	}
	return out, nil
}

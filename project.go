package sld

import (
	"fmt"
	"io"
	"io/ioutil"
	"strings"

	"gopkg.in/yaml.v2"
)

// Project lists the style documents and layers of a map.
type Project struct {
	Name        string
	Layers      []Layer
	Stylesheets []string
	Map         Map
}

type auxProject struct {
	Name        string     `yaml:"name"`
	Stylesheets []string   `yaml:"Stylesheet"`
	Layers      []auxLayer `yaml:"Layer"`
	Map         Map        `yaml:"map"`
}

type auxLayer struct {
	Datasource map[string]interface{} `yaml:"datasource"`
	Geometry   string                 `yaml:"geometry"`
	ID         string                 `yaml:"id"`
	Styles     []string               `yaml:"styles"`
	SRS        *string                `yaml:"srs,omitempty"`
	Status     string                 `yaml:"status"`
	MinScale   float64                `yaml:"minscale"`
	MaxScale   float64                `yaml:"maxscale"`
}

func newLayer(l auxLayer) (*Layer, error) {
	if l.ID == "" {
		return nil, fmt.Errorf("layer without id")
	}
	ds, err := newDatasource(l.ID, l.Datasource)
	if err != nil {
		return nil, fmt.Errorf("layer %s: %w", l.ID, err)
	}
	if l.MaxScale != 0 && l.MinScale >= l.MaxScale {
		return nil, fmt.Errorf("layer %s: empty scale range [%g, %g)", l.ID, l.MinScale, l.MaxScale)
	}
	return &Layer{
		ID:         l.ID,
		Styles:     l.Styles,
		Datasource: ds,
		SRS:        l.SRS,
		Type:       parseGeometryType(l.Geometry),
		Active:     l.Status != "off",
		MinScale:   l.MinScale,
		MaxScale:   l.MaxScale,
	}, nil
}

func parseGeometryType(t string) GeometryType {
	switch strings.ToLower(t) {
	case "polygon":
		return Polygon
	case "linestring":
		return LineString
	case "point":
		return Point
	case "multipolygon":
		return MultiPolygon
	case "multilinestring":
		return MultiLineString
	case "multipoint":
		return MultiPoint
	default:
		return Unknown
	}
}

// newDatasource builds a datasource from the datasource section of a
// layer. Files are returned as given; resolving them against the project
// directory is left to the caller. Layers without a datasource get nil.
func newDatasource(id string, params map[string]interface{}) (Datasource, error) {
	if len(params) == 0 {
		return nil, nil
	}
	d := make(map[string]string, len(params))
	for k, v := range params {
		if s, ok := v.(string); ok {
			d[k] = s
		} else {
			d[k] = fmt.Sprintf("%v", v)
		}
	}

	switch d["type"] {
	case DatasourceGeoJSON, "":
		if inline := d["inline"]; inline != "" {
			features, err := DecodeGeoJSON(strings.NewReader(inline))
			if err != nil {
				return nil, err
			}
			return &Memory{Id: id, Feat: features}, nil
		}
		if d["file"] == "" {
			return nil, fmt.Errorf("geojson datasource without file")
		}
		return &GeoJson{Id: id, Filename: d["file"]}, nil
	}
	return nil, fmt.Errorf("unsupported datasource type %q", d["type"])
}

// ParseProject reads a YAML project file.
func ParseProject(r io.Reader) (*Project, error) {
	aux := auxProject{}
	input, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(input, &aux)
	if err != nil {
		return nil, err
	}

	layers := []Layer{}
	for _, l := range aux.Layers {
		layer, err := newLayer(l)
		if err != nil {
			return nil, err
		}
		layers = append(layers, *layer)
	}

	return &Project{
		Name:        aux.Name,
		Layers:      layers,
		Stylesheets: aux.Stylesheets,
		Map:         aux.Map,
	}, nil
}

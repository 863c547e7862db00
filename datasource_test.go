package sld

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoJsonFeatures(t *testing.T) {
	ds := &GeoJson{Id: "roads", Filename: "testdata/roads.geojson"}
	assert.Equal(t, DatasourceGeoJSON, ds.GetType())
	assert.Equal(t, "roads", ds.GetId())

	features, err := ds.Features(EmptyEnvelope())
	require.NoError(t, err)
	require.Len(t, features, 3)

	assert.Equal(t, "a1", features[0].ID())
	assert.Equal(t, LineStringGeometry{{0, 0}, {100, 0}}, features[0].DefaultGeometry())
	lanes, ok := features[0].Property("lanes")
	assert.True(t, ok)
	assert.Equal(t, 4.0, lanes)

	assert.Equal(t, "1", features[1].ID())
	assert.Equal(t, MultiLineString, features[1].DefaultGeometry().Type())
	at, ok := features[1].Property("label_at")
	assert.True(t, ok)
	assert.Equal(t, PointGeometry{50, 5}, at)

	assert.Equal(t, "7", features[2].ID())
	assert.Equal(t, Envelope{500, 500, 600, 600}, features[2].DefaultGeometry().Bounds())

	features, err = ds.Features(Envelope{400, 400, 1000, 1000})
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, "7", features[0].ID())

	_, err = (&GeoJson{Filename: "testdata/missing.geojson"}).Features(EmptyEnvelope())
	assert.True(t, os.IsNotExist(err))
}

func TestDecodeGeoJSON(t *testing.T) {
	features, err := DecodeGeoJSON(strings.NewReader(`{"type": "Feature", "properties": null, "geometry": {"type": "GeometryCollection", "geometries": [
		{"type": "Point", "coordinates": [1, 2, 3]},
		{"type": "MultiPoint", "coordinates": [[0, 0], [2, 2]]},
		{"type": "MultiPolygon", "coordinates": [[[[0, 0], [1, 0], [1, 1], [0, 0]]]]}
	]}}`))
	require.NoError(t, err)
	require.Len(t, features, 1)
	g := features[0].DefaultGeometry().(CollectionGeometry)
	require.Len(t, g, 3)
	assert.Equal(t, PointGeometry{1, 2}, g[0])
	assert.Equal(t, MultiPointGeometry{{0, 0}, {2, 2}}, g[1])
	assert.Equal(t, MultiPolygon, g[2].Type())

	_, err = DecodeGeoJSON(strings.NewReader(`{"type": "Circle", "coordinates": [0, 0]}`))
	assert.Error(t, err)
	_, err = DecodeGeoJSON(strings.NewReader(`{"type": "LineString", "coordinates": [[0]]}`))
	assert.Error(t, err)
	_, err = DecodeGeoJSON(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestMemoryFeatures(t *testing.T) {
	m := &Memory{Id: "m", Feat: []Feature{line, square, &MapFeature{FID: "none"}}}
	assert.Equal(t, DatasourceMemory, m.GetType())
	all, err := m.Features(EmptyEnvelope())
	require.NoError(t, err)
	assert.Len(t, all, 3)
	some, err := m.Features(Envelope{5, 5, 20, 20})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "p1", some[0].ID())
	assert.Equal(t, "none", some[1].ID())
}

func TestFeaturesWithoutDefaultGeometry(t *testing.T) {
	f := &MapFeature{FID: "labelled", Properties: map[string]interface{}{"label_at": PointGeometry{500, 500}}}
	m := &Memory{Id: "m", Feat: []Feature{line, f}}
	got, err := m.Features(Envelope{400, 400, 600, 600})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "labelled", got[0].ID())

	s, err := NewSymbolizer(&SymbolizerNode{
		Kind:     KindPoint,
		Geometry: &GeometryNode{PropertyName: &PropertyName{Content: Text("label_at")}},
	})
	require.NoError(t, err)
	r := &recorder{mpp: 1}
	require.NoError(t, s.Symbolize(r, got[0]))
	assert.NotZero(t, r.calls())
}

func TestParseProject(t *testing.T) {
	r, err := os.Open("testdata/project.yaml")
	require.NoError(t, err)
	defer r.Close()

	p, err := ParseProject(r)
	require.NoError(t, err)
	assert.Equal(t, "test", p.Name)
	assert.Equal(t, []string{"style.sld"}, p.Stylesheets)
	assert.Equal(t, "EPSG:3857", p.Map.SRS)
	assert.Equal(t, Envelope{0, 0, 1000, 1000}, p.Map.Bounds())
	assert.Equal(t, "#eeeeee", p.Map.Background)

	require.Len(t, p.Layers, 2)
	roads := p.Layers[0]
	assert.Equal(t, "roads", roads.ID)
	assert.Equal(t, LineString, roads.Type)
	assert.Equal(t, []string{"roads"}, roads.Styles)
	assert.True(t, roads.Active)
	assert.Equal(t, &GeoJson{Id: "roads", Filename: "roads.geojson"}, roads.Datasource)

	places := p.Layers[1]
	assert.False(t, places.Active)
	assert.Equal(t, Unknown, places.Type)
	assert.Equal(t, 50000.0, places.MaxScale)
	mem, ok := places.Datasource.(*Memory)
	require.True(t, ok)
	require.Len(t, mem.Feat, 1)
	assert.Equal(t, PointGeometry{1, 2}, mem.Feat[0].DefaultGeometry())
}

func TestParseProjectErrors(t *testing.T) {
	for _, in := range []string{
		"Layer:\n  - datasource: {file: a.geojson}\n",
		"Layer:\n  - id: a\n    datasource: {type: postgis, table: roads}\n",
		"Layer:\n  - id: a\n    datasource: {type: geojson}\n",
		"Layer:\n  - id: a\n    minscale: 10\n    maxscale: 5\n",
		"Layer: [",
	} {
		_, err := ParseProject(strings.NewReader(in))
		assert.Error(t, err, in)
	}
}

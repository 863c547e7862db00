package builder

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	sld "github.com/flywave/go-sld"
	"github.com/flywave/go-sld/color"
)

type testMap struct {
	layers     []sld.Layer
	styles     [][]*sld.Style
	background *color.Color
	extent     *sld.Envelope
}

func (m *testMap) AddLayer(l sld.Layer, styles []*sld.Style) {
	m.layers = append(m.layers, l)
	m.styles = append(m.styles, styles)
}

func (m *testMap) SetBackgroundColor(c color.Color) {
	m.background = &c
}

func (m *testMap) SetExtent(e sld.Envelope) {
	m.extent = &e
}

func TestBuildProject(t *testing.T) {
	m := &testMap{}
	b := New(m)
	b.SetProject("../testdata/project.yaml")
	var rules bytes.Buffer
	b.SetDumpRulesDest(&rules)
	require.NoError(t, b.Build())

	// places has no style and is dropped
	require.Len(t, m.layers, 1)
	roads := m.layers[0]
	assert.Equal(t, "roads", roads.ID)
	assert.Equal(t, &sld.GeoJson{Id: "roads", Filename: filepath.Join("..", "testdata", "roads.geojson")}, roads.Datasource)
	require.Len(t, m.styles[0], 1)
	assert.Len(t, m.styles[0][0].Rules, 2)

	require.NotNil(t, m.background)
	assert.Equal(t, color.FromRGB8(0xee, 0xee, 0xee), *m.background)
	require.NotNil(t, m.extent)
	assert.Equal(t, sld.Envelope{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 1000}, *m.extent)

	assert.Contains(t, rules.String(), "roads Rule{name=motorway filter=[kind] = 'motorway' symbolizers=LineSymbolizer}")
}

func TestBuildSLDOnly(t *testing.T) {
	m := &testMap{}
	b := New(m)
	b.AddSLD("../testdata/style.sld")
	require.NoError(t, b.Build())

	require.Len(t, m.layers, 2)
	assert.Equal(t, "roads", m.layers[0].ID)
	assert.Equal(t, "areas", m.layers[1].ID)
	assert.Nil(t, m.layers[1].Datasource)
	assert.Len(t, m.styles[1], 1)
	assert.Nil(t, m.background)
	assert.Nil(t, m.extent)
}

func TestBuildInactive(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "p.yaml")
	require.NoError(t, os.WriteFile(project, []byte(`
Layer:
  - id: areas
    status: "off"
    datasource: {file: areas.geojson}
`), 0644))

	m := &testMap{}
	b := New(m)
	b.SetProject(project)
	b.AddSLD("../testdata/style.sld")
	b.SetIncludeInactive(false)
	err := b.Build()

	var missing *FilesMissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"areas.geojson"}, missing.Files)
	assert.Empty(t, m.layers)

	m = &testMap{}
	b = New(m)
	b.SetProject(project)
	b.AddSLD("../testdata/style.sld")
	err = b.Build()
	require.True(t, errors.As(err, &missing))
	require.Len(t, m.layers, 1)
	assert.False(t, m.layers[0].Active)
}

func TestBuildMissingFilesWithOtherErrors(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "p.yaml")
	require.NoError(t, os.WriteFile(project, []byte(`
Layer:
  - id: a
    styles: [no-such-style]
    datasource: {file: gone.geojson}
`), 0644))

	b := New(&testMap{})
	b.SetProject(project)
	b.AddSLD("../testdata/style.sld")
	err := b.Build()
	require.Len(t, multierr.Errors(err), 2)

	var missing *FilesMissingError
	assert.True(t, errors.As(err, &missing))
	_, ok := OnlyFilesMissing(err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), `layer a: unknown style "no-such-style"`)
}

func TestOnlyFilesMissing(t *testing.T) {
	files, ok := OnlyFilesMissing(&FilesMissingError{Files: []string{"a.geojson"}})
	assert.True(t, ok)
	assert.Equal(t, []string{"a.geojson"}, files)

	files, ok = OnlyFilesMissing(multierr.Combine(
		&FilesMissingError{Files: []string{"a.geojson"}},
		&FilesMissingError{Files: []string{"b.sld"}},
	))
	assert.True(t, ok)
	assert.Equal(t, []string{"a.geojson", "b.sld"}, files)

	_, ok = OnlyFilesMissing(multierr.Combine(&FilesMissingError{Files: []string{"a"}}, errors.New("boom")))
	assert.False(t, ok)

	_, ok = OnlyFilesMissing(nil)
	assert.False(t, ok)
}

func TestBuildBadBackground(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "p.yaml")
	require.NoError(t, os.WriteFile(project, []byte(`
map:
  background-color: "#zzz"
`), 0644))

	m := &testMap{}
	b := New(m)
	b.SetProject(project)
	b.AddSLD("../testdata/style.sld")
	err := b.Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, color.ErrMalformed))
	assert.Contains(t, err.Error(), "map background")
	assert.Nil(t, m.background)
}

func TestBuildErrors(t *testing.T) {
	b := New(&testMap{})
	b.AddSLD("missing-1.sld")
	b.AddSLD("missing-2.sld")
	err := b.Build()
	assert.Len(t, multierr.Errors(err), 2)

	b = New(&testMap{})
	b.SetProject("missing.yaml")
	assert.Error(t, b.Build())
}

func TestBuildMapFromString(t *testing.T) {
	project := &sld.Project{Layers: []sld.Layer{
		{ID: "a", Styles: []string{"s"}, Active: true},
		{ID: "b", Styles: []string{"unknown"}, Active: true},
	}}
	m := &testMap{}
	err := BuildMapFromString(m, project, `<UserStyle><Name>s</Name><FeatureTypeStyle><Rule>
		<LineSymbolizer><Stroke/></LineSymbolizer></Rule></FeatureTypeStyle></UserStyle>`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `layer b: unknown style "unknown"`)
	require.Len(t, m.layers, 1)
	assert.Equal(t, "a", m.layers[0].ID)

	err = BuildMapFromString(&testMap{}, nil, `<FeatureTypeStyle><Rule><LineSymbolizer uom="inch"/></Rule></FeatureTypeStyle>`)
	assert.True(t, errors.Is(err, sld.ErrInvalidStyleValue))
}

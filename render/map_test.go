package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	sld "github.com/flywave/go-sld"
	"github.com/flywave/go-sld/builder"
	"github.com/flywave/go-sld/color"
	"github.com/flywave/go-sld/render/canvas"
)

const style = `<StyledLayerDescriptor>
<NamedLayer><Name>areas</Name><UserStyle><FeatureTypeStyle>
	<Rule>
		<Filter><PropertyIsEqualTo><PropertyName>kind</PropertyName><Literal>park</Literal></PropertyIsEqualTo></Filter>
		<PolygonSymbolizer><Fill><SvgParameter name="fill">#00ff00</SvgParameter></Fill></PolygonSymbolizer>
	</Rule>
	<Rule>
		<Filter><PropertyIsEqualTo><PropertyName>kind</PropertyName><Literal>water</Literal></PropertyIsEqualTo></Filter>
		<PolygonSymbolizer><Fill><SvgParameter name="fill">#0000ff</SvgParameter></Fill></PolygonSymbolizer>
	</Rule>
</FeatureTypeStyle></UserStyle></NamedLayer>
<NamedLayer><Name>roads</Name><UserStyle><FeatureTypeStyle>
	<Rule>
		<LineSymbolizer uom="http://www.opengeospatial.org/se/units/metre">
			<Stroke>
				<SvgParameter name="stroke">#ff0000</SvgParameter>
				<SvgParameter name="stroke-width">10</SvgParameter>
				<SvgParameter name="stroke-linecap">butt</SvgParameter>
			</Stroke>
		</LineSymbolizer>
	</Rule>
</FeatureTypeStyle></UserStyle></NamedLayer>
</StyledLayerDescriptor>`

func polygon(id, kind string, minX, minY, maxX, maxY float64) sld.Feature {
	return &sld.MapFeature{
		FID:        id,
		Properties: map[string]interface{}{"kind": kind},
		Geometry:   sld.PolygonGeometry{{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY}}},
	}
}

func testProject() *sld.Project {
	return &sld.Project{Layers: []sld.Layer{
		{ID: "areas", Active: true, Datasource: &sld.Memory{Id: "areas", Feat: []sld.Feature{
			polygon("park", "park", 0, 20, 50, 100),
			polygon("lake", "water", 50, 20, 100, 100),
			polygon("farm", "farm", 0, 0, 100, 10),
		}}},
		{ID: "roads", Active: true, Datasource: &sld.Memory{Id: "roads", Feat: []sld.Feature{
			&sld.MapFeature{FID: "r", Geometry: sld.LineStringGeometry{{0, 50}, {100, 50}}},
		}}},
	}}
}

func TestRender(t *testing.T) {
	m := New(zaptest.NewLogger(t))
	require.NoError(t, builder.BuildMapFromString(m, testProject(), style))
	assert.Equal(t, []string{"areas", "roads"}, m.Layers())

	e, err := m.Extent()
	require.NoError(t, err)
	assert.Equal(t, sld.Envelope{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}, e)

	c := canvas.New(100, 100)
	require.NoError(t, m.Render(c))

	assert.Equal(t, color.FromRGB8(0, 255, 0).NRGBA(), c.Pixel(25, 25))
	assert.Equal(t, color.FromRGB8(0, 0, 255).NRGBA(), c.Pixel(75, 25))
	// farm matches no rule and keeps the background
	assert.Equal(t, color.White.NRGBA(), c.Pixel(25, 95))
	// 10 m wide road at 1 m per pixel across the middle
	assert.Equal(t, color.FromRGB8(255, 0, 0).NRGBA(), c.Pixel(50, 50))
	assert.Equal(t, color.FromRGB8(0, 255, 0).NRGBA(), c.Pixel(25, 40))
}

func TestRenderScaleAndExtent(t *testing.T) {
	m := New(nil)
	p := testProject()
	p.Layers[1].MinScale = 1e6
	require.NoError(t, builder.BuildMapFromString(m, p, style))
	m.SetBackgroundColor(color.Black)
	m.SetExtent(sld.Envelope{MinX: 0, MinY: 0, MaxX: 50, MaxY: 50})

	c := canvas.New(50, 50)
	require.NoError(t, m.Render(c))
	assert.Equal(t, color.FromRGB8(0, 255, 0).NRGBA(), c.Pixel(25, 0))
	assert.Equal(t, color.Black.NRGBA(), c.Pixel(5, 45))
}

func TestRenderErrors(t *testing.T) {
	m := New(zap.NewNop())
	m.AddLayer(sld.Layer{ID: "empty"}, nil)
	s, err := sld.NewStyle(&sld.FeatureTypeStyleNode{Rules: []*sld.RuleNode{{
		Symbolizers: []*sld.SymbolizerNode{{
			Kind:   sld.KindLine,
			Stroke: &sld.StrokeNode{Parameters: []sld.SvgParameter{{Name: "stroke-width", Content: sld.Text("wide")}}},
		}},
	}}})
	require.NoError(t, err)
	m.AddLayer(sld.Layer{ID: "bad", Datasource: &sld.Memory{Feat: []sld.Feature{
		&sld.MapFeature{FID: "a", Geometry: sld.LineStringGeometry{{0, 0}, {10, 10}}},
		&sld.MapFeature{FID: "b", Geometry: sld.LineStringGeometry{{0, 10}, {10, 0}}},
	}}}, []*sld.Style{s})

	err = m.Render(canvas.New(10, 10))
	assert.Len(t, multierr.Errors(err), 2)

	_, err = New(nil).Extent()
	require.NoError(t, err)
	assert.Error(t, New(nil).Render(canvas.New(10, 10)))
}

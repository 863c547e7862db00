package sld

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flywave/go-sld/color"
)

func TestParametersDefaults(t *testing.T) {
	for _, p := range []*Parameters{nil, ParametersFromMap(nil)} {
		assert.True(t, p.IsEmpty())

		c, err := p.StrokeColor()
		require.NoError(t, err)
		assert.Equal(t, DefaultStrokeColor, c)
		w, err := p.StrokeWidth()
		require.NoError(t, err)
		assert.Equal(t, 1.0, w)
		o, err := p.StrokeOpacity()
		require.NoError(t, err)
		assert.Equal(t, 1.0, o)
		j, err := p.StrokeLinejoin()
		require.NoError(t, err)
		assert.Equal(t, LineJoinMiter, j)
		lc, err := p.StrokeLinecap()
		require.NoError(t, err)
		assert.Equal(t, LineCapSquare, lc)
		d, err := p.StrokeDasharray()
		require.NoError(t, err)
		assert.Nil(t, d)
		off, err := p.StrokeDashoffset()
		require.NoError(t, err)
		assert.Equal(t, 0.0, off)

		fc, err := p.FillColor()
		require.NoError(t, err)
		assert.Equal(t, color.Gray, fc)
		fo, err := p.FillOpacity()
		require.NoError(t, err)
		assert.Equal(t, 1.0, fo)

		assert.Equal(t, "sans-serif", p.FontFamily())
		fs, err := p.FontSize()
		require.NoError(t, err)
		assert.Equal(t, 10.0, fs)
	}
}

func TestParametersCaseInsensitive(t *testing.T) {
	p := ParametersFromMap(map[string]string{
		"Stroke-LineJoin": "BEVEL",
		"stroke-linecap":  "Round",
		"STROKE":          "#102030",
	})
	assert.False(t, p.IsEmpty())
	j, err := p.StrokeLinejoin()
	require.NoError(t, err)
	assert.Equal(t, LineJoinBevel, j)
	c, err := p.StrokeLinecap()
	require.NoError(t, err)
	assert.Equal(t, LineCapRound, c)
	sc, err := p.StrokeColor()
	require.NoError(t, err)
	assert.Equal(t, color.FromRGB8(0x10, 0x20, 0x30), sc)
}

func TestParametersLinejoin(t *testing.T) {
	for in, want := range map[string]LineJoin{
		"mitre": LineJoinMiter,
		"miter": LineJoinMiter,
		"round": LineJoinRound,
		"bevel": LineJoinBevel,
	} {
		j, err := ParametersFromMap(map[string]string{ParamStrokeLinejoin: in}).StrokeLinejoin()
		require.NoError(t, err, in)
		assert.Equal(t, want, j, in)
	}

	_, err := ParametersFromMap(map[string]string{ParamStrokeLinejoin: "pointy"}).StrokeLinejoin()
	assert.True(t, errors.Is(err, ErrInvalidStyleValue))
}

func TestParametersLinecap(t *testing.T) {
	c, err := ParametersFromMap(map[string]string{ParamStrokeLinecap: "butt"}).StrokeLinecap()
	require.NoError(t, err)
	assert.Equal(t, LineCapButt, c)

	_, err = ParametersFromMap(map[string]string{ParamStrokeLinecap: "flat"}).StrokeLinecap()
	var pe *ParameterError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ParamStrokeLinecap, pe.Name)
	assert.Equal(t, "flat", pe.Value)
}

func TestParametersDasharray(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want []float64
	}{
		{"5 3", []float64{5, 3}},
		{"5", []float64{5, 5}},
		{"1 2 3", []float64{1, 2, 3, 1, 2, 3}},
		{"  4   2 ", []float64{4, 2}},
		{"", []float64{}},
		{"none", []float64{}},
	} {
		d, err := ParametersFromMap(map[string]string{ParamStrokeDasharray: tt.in}).StrokeDasharray()
		require.NoError(t, err, tt.in)
		require.NotNil(t, d, tt.in)
		assert.Equal(t, tt.want, d, tt.in)
	}

	_, err := ParametersFromMap(map[string]string{ParamStrokeDasharray: "5 x"}).StrokeDasharray()
	assert.True(t, errors.Is(err, ErrInvalidStyleValue))

	_, err = ParametersFromMap(map[string]string{ParamStrokeDasharray: "5 -2"}).StrokeDasharray()
	assert.True(t, errors.Is(err, ErrInvalidStyleValue))
}

func TestParametersBlankValues(t *testing.T) {
	p := ParametersFromMap(map[string]string{
		ParamStrokeWidth:     "  ",
		ParamStroke:          "",
		ParamStrokeLinejoin:  " ",
		ParamStrokeDasharray: " ",
	})
	w, err := p.StrokeWidth()
	require.NoError(t, err)
	assert.Equal(t, DefaultStrokeWidth, w)
	c, err := p.StrokeColor()
	require.NoError(t, err)
	assert.Equal(t, DefaultStrokeColor, c)
	j, err := p.StrokeLinejoin()
	require.NoError(t, err)
	assert.Equal(t, DefaultStrokeLinejoin, j)

	d, err := p.StrokeDasharray()
	require.NoError(t, err)
	assert.NotNil(t, d)
	assert.Empty(t, d)
}

func TestParametersInvalid(t *testing.T) {
	p := ParametersFromMap(map[string]string{
		ParamStrokeWidth: "thick",
		ParamFill:        "red",
		ParamFontWeight:  "heavy",
	})
	_, err := p.StrokeWidth()
	assert.True(t, errors.Is(err, ErrInvalidStyleValue))
	_, err = p.FillColor()
	assert.True(t, errors.Is(err, ErrMalformedColor))
	_, err = p.FontWeight()
	assert.True(t, errors.Is(err, ErrInvalidStyleValue))
}

func TestParametersBlankIsAbsent(t *testing.T) {
	w, err := ParametersFromMap(map[string]string{ParamStrokeWidth: "  "}).StrokeWidth()
	require.NoError(t, err)
	assert.Equal(t, DefaultStrokeWidth, w)
}

func TestParametersFromList(t *testing.T) {
	p, err := ParametersFromList([]SvgParameter{
		{Name: "stroke-width", Content: Content{&ExprElement{Space: "ogc", Tag: "Literal", Content: Text(" 3 ")}}},
		{Name: "stroke-width", Content: Text("4")},
		{Name: "font-family", Content: Text(`"DejaVu Sans", serif`)},
		{Name: "font-style", Content: Text("Italic")},
	}, nil)
	require.NoError(t, err)
	w, err := p.StrokeWidth()
	require.NoError(t, err)
	assert.Equal(t, 4.0, w)
	assert.Equal(t, "DejaVu Sans", p.FontFamily())
	s, err := p.FontStyle()
	require.NoError(t, err)
	assert.Equal(t, FontStyleItalic, s)
	assert.Equal(t, `Parameters{font-family: "\"DejaVu Sans\", serif", font-style: "Italic", stroke-width: "4"}`, p.String())

	_, err = ParametersFromList([]SvgParameter{
		{Name: "stroke", Content: Content{&ExprElement{Space: "ogc", Tag: "PropertyName", Content: Text("color")}}},
	}, LiteralFacade{})
	assert.True(t, errors.Is(err, ErrUnsupportedExpression))
}

func TestStrokeFactory(t *testing.T) {
	p := ParametersFromMap(map[string]string{
		ParamStroke:           "#ff0000",
		ParamStrokeWidth:      "3",
		ParamStrokeOpacity:    "0.25",
		ParamStrokeDasharray:  "6 2",
		ParamStrokeDashoffset: "1",
	})
	st, err := DefaultStrokeFactory{}.Stroke(p, Foot)
	require.NoError(t, err)
	assert.Equal(t, Foot, st.Unit)
	assert.Equal(t, 3.0, st.Width)
	assert.Equal(t, color.FromRGB8(255, 0, 0).WithAlpha(0.25), st.Effective())

	px, err := st.Pixels(MetresPerFoot)
	require.NoError(t, err)
	assert.Equal(t, Pixel, px.Unit)
	assert.InDelta(t, 3, px.Width, 1e-9)
	assert.InDeltaSlice(t, []float64{6, 2}, px.Dash, 1e-9)
	assert.InDelta(t, 1, px.DashOffset, 1e-9)
	// the original is left untouched
	assert.Equal(t, Foot, st.Unit)

	_, err = DefaultStrokeFactory{}.Stroke(ParametersFromMap(map[string]string{ParamStrokeOpacity: "half"}), Pixel)
	assert.True(t, errors.Is(err, ErrInvalidStyleValue))
}

func TestPaintFactory(t *testing.T) {
	p, err := DefaultPaintFactory{}.Paint(ParametersFromMap(map[string]string{ParamFill: "#00ff00", ParamFillOpacity: "0.5"}))
	require.NoError(t, err)
	assert.Equal(t, Paint{Color: color.FromRGB8(0, 255, 0), Opacity: 0.5}, p)

	_, err = DefaultPaintFactory{}.Paint(ParametersFromMap(map[string]string{ParamFillOpacity: "?"}))
	assert.True(t, errors.Is(err, ErrInvalidStyleValue))
}

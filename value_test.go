package sld

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUOM(t *testing.T) {
	for in, want := range map[string]UOM{
		"http://www.opengeospatial.org/se/units/pixel":  Pixel,
		"http://www.opengeospatial.org/se/units/metre":  Metre,
		"http://www.opengeospatial.org/se/units/meter":  Metre,
		"http://www.opengeospatial.org/se/units/foot":   Foot,
		" HTTP://www.opengeospatial.org/se/units/Metre": Metre,
	} {
		u, err := ParseUOM(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, u, in)
	}
	for _, in := range []string{"", "metre", "http://www.opengeospatial.org/se/units/inch"} {
		_, err := ParseUOM(in)
		assert.True(t, errors.Is(err, ErrInvalidStyleValue), in)
	}
	assert.Equal(t, "http://www.opengeospatial.org/se/units/foot", Foot.URI())
	assert.True(t, Foot.IsGround())
	assert.False(t, Pixel.IsGround())
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue(" 2.5 ", Metre)
	require.NoError(t, err)
	assert.Equal(t, Value{Magnitude: 2.5, Unit: Metre}, v)
	assert.Equal(t, "2.5 metre", v.String())

	_, err = ParseValue("2.5px", Pixel)
	assert.True(t, errors.Is(err, ErrInvalidStyleValue))
}

func TestValueConvert(t *testing.T) {
	for _, tt := range []struct {
		name string
		v    Value
		to   UOM
		mpp  float64
		want float64
	}{
		{"same unit", Value{3, Pixel}, Pixel, 0, 3},
		{"metre to foot", Value{0.3048, Metre}, Foot, 0, 1},
		{"foot to metre", Value{10, Foot}, Metre, 0, 3.048},
		{"metre to pixel", Value{10, Metre}, Pixel, 2, 5},
		{"foot to pixel", Value{1, Foot}, Pixel, 0.1524, 2},
		{"pixel to metre", Value{4, Pixel}, Metre, 0.5, 2},
		{"zero needs no scale", Value{0, Metre}, Pixel, 0, 0},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.Convert(tt.to, tt.mpp)
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Unit)
			assert.InDelta(t, tt.want, got.Magnitude, 1e-9)
		})
	}

	_, err := Value{1, Metre}.Convert(Pixel, 0)
	assert.True(t, errors.Is(err, ErrMissingScale))
	_, err = Value{1, Pixel}.Pixels(-1)
	require.NoError(t, err)
	_, err = Value{1, Pixel}.Convert(Foot, -1)
	assert.True(t, errors.Is(err, ErrMissingScale))
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Value{1, Foot}.Equal(Value{0.3048, Metre}))
	assert.True(t, Zero(Pixel).Equal(Zero(Metre)))
	assert.False(t, Value{1, Pixel}.Equal(Value{1, Metre}))
	assert.False(t, Value{1, Metre}.Equal(Value{2, Metre}))
	assert.True(t, Zero(Foot).IsZero())
}

func TestLiteralFacade(t *testing.T) {
	f := LiteralFacade{}

	s, ok, err := f.Literal(Content{CharData("  a"), &ExprElement{Tag: "Literal", Content: Text("b ")}, CharData("c ")})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ab c", s)

	_, ok, err = f.Literal(nil)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = f.Literal(Text("   "))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = f.Literal(Content{&ExprElement{Space: "ogc", Tag: "Add"}})
	assert.True(t, errors.Is(err, ErrUnsupportedExpression))
	assert.Contains(t, err.Error(), "ogc:Add")
}

package sld

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a length tagged with its unit of measure.
type Value struct {
	Magnitude float64
	Unit      UOM
}

// Zero returns the zero length in unit u.
func Zero(u UOM) Value {
	return Value{Unit: u}
}

// ParseValue parses a numeric literal as a length in unit u.
func ParseValue(s string, u UOM) (Value, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %q is not a number", ErrInvalidStyleValue, s)
	}
	return Value{Magnitude: f, Unit: u}, nil
}

func (v Value) String() string {
	return strconv.FormatFloat(v.Magnitude, 'g', -1, 64) + " " + v.Unit.String()
}

// IsZero reports whether v has no length, whatever its unit.
func (v Value) IsZero() bool {
	return v.Magnitude == 0
}

// Equal reports whether v and o describe the same length. Ground units
// are compared in metres; pixels and ground units only match at zero.
func (v Value) Equal(o Value) bool {
	if v.Unit == o.Unit {
		return v.Magnitude == o.Magnitude
	}
	if v.Unit.IsGround() && o.Unit.IsGround() {
		a, b := v.Magnitude*v.Unit.metres(), o.Magnitude*o.Unit.metres()
		return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	}
	return v.IsZero() && o.IsZero()
}

// Convert returns v expressed in unit to. metresPerPixel is the ground size
// of one device pixel; it is only consulted when converting between
// pixels and ground units and must then be positive.
func (v Value) Convert(to UOM, metresPerPixel float64) (Value, error) {
	if v.Unit == to {
		return v, nil
	}
	if v.IsZero() {
		return Zero(to), nil
	}
	var m float64
	if v.Unit.IsGround() {
		m = v.Magnitude * v.Unit.metres()
	} else {
		if metresPerPixel <= 0 {
			return Value{}, fmt.Errorf("%w: converting %s to %s", ErrMissingScale, v, to)
		}
		m = v.Magnitude * metresPerPixel
	}
	if to.IsGround() {
		return Value{Magnitude: m / to.metres(), Unit: to}, nil
	}
	if metresPerPixel <= 0 {
		return Value{}, fmt.Errorf("%w: converting %s to %s", ErrMissingScale, v, to)
	}
	return Value{Magnitude: m / metresPerPixel, Unit: to}, nil
}

// Pixels returns the magnitude of v in device pixels.
func (v Value) Pixels(metresPerPixel float64) (float64, error) {
	p, err := v.Convert(Pixel, metresPerPixel)
	if err != nil {
		return 0, err
	}
	return p.Magnitude, nil
}

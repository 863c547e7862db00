// Package color implements the color values used by style parameters.
package color

import (
	"errors"
	"fmt"
	imgcolor "image/color"
	"math"
	"strconv"
	"strings"

	"github.com/hsluv/hsluv-go"
)

// ErrMalformed is returned for color literals that can not be decoded.
var ErrMalformed = errors.New("malformed color literal")

// Color is a non-premultiplied RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

var (
	Black = Color{0, 0, 0, 1}
	White = Color{1, 1, 1, 1}
	Gray  = Color{128.0 / 255, 128.0 / 255, 128.0 / 255, 1}
)

// Parse decodes a color literal. Supported forms are #RRGGBB, #RGB,
// 0xRRGGBB and the hsluv(h, s, l) / hpluv(h, s, l) functions.
func Parse(s string) (Color, error) {
	v := strings.TrimSpace(s)
	lower := strings.ToLower(v)
	switch {
	case strings.HasPrefix(lower, "#"):
		return parseHex(v, v[1:])
	case strings.HasPrefix(lower, "0x"):
		return parseHex(v, v[2:])
	case strings.HasPrefix(lower, "hsluv("):
		return parseFunc(v, lower[len("hsluv("):], hsluv.HsluvToRGB)
	case strings.HasPrefix(lower, "hpluv("):
		return parseFunc(v, lower[len("hpluv("):], hsluv.HpluvToRGB)
	}
	return Color{}, fmt.Errorf("%w: %q", ErrMalformed, s)
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Color {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHex(orig, digits string) (Color, error) {
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}
	if len(digits) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrMalformed, orig)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrMalformed, orig)
	}
	return FromRGB8(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

func parseFunc(orig, args string, toRGB func(h, s, l float64) (float64, float64, float64)) (Color, error) {
	if !strings.HasSuffix(args, ")") {
		return Color{}, fmt.Errorf("%w: %q", ErrMalformed, orig)
	}
	parts := strings.Split(strings.TrimSuffix(args, ")"), ",")
	if len(parts) != 3 {
		return Color{}, fmt.Errorf("%w: %q", ErrMalformed, orig)
	}
	var hsl [3]float64
	for i, p := range parts {
		p = strings.TrimSuffix(strings.TrimSpace(p), "%")
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrMalformed, orig)
		}
		hsl[i] = f
	}
	r, g, b := toRGB(hsl[0], hsl[1], hsl[2])
	return Color{R: clamp(r), G: clamp(g), B: clamp(b), A: 1}, nil
}

// FromRGB8 returns an opaque color from 8-bit components.
func FromRGB8(r, g, b uint8) Color {
	return Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: 1}
}

// RGB8 returns the 8-bit red, green and blue components.
func (c Color) RGB8() (r, g, b uint8) {
	return to8(c.R), to8(c.G), to8(c.B)
}

// Hex returns the #rrggbb form of c, ignoring alpha.
func (c Color) Hex() string {
	r, g, b := c.RGB8()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func (c Color) String() string {
	if c.A < 1 {
		return fmt.Sprintf("%s@%.3g", c.Hex(), c.A)
	}
	return c.Hex()
}

// WithAlpha returns c with its alpha multiplied by opacity.
func (c Color) WithAlpha(opacity float64) Color {
	c.A = clamp(c.A * opacity)
	return c
}

// NRGBA converts c to the standard library representation.
func (c Color) NRGBA() imgcolor.NRGBA {
	r, g, b := c.RGB8()
	return imgcolor.NRGBA{R: r, G: g, B: b, A: to8(c.A)}
}

// RGBA implements image/color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp(v) * 255))
}

package sld

import (
	"fmt"
	"strings"
)

// UOM is the unit of measure of symbolizer lengths.
type UOM int

const (
	Pixel UOM = iota
	Metre
	Foot
)

const (
	uomPrefix = "http://www.opengeospatial.org/se/units/"

	// MetresPerFoot is the length of the international foot.
	MetresPerFoot = 0.3048
)

var uomNames = map[UOM]string{
	Pixel: "pixel",
	Metre: "metre",
	Foot:  "foot",
}

// ParseUOM resolves a Symbology Encoding unit URI such as
// http://www.opengeospatial.org/se/units/metre.
func ParseUOM(uri string) (UOM, error) {
	s := strings.TrimSpace(uri)
	if len(s) >= len(uomPrefix) && strings.EqualFold(s[:len(uomPrefix)], uomPrefix) {
		switch strings.ToLower(s[len(uomPrefix):]) {
		case "pixel":
			return Pixel, nil
		case "metre", "meter":
			return Metre, nil
		case "foot":
			return Foot, nil
		}
	}
	return Pixel, fmt.Errorf("%w: unit of measure %q", ErrInvalidStyleValue, uri)
}

func (u UOM) String() string {
	if name, ok := uomNames[u]; ok {
		return name
	}
	return fmt.Sprintf("UOM(%d)", int(u))
}

// URI returns the Symbology Encoding identifier of u.
func (u UOM) URI() string {
	return uomPrefix + u.String()
}

// IsGround reports whether u measures distances on the ground.
func (u UOM) IsGround() bool {
	return u == Metre || u == Foot
}

// metres returns how many metres one unit of u spans. Pixels have no
// fixed ground size.
func (u UOM) metres() float64 {
	switch u {
	case Metre:
		return 1
	case Foot:
		return MetresPerFoot
	}
	return 0
}

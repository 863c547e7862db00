package sld

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidStyleValue reports an explicit value that is not a number or
	// not one of the recognized keywords.
	ErrInvalidStyleValue = errors.New("invalid style value")
	// ErrMalformedColor reports an explicit color that can not be decoded.
	ErrMalformedColor = errors.New("malformed color literal")
	// ErrUnsupportedExpression reports a computed (non-literal) expression.
	ErrUnsupportedExpression = errors.New("unsupported expression")
	// ErrMissingScale reports a pixel/ground conversion without a scale.
	ErrMissingScale = errors.New("missing pixel scale")
	// ErrGeometryNotFound reports a geometry selector naming a property the
	// feature does not carry.
	ErrGeometryNotFound = errors.New("geometry not found")
	// ErrUnknownSymbolizer reports a symbolizer node of an unknown kind.
	ErrUnknownSymbolizer = errors.New("unknown symbolizer")
)

// ParameterError describes a style parameter whose explicit value could
// not be resolved.
type ParameterError struct {
	Name  string
	Value string
	Err   error
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("parameter %s=%q: %v", e.Name, e.Value, e.Err)
}

func (e *ParameterError) Unwrap() error {
	return e.Err
}

package sld

import (
	"fmt"
	"strings"
)

// The types below are the in-memory form of a parsed style document. They
// are produced by a document binding (see package sldxml) and consumed by
// the constructors in this package; they carry no behaviour of their own.

// Token is one item of mixed XML content: CharData or *ExprElement.
type Token interface {
	token()
}

// CharData is literal text inside mixed content.
type CharData string

// ExprElement is an element nested in mixed content, usually an OGC
// expression such as ogc:Literal or ogc:Add.
type ExprElement struct {
	Space   string
	Tag     string
	Content Content
}

func (CharData) token()     {}
func (*ExprElement) token() {}

// Content is mixed content: text interleaved with expression elements.
type Content []Token

// SvgParameter is a named SvgParameter/CssParameter.
type SvgParameter struct {
	Name    string
	Content Content
}

// ParameterValue is an element of type se:ParameterValueType.
type ParameterValue struct {
	Content Content
}

// PropertyName references a feature attribute.
type PropertyName struct {
	Content Content
}

// GeometryNode is the se:Geometry element of a symbolizer.
type GeometryNode struct {
	PropertyName *PropertyName
}

type StrokeNode struct {
	Parameters []SvgParameter
}

type FillNode struct {
	Parameters []SvgParameter
}

type FontNode struct {
	Parameters []SvgParameter
}

type HaloNode struct {
	Radius *ParameterValue
	Fill   *FillNode
}

type MarkNode struct {
	WellKnownName string
	Fill          *FillNode
	Stroke        *StrokeNode
}

type GraphicNode struct {
	Mark     *MarkNode
	Opacity  *ParameterValue
	Size     *ParameterValue
	Rotation *ParameterValue
}

type DisplacementNode struct {
	X, Y *ParameterValue
}

type AnchorPointNode struct {
	X, Y *ParameterValue
}

// LabelPlacementNode holds either a point or a line placement.
type LabelPlacementNode struct {
	Point *PointPlacementNode
	Line  *LinePlacementNode
}

type PointPlacementNode struct {
	Anchor       *AnchorPointNode
	Displacement *DisplacementNode
	Rotation     *ParameterValue
}

type LinePlacementNode struct {
	PerpendicularOffset *ParameterValue
}

// SymbolizerNode is a parsed symbolizer of any kind; Kind selects which
// of the optional children are meaningful.
type SymbolizerNode struct {
	Kind     Kind
	Name     string
	UOM      string
	Geometry *GeometryNode

	Stroke              *StrokeNode
	Fill                *FillNode
	PerpendicularOffset *ParameterValue
	Displacement        *DisplacementNode

	Graphic *GraphicNode

	Label          *ParameterValue
	Font           *FontNode
	Halo           *HaloNode
	LabelPlacement *LabelPlacementNode
}

// FilterNode is an OGC filter operator. Comparison operators use
// PropertyName and Literal, logical operators use Children.
type FilterNode struct {
	Op           string
	PropertyName *PropertyName
	Literal      Content
	Children     []*FilterNode
}

type RuleNode struct {
	Name        string
	Title       string
	MinScale    float64
	MaxScale    float64
	Filter      *FilterNode
	ElseFilter  bool
	Symbolizers []*SymbolizerNode
}

type FeatureTypeStyleNode struct {
	Name            string
	FeatureTypeName string
	Rules           []*RuleNode
}

// DocumentFacade is the accessor over a parsed style document used while
// building symbolizers.
type DocumentFacade interface {
	// Literal returns the literal text of mixed content. ok is false when
	// the content holds no text at all.
	Literal(c Content) (s string, ok bool, err error)
}

// LiteralFacade is the default DocumentFacade. Text and ogc:Literal
// children are concatenated and trimmed; any other element is an
// unsupported expression.
type LiteralFacade struct{}

func (LiteralFacade) Literal(c Content) (string, bool, error) {
	var b strings.Builder
	found := false
	if err := appendLiteral(&b, c, &found); err != nil {
		return "", false, err
	}
	s := strings.TrimSpace(b.String())
	if !found || s == "" {
		return "", false, nil
	}
	return s, true, nil
}

func appendLiteral(b *strings.Builder, c Content, found *bool) error {
	for _, t := range c {
		switch v := t.(type) {
		case CharData:
			b.WriteString(string(v))
			*found = true
		case *ExprElement:
			if v.Tag != "Literal" {
				return fmt.Errorf("%w: <%s>", ErrUnsupportedExpression, qualified(v))
			}
			if err := appendLiteral(b, v.Content, found); err != nil {
				return err
			}
		}
	}
	return nil
}

func qualified(e *ExprElement) string {
	if e.Space == "" {
		return e.Tag
	}
	return e.Space + ":" + e.Tag
}

// Text returns content consisting of a single literal string.
func Text(s string) Content {
	return Content{CharData(s)}
}

// literalOf extracts the literal text of an optional parameter value.
func literalOf(f DocumentFacade, pv *ParameterValue) (string, bool, error) {
	if pv == nil {
		return "", false, nil
	}
	return f.Literal(pv.Content)
}

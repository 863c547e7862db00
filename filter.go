package sld

import (
	"fmt"
	"strconv"
	"strings"
)

// CompOp is a binary comparison operator.
type CompOp int

const (
	EQ CompOp = iota
	NE
	LT
	LTE
	GT
	GTE
)

func (o CompOp) String() string {
	switch o {
	case EQ:
		return "="
	case NE:
		return "!="
	case LT:
		return "<"
	case LTE:
		return "<="
	case GT:
		return ">"
	case GTE:
		return ">="
	}
	return "?"
}

var compOps = map[string]CompOp{
	"propertyisequalto":              EQ,
	"propertyisnotequalto":           NE,
	"propertyislessthan":             LT,
	"propertyislessthanorequalto":    LTE,
	"propertyisgreaterthan":          GT,
	"propertyisgreaterthanorequalto": GTE,
}

// Filter selects the features a rule applies to.
type Filter interface {
	Match(f Feature) bool
	String() string
}

// Comparison compares a feature property with a literal. Values are
// compared as numbers when both sides parse as numbers, as strings
// otherwise. Features without the property never match.
type Comparison struct {
	Property string
	Op       CompOp
	Value    string

	number  float64
	numeric bool
}

// NewComparison returns the filter `property op value`.
func NewComparison(property string, op CompOp, value string) *Comparison {
	c := &Comparison{Property: property, Op: op, Value: value}
	c.number, c.numeric = parseNumber(value)
	return c
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

func (c *Comparison) Match(f Feature) bool {
	v, ok := f.Property(c.Property)
	if !ok || v == nil {
		return false
	}
	if c.numeric {
		if n, ok := numberOf(v); ok {
			return compare(c.Op, cmpFloat(n, c.number))
		}
	}
	s, ok := stringOf(v)
	if !ok {
		return false
	}
	return compare(c.Op, strings.Compare(s, c.Value))
}

func (c *Comparison) String() string {
	return fmt.Sprintf("[%s] %s '%s'", c.Property, c.Op, c.Value)
}

func numberOf(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		return parseNumber(n)
	}
	return 0, false
}

func stringOf(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case Geometry:
		return "", false
	case bool:
		return strconv.FormatBool(s), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	}
	return fmt.Sprint(v), true
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compare(op CompOp, c int) bool {
	switch op {
	case EQ:
		return c == 0
	case NE:
		return c != 0
	case LT:
		return c < 0
	case LTE:
		return c <= 0
	case GT:
		return c > 0
	case GTE:
		return c >= 0
	}
	return false
}

// IsNull matches features without a value for Property.
type IsNull struct {
	Property string
}

func (n IsNull) Match(f Feature) bool {
	v, ok := f.Property(n.Property)
	return !ok || v == nil
}

func (n IsNull) String() string { return "[" + n.Property + "] IS NULL" }

type And []Filter

func (a And) Match(f Feature) bool {
	for _, c := range a {
		if !c.Match(f) {
			return false
		}
	}
	return true
}

func (a And) String() string { return joinFilters(a, " AND ") }

type Or []Filter

func (o Or) Match(f Feature) bool {
	for _, c := range o {
		if c.Match(f) {
			return true
		}
	}
	return false
}

func (o Or) String() string { return joinFilters(o, " OR ") }

type Not struct {
	Filter Filter
}

func (n Not) Match(f Feature) bool { return !n.Filter.Match(f) }

func (n Not) String() string { return "NOT " + n.Filter.String() }

func joinFilters(fs []Filter, sep string) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// NewFilter builds a filter from a parsed ogc:Filter operator. A nil node
// gives a nil filter, matching every feature.
func NewFilter(n *FilterNode, facade DocumentFacade) (Filter, error) {
	if n == nil {
		return nil, nil
	}
	if facade == nil {
		facade = LiteralFacade{}
	}
	op := strings.ToLower(n.Op)
	if cmp, ok := compOps[op]; ok {
		prop, err := propertyOf(n, facade)
		if err != nil {
			return nil, err
		}
		lit, _, err := facade.Literal(n.Literal)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.Op, err)
		}
		return NewComparison(prop, cmp, lit), nil
	}
	switch op {
	case "propertyisnull":
		prop, err := propertyOf(n, facade)
		if err != nil {
			return nil, err
		}
		return IsNull{Property: prop}, nil
	case "and", "or":
		children := make([]Filter, 0, len(n.Children))
		for _, c := range n.Children {
			f, err := NewFilter(c, facade)
			if err != nil {
				return nil, err
			}
			if f != nil {
				children = append(children, f)
			}
		}
		if op == "and" {
			return And(children), nil
		}
		return Or(children), nil
	case "not":
		if len(n.Children) != 1 {
			return nil, fmt.Errorf("%w: Not with %d operands", ErrUnsupportedExpression, len(n.Children))
		}
		f, err := NewFilter(n.Children[0], facade)
		if err != nil {
			return nil, err
		}
		return Not{Filter: f}, nil
	}
	return nil, fmt.Errorf("%w: filter %s", ErrUnsupportedExpression, n.Op)
}

func propertyOf(n *FilterNode, facade DocumentFacade) (string, error) {
	if n.PropertyName == nil {
		return "", fmt.Errorf("%w: %s without PropertyName", ErrUnsupportedExpression, n.Op)
	}
	s, ok, err := facade.Literal(n.PropertyName.Content)
	if err != nil {
		return "", fmt.Errorf("%s: %w", n.Op, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s with empty PropertyName", ErrUnsupportedExpression, n.Op)
	}
	return s, nil
}

// EqualityValues returns the property values a feature must carry to be
// matched by any of the rules, keyed by property name. It returns nil when
// a rule can match features regardless of their property values, in which
// case no prefiltering is possible.
func EqualityValues(rules []*Rule) map[string]map[string]struct{} {
	result := make(map[string]map[string]struct{})
	for _, r := range rules {
		if r.ElseFilter || r.Filter == nil {
			return nil
		}
		if !collectEquality(r.Filter, result) {
			return nil
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func collectEquality(f Filter, result map[string]map[string]struct{}) bool {
	switch v := f.(type) {
	case *Comparison:
		if v.Op != EQ {
			return false
		}
		if result[v.Property] == nil {
			result[v.Property] = make(map[string]struct{})
		}
		result[v.Property][v.Value] = struct{}{}
		return true
	case Or:
		if len(v) == 0 {
			return false
		}
		for _, c := range v {
			if !collectEquality(c, result) {
				return false
			}
		}
		return true
	case And:
		// one equality operand is enough to restrict the conjunction
		for _, c := range v {
			if cmp, ok := c.(*Comparison); ok && cmp.Op == EQ {
				return collectEquality(cmp, result)
			}
		}
	}
	return false
}

// Prefilter reports whether f can match any rule summarized by values,
// the result of EqualityValues. A nil values matches every feature.
func Prefilter(values map[string]map[string]struct{}, f Feature) bool {
	if values == nil {
		return true
	}
	for prop, vs := range values {
		v, ok := f.Property(prop)
		if !ok {
			continue
		}
		if n, isNum := numberOf(v); isNum {
			for lit := range vs {
				if ln, ok := parseNumber(lit); ok && ln == n {
					return true
				}
			}
		}
		s, ok := stringOf(v)
		if !ok {
			continue
		}
		if _, ok := vs[s]; ok {
			return true
		}
	}
	return false
}

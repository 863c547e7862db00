package sld

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Rule is a set of symbolizers applied to the features that match its
// filter within its scale range.
type Rule struct {
	Name  string
	Title string
	// MinScale and MaxScale bound the scale denominator; zero means
	// unbounded.
	MinScale    float64
	MaxScale    float64
	Filter      Filter
	ElseFilter  bool
	Symbolizers []Symbolizer
}

// NewRule builds a rule and all of its symbolizers.
func NewRule(n *RuleNode, opts ...Option) (*Rule, error) {
	o := newOptions(opts)
	r := &Rule{
		Name:       n.Name,
		Title:      n.Title,
		MinScale:   n.MinScale,
		MaxScale:   n.MaxScale,
		ElseFilter: n.ElseFilter,
	}
	if r.MaxScale != 0 && r.MinScale >= r.MaxScale {
		return nil, fmt.Errorf("rule %q: %w: empty scale range [%g, %g)", n.Name, ErrInvalidStyleValue, r.MinScale, r.MaxScale)
	}
	f, err := NewFilter(n.Filter, o.facade)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", n.Name, err)
	}
	r.Filter = f
	for i, sn := range n.Symbolizers {
		s, err := NewSymbolizer(sn, opts...)
		if err != nil {
			return nil, fmt.Errorf("rule %q: symbolizer %d: %w", n.Name, i, err)
		}
		r.Symbolizers = append(r.Symbolizers, s)
	}
	return r, nil
}

// InScale reports whether the rule applies at scale denominator s.
func (r *Rule) InScale(s float64) bool {
	return inScale(r.MinScale, r.MaxScale, s)
}

// Matches reports whether f passes the rule's filter. Else rules match
// nothing by themselves.
func (r *Rule) Matches(f Feature) bool {
	if r.ElseFilter {
		return false
	}
	return r.Filter == nil || r.Filter.Match(f)
}

func (r *Rule) String() string {
	var parts []string
	if r.Name != "" {
		parts = append(parts, "name="+r.Name)
	}
	if r.MinScale != 0 || r.MaxScale != 0 {
		parts = append(parts, fmt.Sprintf("scale=[%g,%g)", r.MinScale, r.MaxScale))
	}
	switch {
	case r.ElseFilter:
		parts = append(parts, "else")
	case r.Filter != nil:
		parts = append(parts, "filter="+r.Filter.String())
	}
	kinds := make([]string, len(r.Symbolizers))
	for i, s := range r.Symbolizers {
		kinds[i] = s.Kind().String()
	}
	parts = append(parts, "symbolizers="+strings.Join(kinds, ","))
	return "Rule{" + strings.Join(parts, " ") + "}"
}

// Style is a FeatureTypeStyle: an ordered list of rules.
type Style struct {
	Name            string
	FeatureTypeName string
	Rules           []*Rule
}

// NewStyle builds a style from a parsed FeatureTypeStyle.
func NewStyle(n *FeatureTypeStyleNode, opts ...Option) (*Style, error) {
	s := &Style{Name: n.Name, FeatureTypeName: n.FeatureTypeName}
	for _, rn := range n.Rules {
		r, err := NewRule(rn, opts...)
		if err != nil {
			return nil, fmt.Errorf("style %q: %w", n.Name, err)
		}
		s.Rules = append(s.Rules, r)
	}
	return s, nil
}

// RulesAt returns the rules that apply at scale denominator scale, in
// document order.
func (s *Style) RulesAt(scale float64) []*Rule {
	var rules []*Rule
	for _, r := range s.Rules {
		if r.InScale(scale) {
			rules = append(rules, r)
		}
	}
	return rules
}

// Render draws f with every matching rule in scale. Else rules are only
// applied when no other rule matched. A failing symbolizer does not stop
// the remaining ones; all errors are returned together.
func (s *Style) Render(t Target, f Feature, scale float64) error {
	return renderRules(s.RulesAt(scale), t, f)
}

func renderRules(rules []*Rule, t Target, f Feature) error {
	var err error
	matched := false
	for _, r := range rules {
		if !r.Matches(f) {
			continue
		}
		matched = true
		err = multierr.Append(err, r.symbolize(t, f))
	}
	if matched {
		return err
	}
	for _, r := range rules {
		if r.ElseFilter {
			err = multierr.Append(err, r.symbolize(t, f))
		}
	}
	return err
}

func (r *Rule) symbolize(t Target, f Feature) error {
	var err error
	for _, s := range r.Symbolizers {
		if e := s.Symbolize(t, f); e != nil {
			err = multierr.Append(err, fmt.Errorf("%s %q: %w", s.Kind(), s.Name(), e))
		}
	}
	return err
}

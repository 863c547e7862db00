// Package sldxml binds Styled Layer Descriptor and Symbology Encoding XML
// documents to the document tree consumed by package sld.
package sldxml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	sld "github.com/flywave/go-sld"
)

// Document is a parsed style document.
type Document struct {
	Name   string
	Layers []NamedLayer
}

// NamedLayer groups the user styles of one layer.
type NamedLayer struct {
	Name   string
	Styles []UserStyle
}

// UserStyle is a named list of feature type styles.
type UserStyle struct {
	Name              string
	Title             string
	IsDefault         bool
	FeatureTypeStyles []*sld.FeatureTypeStyleNode
}

// ReadFile parses the style document at path.
func ReadFile(path string, log *zap.Logger) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}
	return Parse(doc, log)
}

// ReadString parses a style document held in s.
func ReadString(s string, log *zap.Logger) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		return nil, fmt.Errorf("unable to read style document: %w", err)
	}
	return Parse(doc, log)
}

// Parse walks the etree DOM. The root may be a StyledLayerDescriptor, a
// UserStyle or a bare FeatureTypeStyle; the latter two are wrapped in an
// unnamed layer. Namespace prefixes are ignored.
func Parse(doc *etree.Document, log *zap.Logger) (*Document, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("sldxml")
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}

	d := &Document{}
	switch root.Tag {
	case "StyledLayerDescriptor":
		for _, child := range root.ChildElements() {
			switch child.Tag {
			case "Name":
				d.Name = text(child)
			case "NamedLayer", "UserLayer":
				l, err := parseNamedLayer(child, log)
				if err != nil {
					return nil, fmt.Errorf("layer: %w", err)
				}
				d.Layers = append(d.Layers, l)
			case "Title", "Abstract", "Description":
			default:
				log.Warn("Unexpected tag in StyledLayerDescriptor, ignoring", zap.String("tag", child.Tag))
			}
		}
	case "UserStyle":
		s, err := parseUserStyle(root, log)
		if err != nil {
			return nil, err
		}
		d.Layers = []NamedLayer{{Styles: []UserStyle{s}}}
	case "FeatureTypeStyle":
		fts, err := parseFeatureTypeStyle(root, log)
		if err != nil {
			return nil, err
		}
		d.Layers = []NamedLayer{{Styles: []UserStyle{{Name: fts.Name, FeatureTypeStyles: []*sld.FeatureTypeStyleNode{fts}}}}}
	default:
		return nil, fmt.Errorf("unexpected root element %q", root.Tag)
	}
	return d, nil
}

func parseNamedLayer(el *etree.Element, log *zap.Logger) (NamedLayer, error) {
	l := NamedLayer{}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "Name":
			l.Name = text(child)
		case "UserStyle":
			s, err := parseUserStyle(child, log)
			if err != nil {
				return l, fmt.Errorf("%s: %w", l.Name, err)
			}
			l.Styles = append(l.Styles, s)
		case "NamedStyle":
			log.Warn("Named styles are not resolved, ignoring", zap.String("layer", l.Name))
		case "Description", "LayerFeatureConstraints", "InlineFeature":
		default:
			log.Warn("Unexpected tag in NamedLayer, ignoring", zap.String("tag", child.Tag))
		}
	}
	return l, nil
}

func parseUserStyle(el *etree.Element, log *zap.Logger) (UserStyle, error) {
	s := UserStyle{}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "Name":
			s.Name = text(child)
		case "Title":
			s.Title = text(child)
		case "IsDefault":
			v := strings.ToLower(text(child))
			s.IsDefault = v == "1" || v == "true"
		case "FeatureTypeStyle", "CoverageStyle":
			fts, err := parseFeatureTypeStyle(child, log)
			if err != nil {
				return s, fmt.Errorf("style %s: %w", s.Name, err)
			}
			s.FeatureTypeStyles = append(s.FeatureTypeStyles, fts)
		case "Description", "Abstract":
		default:
			log.Warn("Unexpected tag in UserStyle, ignoring", zap.String("tag", child.Tag))
		}
	}
	return s, nil
}

func parseFeatureTypeStyle(el *etree.Element, log *zap.Logger) (*sld.FeatureTypeStyleNode, error) {
	fts := &sld.FeatureTypeStyleNode{}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "Name":
			fts.Name = text(child)
		case "FeatureTypeName":
			fts.FeatureTypeName = text(child)
		case "Rule":
			r, err := parseRule(child, log)
			if err != nil {
				return nil, fmt.Errorf("rule %d: %w", len(fts.Rules), err)
			}
			fts.Rules = append(fts.Rules, r)
		case "Title", "Abstract", "Description", "SemanticTypeIdentifier", "VendorOption":
		default:
			log.Warn("Unexpected tag in FeatureTypeStyle, ignoring", zap.String("tag", child.Tag))
		}
	}
	return fts, nil
}

func parseRule(el *etree.Element, log *zap.Logger) (*sld.RuleNode, error) {
	r := &sld.RuleNode{}
	var err error
	for _, child := range el.ChildElements() {
		if kind, ok := sld.KindFromTag(child.Tag); ok {
			r.Symbolizers = append(r.Symbolizers, parseSymbolizer(child, kind, log))
			continue
		}
		switch child.Tag {
		case "Name":
			r.Name = text(child)
		case "Title":
			r.Title = text(child)
		case "Description":
			if t := child.SelectElement("Title"); t != nil {
				r.Title = text(t)
			}
		case "MinScaleDenominator":
			if r.MinScale, err = scale(child); err != nil {
				return nil, err
			}
		case "MaxScaleDenominator":
			if r.MaxScale, err = scale(child); err != nil {
				return nil, err
			}
		case "ElseFilter":
			r.ElseFilter = true
		case "Filter":
			ops := child.ChildElements()
			if len(ops) != 1 {
				return nil, fmt.Errorf("filter with %d operators", len(ops))
			}
			r.Filter = parseFilter(ops[0])
		case "Abstract", "LegendGraphic":
		default:
			if strings.HasSuffix(child.Tag, "Symbolizer") {
				log.Warn("Unsupported symbolizer, ignoring", zap.String("rule", r.Name), zap.String("tag", child.Tag))
				continue
			}
			log.Warn("Unexpected tag in Rule, ignoring", zap.String("tag", child.Tag))
		}
	}
	return r, nil
}

func scale(el *etree.Element) (float64, error) {
	s := text(el)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", el.Tag, s, sld.ErrInvalidStyleValue)
	}
	return f, nil
}

func parseFilter(el *etree.Element) *sld.FilterNode {
	n := &sld.FilterNode{Op: el.Tag}
	switch el.Tag {
	case "And", "Or", "Not":
		for _, child := range el.ChildElements() {
			n.Children = append(n.Children, parseFilter(child))
		}
		return n
	}
	for _, child := range el.ChildElements() {
		switch {
		case child.Tag == "PropertyName" && n.PropertyName == nil:
			n.PropertyName = &sld.PropertyName{Content: content(child)}
		case child.Tag == "Literal":
			n.Literal = content(child)
		default:
			n.Literal = sld.Content{element(child)}
		}
	}
	return n
}

func parseSymbolizer(el *etree.Element, kind sld.Kind, log *zap.Logger) *sld.SymbolizerNode {
	n := &sld.SymbolizerNode{
		Kind: kind,
		UOM:  el.SelectAttrValue("uom", ""),
	}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "Name":
			n.Name = text(child)
		case "Geometry":
			n.Geometry = &sld.GeometryNode{}
			if pn := child.SelectElement("PropertyName"); pn != nil {
				n.Geometry.PropertyName = &sld.PropertyName{Content: content(pn)}
			}
		case "Stroke":
			n.Stroke = &sld.StrokeNode{Parameters: parameters(child)}
		case "Fill":
			n.Fill = parseFill(child)
		case "PerpendicularOffset":
			n.PerpendicularOffset = parameterValue(child)
		case "Displacement":
			n.Displacement = parseDisplacement(child)
		case "Graphic":
			n.Graphic = parseGraphic(child, log)
		case "Label":
			n.Label = parameterValue(child)
		case "Font":
			n.Font = &sld.FontNode{Parameters: parameters(child)}
		case "Halo":
			n.Halo = parseHalo(child)
		case "LabelPlacement":
			n.LabelPlacement = parseLabelPlacement(child)
		case "Description", "VendorOption", "Priority":
		default:
			log.Warn("Unexpected tag in symbolizer, ignoring", zap.Stringer("kind", kind), zap.String("tag", child.Tag))
		}
	}
	return n
}

func parseFill(el *etree.Element) *sld.FillNode {
	return &sld.FillNode{Parameters: parameters(el)}
}

func parseDisplacement(el *etree.Element) *sld.DisplacementNode {
	d := &sld.DisplacementNode{}
	if x := el.SelectElement("DisplacementX"); x != nil {
		d.X = parameterValue(x)
	}
	if y := el.SelectElement("DisplacementY"); y != nil {
		d.Y = parameterValue(y)
	}
	return d
}

func parseGraphic(el *etree.Element, log *zap.Logger) *sld.GraphicNode {
	g := &sld.GraphicNode{}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "Mark":
			if g.Mark != nil {
				log.Debug("Only the first mark of a graphic is drawn")
				continue
			}
			m := &sld.MarkNode{}
			for _, mc := range child.ChildElements() {
				switch mc.Tag {
				case "WellKnownName":
					m.WellKnownName = text(mc)
				case "Fill":
					m.Fill = parseFill(mc)
				case "Stroke":
					m.Stroke = &sld.StrokeNode{Parameters: parameters(mc)}
				}
			}
			g.Mark = m
		case "Opacity":
			g.Opacity = parameterValue(child)
		case "Size":
			g.Size = parameterValue(child)
		case "Rotation":
			g.Rotation = parameterValue(child)
		default:
			log.Warn("Unexpected tag in Graphic, ignoring", zap.String("tag", child.Tag))
		}
	}
	return g
}

func parseHalo(el *etree.Element) *sld.HaloNode {
	h := &sld.HaloNode{}
	if r := el.SelectElement("Radius"); r != nil {
		h.Radius = parameterValue(r)
	}
	if f := el.SelectElement("Fill"); f != nil {
		h.Fill = parseFill(f)
	}
	return h
}

func parseLabelPlacement(el *etree.Element) *sld.LabelPlacementNode {
	lp := &sld.LabelPlacementNode{}
	if pp := el.SelectElement("PointPlacement"); pp != nil {
		p := &sld.PointPlacementNode{}
		if a := pp.SelectElement("AnchorPoint"); a != nil {
			p.Anchor = &sld.AnchorPointNode{}
			if x := a.SelectElement("AnchorPointX"); x != nil {
				p.Anchor.X = parameterValue(x)
			}
			if y := a.SelectElement("AnchorPointY"); y != nil {
				p.Anchor.Y = parameterValue(y)
			}
		}
		if d := pp.SelectElement("Displacement"); d != nil {
			p.Displacement = parseDisplacement(d)
		}
		if r := pp.SelectElement("Rotation"); r != nil {
			p.Rotation = parameterValue(r)
		}
		lp.Point = p
	}
	if l := el.SelectElement("LinePlacement"); l != nil {
		lp.Line = &sld.LinePlacementNode{}
		if o := l.SelectElement("PerpendicularOffset"); o != nil {
			lp.Line.PerpendicularOffset = parameterValue(o)
		}
	}
	return lp
}

// parameters collects the SvgParameter (SE) and CssParameter (SLD 1.0)
// children of el.
func parameters(el *etree.Element) []sld.SvgParameter {
	var params []sld.SvgParameter
	for _, child := range el.ChildElements() {
		if child.Tag != "SvgParameter" && child.Tag != "CssParameter" {
			continue
		}
		params = append(params, sld.SvgParameter{
			Name:    child.SelectAttrValue("name", ""),
			Content: content(child),
		})
	}
	return params
}

func parameterValue(el *etree.Element) *sld.ParameterValue {
	return &sld.ParameterValue{Content: content(el)}
}

// content converts the mixed content of el, keeping nested elements.
func content(el *etree.Element) sld.Content {
	var c sld.Content
	for _, node := range el.Child {
		switch token := node.(type) {
		case *etree.CharData:
			c = append(c, sld.CharData(token.Data))
		case *etree.Element:
			c = append(c, element(token))
		}
	}
	return c
}

func element(el *etree.Element) *sld.ExprElement {
	return &sld.ExprElement{Space: el.Space, Tag: el.Tag, Content: content(el)}
}

func text(el *etree.Element) string {
	return strings.TrimSpace(el.Text())
}

package sld

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/flywave/go-sld/color"
)

// Parameter names understood by Parameters.
const (
	ParamStroke           = "stroke"
	ParamStrokeWidth      = "stroke-width"
	ParamStrokeOpacity    = "stroke-opacity"
	ParamStrokeLinejoin   = "stroke-linejoin"
	ParamStrokeLinecap    = "stroke-linecap"
	ParamStrokeDasharray  = "stroke-dasharray"
	ParamStrokeDashoffset = "stroke-dashoffset"
	ParamFill             = "fill"
	ParamFillOpacity      = "fill-opacity"
	ParamFontFamily       = "font-family"
	ParamFontSize         = "font-size"
	ParamFontStyle        = "font-style"
	ParamFontWeight       = "font-weight"
)

// Symbology Encoding 1.1 defaults.
var (
	DefaultStrokeColor      = color.Black
	DefaultFillColor        = color.Gray
	DefaultFontFamily       = "sans-serif"
	DefaultStrokeWidth      = 1.0
	DefaultStrokeOpacity    = 1.0
	DefaultStrokeDashoffset = 0.0
	DefaultFillOpacity      = 1.0
	DefaultFontSize         = 10.0
)

const (
	DefaultStrokeLinejoin = LineJoinMiter
	DefaultStrokeLinecap  = LineCapSquare
)

// Parameters is the set of SvgParameters of a Stroke, Fill or Font
// element. Only literal values are supported. Names are case-insensitive.
// A Parameters value is not modified after construction and may be shared
// between goroutines.
type Parameters struct {
	values map[string]string
}

// ParametersFromList builds Parameters from parsed SvgParameter elements.
// A parameter repeated under the same name keeps the last value.
func ParametersFromList(params []SvgParameter, facade DocumentFacade) (*Parameters, error) {
	if facade == nil {
		facade = LiteralFacade{}
	}
	p := &Parameters{values: make(map[string]string, len(params))}
	for _, param := range params {
		v, _, err := facade.Literal(param.Content)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", param.Name, err)
		}
		p.add(param.Name, v)
	}
	return p, nil
}

// ParametersFromMap builds Parameters from name/value pairs.
func ParametersFromMap(params map[string]string) *Parameters {
	p := &Parameters{values: make(map[string]string, len(params))}
	for k, v := range params {
		p.add(k, v)
	}
	return p
}

func (p *Parameters) add(name, value string) {
	p.values[strings.ToLower(strings.TrimSpace(name))] = value
}

func (p *Parameters) String() string {
	var buf bytes.Buffer
	buf.WriteString("Parameters{")
	for i, k := range p.names() {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: %q", k, p.values[k])
	}
	buf.WriteRune('}')
	return buf.String()
}

func (p *Parameters) names() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsEmpty reports whether no parameter was given.
func (p *Parameters) IsEmpty() bool {
	return p == nil || len(p.values) == 0
}

// get returns the trimmed value of name. Blank values count as absent;
// StrokeDasharray reads the raw value instead, where blank means solid.
func (p *Parameters) get(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.values[name]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (p *Parameters) float(name string, dflt float64) (float64, error) {
	v, ok := p.get(name)
	if !ok {
		return dflt, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &ParameterError{Name: name, Value: v, Err: ErrInvalidStyleValue}
	}
	return f, nil
}

func (p *Parameters) color(name string, dflt color.Color) (color.Color, error) {
	v, ok := p.get(name)
	if !ok {
		return dflt, nil
	}
	c, err := color.Parse(v)
	if err != nil {
		return color.Color{}, &ParameterError{Name: name, Value: v, Err: ErrMalformedColor}
	}
	return c, nil
}

func (p *Parameters) keyword(name string, keywords map[string]int, dflt int) (int, error) {
	v, ok := p.get(name)
	if !ok {
		return dflt, nil
	}
	if k, ok := keywords[strings.ToLower(v)]; ok {
		return k, nil
	}
	return 0, &ParameterError{Name: name, Value: v, Err: ErrInvalidStyleValue}
}

func (p *Parameters) StrokeColor() (color.Color, error) {
	return p.color(ParamStroke, DefaultStrokeColor)
}

func (p *Parameters) StrokeWidth() (float64, error) {
	return p.float(ParamStrokeWidth, DefaultStrokeWidth)
}

func (p *Parameters) StrokeOpacity() (float64, error) {
	return p.float(ParamStrokeOpacity, DefaultStrokeOpacity)
}

var lineJoins = map[string]int{
	"mitre": int(LineJoinMiter),
	"miter": int(LineJoinMiter),
	"round": int(LineJoinRound),
	"bevel": int(LineJoinBevel),
}

// StrokeLinejoin maps mitre, round and bevel (in any case) to a LineJoin.
func (p *Parameters) StrokeLinejoin() (LineJoin, error) {
	j, err := p.keyword(ParamStrokeLinejoin, lineJoins, int(DefaultStrokeLinejoin))
	return LineJoin(j), err
}

var lineCaps = map[string]int{
	"butt":   int(LineCapButt),
	"round":  int(LineCapRound),
	"square": int(LineCapSquare),
}

// StrokeLinecap maps butt, round and square (in any case) to a LineCap.
func (p *Parameters) StrokeLinecap() (LineCap, error) {
	c, err := p.keyword(ParamStrokeLinecap, lineCaps, int(DefaultStrokeLinecap))
	return LineCap(c), err
}

// StrokeDasharray returns nil if no dash array was given and an empty
// slice for a blank value or "none". An odd number of lengths is repeated
// once to give an even-length pattern.
func (p *Parameters) StrokeDasharray() ([]float64, error) {
	if p == nil {
		return nil, nil
	}
	raw, ok := p.values[ParamStrokeDasharray]
	if !ok {
		return nil, nil
	}
	tokens := strings.Fields(raw)
	if len(tokens) == 1 && strings.EqualFold(tokens[0], "none") {
		tokens = nil
	}
	n := len(tokens)
	if n%2 != 0 {
		n *= 2
	}
	dash := make([]float64, n)
	for i := range dash {
		tok := tokens[i%len(tokens)]
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil || f < 0 {
			return nil, &ParameterError{Name: ParamStrokeDasharray, Value: raw, Err: ErrInvalidStyleValue}
		}
		dash[i] = f
	}
	return dash, nil
}

func (p *Parameters) StrokeDashoffset() (float64, error) {
	return p.float(ParamStrokeDashoffset, DefaultStrokeDashoffset)
}

func (p *Parameters) FillColor() (color.Color, error) {
	return p.color(ParamFill, DefaultFillColor)
}

func (p *Parameters) FillOpacity() (float64, error) {
	return p.float(ParamFillOpacity, DefaultFillOpacity)
}

// FontFamily returns the first family of a comma separated list.
func (p *Parameters) FontFamily() string {
	v, ok := p.get(ParamFontFamily)
	if !ok {
		return DefaultFontFamily
	}
	first := strings.TrimSpace(strings.Split(v, ",")[0])
	first = strings.Trim(first, `"'`)
	if first == "" {
		return DefaultFontFamily
	}
	return first
}

func (p *Parameters) FontSize() (float64, error) {
	return p.float(ParamFontSize, DefaultFontSize)
}

var fontStyles = map[string]int{
	"normal":  int(FontStyleNormal),
	"italic":  int(FontStyleItalic),
	"oblique": int(FontStyleOblique),
}

func (p *Parameters) FontStyle() (FontStyle, error) {
	s, err := p.keyword(ParamFontStyle, fontStyles, int(FontStyleNormal))
	return FontStyle(s), err
}

var fontWeights = map[string]int{
	"normal": int(FontWeightNormal),
	"bold":   int(FontWeightBold),
}

func (p *Parameters) FontWeight() (FontWeight, error) {
	w, err := p.keyword(ParamFontWeight, fontWeights, int(FontWeightNormal))
	return FontWeight(w), err
}

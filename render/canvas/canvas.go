// Package canvas is a raster drawing backend on top of rasterx. Labels
// are set in the Go fonts.
package canvas

import (
	"fmt"
	"image"
	imgcolor "image/color"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	sld "github.com/flywave/go-sld"
	"github.com/flywave/go-sld/color"
)

// MiterLimit is the SVG default ratio of miter length to stroke width.
const MiterLimit = 4

// Canvas draws on an RGBA image. It is not safe for concurrent use.
type Canvas struct {
	img     *image.RGBA
	scanner *rasterx.ScannerGV
	filler  *rasterx.Filler
	dasher  *rasterx.Dasher
	fonts   map[fontKey]*opentype.Font
	faces   map[faceKey]font.Face
}

type fontKey struct {
	style  sld.FontStyle
	weight sld.FontWeight
}

type faceKey struct {
	fontKey
	size float64
}

func New(width, height int) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	return &Canvas{
		img:     img,
		scanner: scanner,
		filler:  rasterx.NewFiller(width, height, scanner),
		dasher:  rasterx.NewDasher(width, height, scanner),
		fonts:   make(map[fontKey]*opentype.Font),
		faces:   make(map[faceKey]font.Face),
	}
}

func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) Image() image.Image {
	return c.img
}

// RGBA returns the underlying image.
func (c *Canvas) RGBA() *image.RGBA {
	return c.img
}

func (c *Canvas) Clear(bg color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
}

func (c *Canvas) FillShape(s sld.Shape, p sld.Paint) error {
	if len(s.Paths) == 0 || len(s.Paths[0]) < 3 {
		return nil
	}
	for _, path := range orientRings(s.Paths) {
		if len(path) >= 3 {
			addPath(c.filler, path, true)
		}
	}
	c.filler.SetColor(p.Effective())
	c.filler.Draw()
	c.filler.Clear()
	return nil
}

func (c *Canvas) StrokeShape(s sld.Shape, st sld.Stroke) error {
	if st.Width <= 0 {
		return nil
	}
	if st.Unit != sld.Pixel {
		return fmt.Errorf("stroke in %s, expected pixels", st.Unit)
	}
	capFn, gapFn, join := strokeStyle(st)
	width := fixed.Int26_6(st.Width * 64)
	c.dasher.SetStroke(width, MiterLimit*64, capFn, nil, gapFn, join, st.Dash, st.DashOffset)
	drawn := false
	for _, path := range s.Paths {
		if len(path) < 2 {
			continue
		}
		addPath(c.dasher, path, s.Closed)
		drawn = true
	}
	if !drawn {
		return nil
	}
	c.dasher.SetColor(st.Effective())
	c.dasher.Draw()
	c.dasher.Clear()
	return nil
}

func strokeStyle(st sld.Stroke) (rasterx.CapFunc, rasterx.GapFunc, rasterx.JoinMode) {
	var capFn rasterx.CapFunc
	switch st.LineCap {
	case sld.LineCapButt:
		capFn = rasterx.ButtCap
	case sld.LineCapRound:
		capFn = rasterx.RoundCap
	default:
		capFn = rasterx.SquareCap
	}
	switch st.LineJoin {
	case sld.LineJoinRound:
		return capFn, rasterx.RoundGap, rasterx.Round
	case sld.LineJoinBevel:
		return capFn, rasterx.FlatGap, rasterx.Bevel
	}
	return capFn, rasterx.FlatGap, rasterx.Miter
}

func addPath(a rasterx.Adder, path []sld.Coord, closed bool) {
	a.Start(rasterx.ToFixedP(path[0].X, path[0].Y))
	for _, p := range path[1:] {
		a.Line(rasterx.ToFixedP(p.X, p.Y))
	}
	a.Stop(closed)
}

// orientRings reverses holes that turn the same way as the exterior ring,
// since the scanner only supports the non-zero winding rule.
func orientRings(paths [][]sld.Coord) [][]sld.Coord {
	if len(paths) < 2 {
		return paths
	}
	out := make([][]sld.Coord, len(paths))
	out[0] = paths[0]
	outer := area(paths[0]) >= 0
	for i, p := range paths[1:] {
		if (area(p) >= 0) == outer {
			r := make([]sld.Coord, len(p))
			for j := range p {
				r[j] = p[len(p)-1-j]
			}
			p = r
		}
		out[i+1] = p
	}
	return out
}

func area(ring []sld.Coord) float64 {
	a := 0.0
	for i := range ring {
		j := (i + 1) % len(ring)
		a += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return a
}

func (c *Canvas) face(f sld.Font) (font.Face, error) {
	key := faceKey{fontKey{f.Style, f.Weight}, f.Size}
	if face, ok := c.faces[key]; ok {
		return face, nil
	}
	ttf, ok := c.fonts[key.fontKey]
	if !ok {
		var err error
		if ttf, err = opentype.Parse(fontData(key.fontKey)); err != nil {
			return nil, err
		}
		c.fonts[key.fontKey] = ttf
	}
	face, err := opentype.NewFace(ttf, &opentype.FaceOptions{Size: f.Size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	c.faces[key] = face
	return face, nil
}

// fontData selects a Go font variant; the family is not consulted.
func fontData(k fontKey) []byte {
	italic := k.style != sld.FontStyleNormal
	switch {
	case italic && k.weight == sld.FontWeightBold:
		return gobolditalic.TTF
	case italic:
		return goitalic.TTF
	case k.weight == sld.FontWeightBold:
		return gobold.TTF
	}
	return goregular.TTF
}

// DrawLabel renders the label into a scratch image and composites it
// rotated about its anchor.
func (c *Canvas) DrawLabel(l sld.Label) error {
	if l.Text == "" || l.Font.Size <= 0 {
		return nil
	}
	face, err := c.face(l.Font)
	if err != nil {
		return fmt.Errorf("label %q: %w", l.Text, err)
	}
	m := face.Metrics()
	ascent, descent := float64(m.Ascent)/64, float64(m.Descent)/64
	width := float64(font.MeasureString(face, l.Text)) / 64
	height := ascent + descent

	pad := 1
	if l.Halo != nil {
		pad += int(math.Ceil(l.Halo.Radius))
	}
	scratch := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(width))+2*pad, int(math.Ceil(height))+2*pad))
	baseline := fixed.P(pad, pad+int(math.Round(ascent)))
	if h := l.Halo; h != nil && h.Radius > 0 {
		r := int(math.Ceil(h.Radius))
		src := image.NewUniform(h.Fill.Effective())
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if float64(dx*dx+dy*dy) > h.Radius*h.Radius {
					continue
				}
				d := font.Drawer{Dst: scratch, Src: src, Face: face, Dot: baseline.Add(fixed.P(dx, dy))}
				d.DrawString(l.Text)
			}
		}
	}
	d := font.Drawer{Dst: scratch, Src: image.NewUniform(l.Fill.Effective()), Face: face, Dot: baseline}
	d.DrawString(l.Text)

	// anchor in scratch coordinates, y of the anchor measured upwards
	ax := float64(pad) + l.Anchor.X*width
	ay := float64(pad) + (1-l.Anchor.Y)*height
	if l.Rotation == 0 {
		off := image.Pt(int(math.Round(l.At.X-ax)), int(math.Round(l.At.Y-ay)))
		draw.Draw(c.img, scratch.Bounds().Add(off), scratch, image.Point{}, draw.Over)
		return nil
	}
	sin, cos := math.Sincos(l.Rotation * math.Pi / 180)
	s2d := f64.Aff3{
		cos, -sin, l.At.X - (cos*ax - sin*ay),
		sin, cos, l.At.Y - (sin*ax + cos*ay),
	}
	draw.ApproxBiLinear.Transform(c.img, s2d, scratch, scratch.Bounds(), draw.Over, nil)
	return nil
}

// Pixel returns the color at x, y; for tests and debugging.
func (c *Canvas) Pixel(x, y int) imgcolor.NRGBA {
	return imgcolor.NRGBAModel.Convert(c.img.At(x, y)).(imgcolor.NRGBA)
}

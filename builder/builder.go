package builder

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	sld "github.com/flywave/go-sld"

	"github.com/flywave/go-sld/color"
	"github.com/flywave/go-sld/config"
	"github.com/flywave/go-sld/sldxml"
)

// Builder builds map layers from a project file and SLD files.
type Builder struct {
	dstMap          Map
	sld             []string
	project         string
	locator         config.Locator
	dumpRules       io.Writer
	includeInactive bool
	opts            []sld.Option
	log             *zap.Logger
}

// New returns a Builder
func New(mw Map) *Builder {
	return &Builder{dstMap: mw, includeInactive: true, log: zap.NewNop()}
}

// AddSLD adds another style document to this builder.
func (b *Builder) AddSLD(path string) {
	b.sld = append(b.sld, path)
}

// SetProject sets/overwrites the project file of this builder.
func (b *Builder) SetProject(path string) {
	b.project = path
}

// SetLocator sets the locator used to find stylesheets and data files.
func (b *Builder) SetLocator(l config.Locator) {
	b.locator = l
}

func (b *Builder) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	b.log = log.Named("builder")
}

// SetSymbolizerOptions sets the options every symbolizer is built with.
func (b *Builder) SetSymbolizerOptions(opts ...sld.Option) {
	b.opts = opts
}

// SetDumpRulesDest enables internal debuging output.
func (b *Builder) SetDumpRulesDest(w io.Writer) {
	b.dumpRules = w
}

// SetIncludeInactive set whether status=off layers should be included in output.
func (b *Builder) SetIncludeInactive(includeInactive bool) {
	b.includeInactive = includeInactive
}

// Build parses the project and SLD files, builds all styles and adds the
// layers to the Map. Errors of independent files and layers are collected
// and returned together.
func (b *Builder) Build() error {
	if b.locator == nil {
		b.locator = config.NewLocator()
	}
	var project *sld.Project
	if b.project != "" {
		r, err := os.Open(b.project)
		if err != nil {
			return err
		}
		defer r.Close()
		project, err = sld.ParseProject(r)
		if err != nil {
			return fmt.Errorf("%s: %w", b.project, err)
		}
		b.locator.SetBaseDir(filepath.Dir(b.project))
		if len(b.sld) == 0 {
			for _, s := range project.Stylesheets {
				b.sld = append(b.sld, b.locator.Style(s))
			}
		}
	}

	var (
		docs []*sldxml.Document
		errs error
	)
	for _, path := range b.sld {
		doc, err := sldxml.ReadFile(path, b.log)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		docs = append(docs, doc)
	}
	if errs != nil {
		return errs
	}

	if project == nil {
		project = projectFromDocuments(docs)
	}
	errs = b.addLayers(project, docs)

	if files := b.locator.MissingFiles(); len(files) > 0 {
		errs = multierr.Append(errs, &FilesMissingError{files})
	}
	return errs
}

func (b *Builder) addLayers(project *sld.Project, docs []*sldxml.Document) error {
	idx, errs := newStyleIndex(docs, b.opts)
	for _, l := range project.Layers {
		if gj, ok := l.Datasource.(*sld.GeoJson); ok && b.locator != nil {
			l.Datasource = &sld.GeoJson{Id: gj.Id, Filename: b.locator.Data(gj.Filename)}
		}
		styles, err := idx.lookup(l)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("layer %s: %w", l.ID, err))
			continue
		}
		if b.dumpRules != nil {
			for _, s := range styles {
				for _, r := range s.Rules {
					fmt.Fprintln(b.dumpRules, l.ID, r.String())
				}
			}
		}
		if len(styles) > 0 && (l.Active || b.includeInactive) {
			b.log.Debug("Adding layer", zap.String("layer", l.ID), zap.Int("styles", len(styles)))
			b.dstMap.AddLayer(l, styles)
		}
	}

	errs = multierr.Append(errs, setMapOptions(b.dstMap, project.Map))
	return errs
}

func setMapOptions(dst Map, m sld.Map) error {
	if ms, ok := dst.(MapOptionsSetter); ok && m.Background != "" {
		bg, err := color.Parse(m.Background)
		if err != nil {
			return fmt.Errorf("map background: %w", err)
		}
		ms.SetBackgroundColor(bg)
	}
	if ms, ok := dst.(MapExtentSetter); ok && m.BBOX != [4]float64{} {
		ms.SetExtent(m.Bounds())
	}
	return nil
}

// projectFromDocuments returns one layer per named layer of the
// documents. The layers have no datasource.
func projectFromDocuments(docs []*sldxml.Document) *sld.Project {
	p := &sld.Project{}
	for _, d := range docs {
		for _, nl := range d.Layers {
			p.Layers = append(p.Layers, sld.Layer{ID: nl.Name, Active: true, Type: sld.Unknown})
		}
	}
	return p
}

// styleIndex finds the styles of a layer by user style name or, for
// layers without style names, by named layer.
type styleIndex struct {
	byStyle map[string][]*sld.Style
	byLayer map[string][]*sld.Style
}

func newStyleIndex(docs []*sldxml.Document, opts []sld.Option) (*styleIndex, error) {
	idx := &styleIndex{byStyle: map[string][]*sld.Style{}, byLayer: map[string][]*sld.Style{}}
	var errs error
	for _, d := range docs {
		for _, nl := range d.Layers {
			for _, us := range nl.Styles {
				var styles []*sld.Style
				for _, fts := range us.FeatureTypeStyles {
					s, err := sld.NewStyle(fts, opts...)
					if err != nil {
						errs = multierr.Append(errs, fmt.Errorf("style %s: %w", us.Name, err))
						continue
					}
					styles = append(styles, s)
				}
				if us.Name != "" {
					idx.byStyle[us.Name] = append(idx.byStyle[us.Name], styles...)
				}
				if _, ok := idx.byLayer[nl.Name]; !ok || us.IsDefault {
					idx.byLayer[nl.Name] = styles
				}
			}
		}
	}
	return idx, errs
}

func (idx *styleIndex) lookup(l sld.Layer) ([]*sld.Style, error) {
	if len(l.Styles) == 0 {
		return idx.byLayer[l.ID], nil
	}
	var styles []*sld.Style
	for _, name := range l.Styles {
		s, ok := idx.byStyle[name]
		if !ok {
			return nil, fmt.Errorf("unknown style %q", name)
		}
		styles = append(styles, s...)
	}
	return styles, nil
}

type FilesMissingError struct {
	Files []string
}

func (e *FilesMissingError) Error() string {
	return fmt.Sprintf("missing files: %v", e.Files)
}

// OnlyFilesMissing reports whether every error collected in err is a
// FilesMissingError and returns the missing files of all of them.
func OnlyFilesMissing(err error) ([]string, bool) {
	if err == nil {
		return nil, false
	}
	var files []string
	for _, e := range multierr.Errors(err) {
		missing, ok := e.(*FilesMissingError)
		if !ok {
			return nil, false
		}
		files = append(files, missing.Files...)
	}
	return files, true
}

type MapOptionsSetter interface {
	SetBackgroundColor(color.Color)
}

type MapExtentSetter interface {
	SetExtent(sld.Envelope)
}

type Map interface {
	AddLayer(sld.Layer, []*sld.Style)
}

// BuildMapFromString parses the style document from a string and adds
// the layers of project to the map.
func BuildMapFromString(m Map, project *sld.Project, style string, opts ...sld.Option) error {
	doc, err := sldxml.ReadString(style, nil)
	if err != nil {
		return err
	}
	docs := []*sldxml.Document{doc}
	if project == nil {
		project = projectFromDocuments(docs)
	}
	b := &Builder{dstMap: m, includeInactive: true, opts: opts, log: zap.NewNop()}
	return b.addLayers(project, docs)
}

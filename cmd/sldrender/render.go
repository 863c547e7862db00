package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/disintegration/imaging"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	sld "github.com/flywave/go-sld"
	"github.com/flywave/go-sld/builder"
	"github.com/flywave/go-sld/color"
	"github.com/flywave/go-sld/config"
	"github.com/flywave/go-sld/render"
	"github.com/flywave/go-sld/render/canvas"
	"github.com/flywave/go-sld/render/ggcanvas"
)

// buildMap runs the builder for the project and style flags of cmd.
func buildMap(cmd *cli.Command, e *env, m *render.Map, includeInactive bool) error {
	project, slds := cmd.String("project"), cmd.StringSlice("sld")
	if project == "" && len(slds) == 0 {
		return errors.New("nothing to build, specify --project or --sld")
	}

	locator := config.NewLocator()
	for _, dir := range e.cfg.Render.DataDirs {
		locator.AddDir(dir)
	}

	b := builder.New(m)
	b.SetLogger(e.log)
	b.SetLocator(locator)
	b.SetIncludeInactive(includeInactive)
	b.SetSymbolizerOptions(sld.WithLogger(e.log))
	if project != "" {
		b.SetProject(project)
	}
	for _, s := range slds {
		b.AddSLD(s)
	}
	if cmd.Name == "check" {
		b.SetDumpRulesDest(os.Stdout)
	}
	return b.Build()
}

func runRender(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	rc := e.cfg.Render

	dst := cmd.Args().Get(0)
	if dst == "" {
		return errors.New("no destination file specified")
	}
	format, err := imaging.FormatFromFilename(dst)
	if err != nil {
		return fmt.Errorf("destination '%s': %w", dst, err)
	}

	width, height, backend := rc.Width, rc.Height, rc.Backend
	if cmd.IsSet("width") {
		width = cmd.Int("width")
	}
	if cmd.IsSet("height") {
		height = cmd.Int("height")
	}
	if cmd.IsSet("backend") {
		backend = cmd.String("backend")
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", width, height)
	}

	m := render.New(e.log)
	if rc.Background != "" {
		bg, err := color.Parse(rc.Background)
		if err != nil {
			return fmt.Errorf("background: %w", err)
		}
		m.SetBackgroundColor(bg)
	}
	if err := buildMap(cmd, e, m, rc.IncludeInactive || cmd.Bool("include-inactive")); err != nil {
		files, ok := builder.OnlyFilesMissing(err)
		if !ok {
			return err
		}
		e.log.Warn("Some files are missing", zap.Strings("files", files))
	}

	var img image.Image
	switch backend {
	case config.BackendRaster:
		c := canvas.New(width, height)
		err = m.Render(c)
		img = c.Image()
	case config.BackendGG:
		c := ggcanvas.New(width, height)
		err = m.Render(c)
		img = c.Image()
		err = multierr.Append(err, c.Close())
	default:
		return fmt.Errorf("unknown backend %q", backend)
	}
	if err != nil {
		if cmd.Bool("strict") {
			return err
		}
		e.log.Warn("Map rendered with errors", zap.Int("errors", len(multierr.Errors(err))))
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("unable to create destination file '%s': %w", dst, err)
	}
	defer out.Close()
	if err := imaging.Encode(out, img, format, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return fmt.Errorf("unable to write image: %w", err)
	}
	e.log.Info("Map rendered", zap.String("file", dst), zap.Strings("layers", m.Layers()), zap.String("backend", backend))
	return nil
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	m := render.New(e.log)
	err := buildMap(cmd, e, m, true)
	for _, id := range m.Layers() {
		e.log.Info("Layer", zap.String("id", id))
	}
	for _, er := range multierr.Errors(err) {
		e.log.Error("Build problem", zap.Error(er))
	}
	return err
}

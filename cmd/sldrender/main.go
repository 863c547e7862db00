package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/flywave/go-sld/config"
)

const appName = "sldrender"

type env struct {
	cfg   *config.Config
	log   *zap.Logger
	start time.Time
}

type envKey struct{}

func envFromContext(ctx context.Context) *env {
	if e, ok := ctx.Value(envKey{}).(*env); ok {
		return e
	}
	return &env{log: zap.NewNop()}
}

// initializeAppContext prepares configuration and logging after the
// command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	e := envFromContext(ctx)
	e.start = time.Now()

	var err error
	configFile := cmd.String("config")
	if e.cfg, err = config.Load(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		e.cfg.Logging.ConsoleLogger.Level = "debug"
	}
	if e.log, err = e.cfg.Logging.Prepare(appName); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	e.log.Debug("Program started", zap.Strings("args", os.Args), zap.String("runtime", runtime.Version()))
	if len(configFile) == 0 {
		e.log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	e := envFromContext(ctx)
	if e.log != nil {
		e.log.Debug("Program ended", zap.Duration("elapsed", time.Since(e.start)), zap.Strings("parsed args", cmd.Args().Slice()))
		if er := e.log.Sync(); er != nil && !errors.Is(er, syscall.EINVAL) && !errors.Is(er, syscall.ENOTTY) {
			err = multierr.Append(err, fmt.Errorf("unable to sync log: %w", er))
		}
	}
	return
}

var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	e := envFromContext(ctx)
	if e.log != nil {
		e.log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.WithValue(context.Background(), envKey{}, &env{log: zap.NewNop()}), os.Interrupt, syscall.SIGTERM)

	sourceFlags := []cli.Flag{
		&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "read layers from project `FILE` (YAML)"},
		&cli.StringSliceFlag{Name: "sld", Aliases: []string{"s"}, Usage: "style document `FILE`, may be repeated; overrides the project stylesheets"},
		&cli.BoolFlag{Name: "include-inactive", Usage: "also draw layers with status off"},
	}

	app := &cli.Command{
		Name:            appName,
		Usage:           "renders map layers styled with SLD / Symbology Encoding documents",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (TOML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log debug messages to the console"},
		},
		Commands: []*cli.Command{
			{
				Name:         "render",
				Usage:        "Renders the project to an image",
				OnUsageError: usageErrorHandler,
				Action:       runRender,
				ArgsUsage:    "DESTINATION",
				Flags: append([]cli.Flag{
					&cli.IntFlag{Name: "width", Usage: "image width in pixels (default from configuration)"},
					&cli.IntFlag{Name: "height", Usage: "image height in pixels (default from configuration)"},
					&cli.StringFlag{Name: "backend", Usage: "drawing `BACKEND` (raster or gg)"},
					&cli.BoolFlag{Name: "strict", Usage: "fail when a feature can not be drawn"},
				}, sourceFlags...),
			},
			{
				Name:         "check",
				Usage:        "Builds all styles and lists the rules of every layer",
				OnUsageError: usageErrorHandler,
				Action:       runCheck,
				Flags:        sourceFlags,
			},
			{
				Name:         "dumpconfig",
				Usage:        "Outputs the actual configuration (TOML)",
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
			},
		},
	}

	var err error
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	fname := cmd.Args().Get(0)

	out := os.Stdout
	if len(fname) > 0 {
		f, err := os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer f.Close()
		out = f
	} else {
		fname = "STDOUT"
	}
	e.log.Debug("Outputing configuration", zap.String("file", fname))
	if err := toml.NewEncoder(out).Encode(e.cfg); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}

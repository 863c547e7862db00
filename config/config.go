// Package config loads the TOML configuration of the renderer and
// locates the files a project refers to.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	BackendRaster = "raster"
	BackendGG     = "gg"
)

type RenderConfig struct {
	Width           int    `toml:"width"`
	Height          int    `toml:"height"`
	Background      string `toml:"background"`
	Backend         string `toml:"backend"`
	IncludeInactive bool   `toml:"include_inactive"`
	// DataDirs are searched for datasource files not found next to the
	// project file.
	DataDirs []string `toml:"data_dirs"`
}

type Config struct {
	Render  RenderConfig  `toml:"render"`
	Logging LoggingConfig `toml:"logging"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:      800,
			Height:     600,
			Background: "#ffffff",
			Backend:    BackendRaster,
		},
		Logging: LoggingConfig{
			ConsoleLogger: LoggerConfig{Level: "normal"},
			FileLogger:    LoggerConfig{Level: "none"},
		},
	}
}

// Load reads the configuration file at path on top of the defaults. An
// empty path returns the defaults.
func Load(path string) (*Config, error) {
	conf := Default()
	if path == "" {
		return conf, nil
	}
	md, err := toml.DecodeFile(path, conf)
	if err != nil {
		return nil, fmt.Errorf("unable to read configuration %s: %w", path, err)
	}
	if err := undecoded(md); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return conf, conf.Validate()
}

// Parse reads a configuration from a string on top of the defaults.
func Parse(data string) (*Config, error) {
	conf := Default()
	md, err := toml.Decode(data, conf)
	if err != nil {
		return nil, err
	}
	if err := undecoded(md); err != nil {
		return nil, err
	}
	return conf, conf.Validate()
}

func undecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return fmt.Errorf("unknown configuration keys: %s", strings.Join(names, ", "))
}

func (c *Config) Validate() error {
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", c.Render.Width, c.Render.Height)
	}
	switch c.Render.Backend {
	case BackendRaster, BackendGG:
	default:
		return fmt.Errorf("unknown backend %q", c.Render.Backend)
	}
	for _, l := range []LoggerConfig{c.Logging.ConsoleLogger, c.Logging.FileLogger} {
		switch l.Level {
		case "", "none", "normal", "debug":
		default:
			return fmt.Errorf("unknown log level %q", l.Level)
		}
	}
	if m := c.Logging.FileLogger.Mode; m != "" && m != "append" && m != "overwrite" {
		return fmt.Errorf("unknown log mode %q", m)
	}
	return nil
}

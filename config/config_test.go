package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.NoError(t, c.Validate())
	assert.Equal(t, BackendRaster, c.Render.Backend)
}

func TestParse(t *testing.T) {
	c, err := Parse(`
[render]
width = 256
backend = "gg"
data_dirs = ["/srv/data"]

[logging.console]
level = "debug"
`)
	require.NoError(t, err)
	assert.Equal(t, 256, c.Render.Width)
	assert.Equal(t, 600, c.Render.Height)
	assert.Equal(t, BackendGG, c.Render.Backend)
	assert.Equal(t, []string{"/srv/data"}, c.Render.DataDirs)
	assert.Equal(t, "debug", c.Logging.ConsoleLogger.Level)
	assert.Equal(t, "none", c.Logging.FileLogger.Level)
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{
		"[render]\nwidht = 10\n",
		"[render]\nwidth = -1\n",
		"[render]\nbackend = \"cairo\"\n",
		"[logging.file]\nlevel = \"verbose\"\n",
		"[logging.file]\nmode = \"rotate\"\n",
		"[render\n",
	} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sld.toml")
	require.NoError(t, os.WriteFile(path, []byte("[render]\nbackground = \"#000000\"\n"), 0644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "#000000", c.Render.Background)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestPrepareLogger(t *testing.T) {
	conf := Default().Logging
	log, err := conf.Prepare("test")
	require.NoError(t, err)
	log.Debug("not shown")

	dest := filepath.Join(t.TempDir(), "run.log")
	conf.ConsoleLogger.Level = "none"
	conf.FileLogger = LoggerConfig{Level: "debug", Destination: dest}
	log, err = conf.Prepare("test")
	require.NoError(t, err)
	log.Debug("to file")
	require.NoError(t, log.Sync())
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")

	conf.FileLogger.Destination = filepath.Join(t.TempDir(), "no", "such", "dir", "run.log")
	_, err = conf.Prepare("test")
	assert.Error(t, err)
}

func TestLocator(t *testing.T) {
	base, extra := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "a.geojson"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(extra, "b.geojson"), []byte("{}"), 0644))

	var l Locator = NewLocator()
	l.SetBaseDir(base)
	l.AddDir(extra)

	assert.Equal(t, filepath.Join(base, "a.geojson"), l.Data("a.geojson"))
	assert.Equal(t, filepath.Join(extra, "b.geojson"), l.Style("b.geojson"))
	abs := filepath.Join(extra, "b.geojson")
	assert.Equal(t, abs, l.Data(abs))
	assert.Nil(t, l.MissingFiles())

	assert.Equal(t, "c.sld", l.Style("c.sld"))
	assert.Equal(t, "/nowhere/d.geojson", l.Data("/nowhere/d.geojson"))
	assert.Equal(t, []string{"/nowhere/d.geojson", "c.sld"}, l.MissingFiles())
}

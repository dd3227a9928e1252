package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
}

func TestDefaultsMatchDefault(t *testing.T) {
	d := Defaults()
	cfg := Default()

	assert.Equal(t, cfg.SiteTitle, d["siteTitle"])
	assert.Equal(t, cfg.ListFile, d["listFile"])
	assert.Equal(t, cfg.Output, d["output"])
	assert.Equal(t, cfg.IconSize, d["iconSize"])
	assert.Equal(t, cfg.SpriteColumns, d["spriteColumns"])
	assert.Equal(t, cfg.MaxTags, d["maxTags"])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing list", func(c *Config) { c.ListFile = " " }, "listFile is required"},
		{"missing output", func(c *Config) { c.Output = "" }, "output is required"},
		{"missing language", func(c *Config) { c.Language = "" }, "language is required"},
		{"zero icon size", func(c *Config) { c.IconSize = 0 }, "iconSize must be positive"},
		{"zero columns", func(c *Config) { c.SpriteColumns = 0 }, "spriteColumns must be positive"},
		{"webp", func(c *Config) { c.SpriteFormat = "webp" }, "spriteFormat must be jpeg or png"},
		{"quality", func(c *Config) { c.SpriteQuality = 101 }, "spriteQuality must be within"},
		{"negative tags", func(c *Config) { c.MaxTags = -1 }, "maxTags must be at least 1"},
		{"zero tags", func(c *Config) { c.MaxTags = 0 }, "maxTags must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(base, "elsewhere", "out.html")

	cfg := Default()
	cfg.BaseDir = base
	cfg.Output = abs
	cfg.ResolvePaths()

	assert.Equal(t, filepath.Join(base, "src", "list.json"), cfg.ListFile)
	assert.Equal(t, filepath.Join(base, "src", "icons"), cfg.IconsDir)
	assert.Equal(t, abs, cfg.Output)
	assert.Empty(t, cfg.Template)
}

func TestWatchPathsSkipsEmpty(t *testing.T) {
	cfg := Default()
	cfg.IntroFile = ""

	assert.Equal(t, []string{"src/list.json", "src/icons"}, cfg.WatchPaths())
}

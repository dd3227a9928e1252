package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Config holds everything a build needs. Values arrive through viper, so the
// mapstructure tags double as config file keys and LNB_* environment names.
type Config struct {
	SiteTitle   string `mapstructure:"siteTitle"`
	Description string `mapstructure:"description"`
	Language    string `mapstructure:"language"`

	ListFile  string `mapstructure:"listFile"`
	IconsDir  string `mapstructure:"iconsDir"`
	IntroFile string `mapstructure:"introFile"`
	Template  string `mapstructure:"template"`
	Output    string `mapstructure:"output"`

	IconSize      int    `mapstructure:"iconSize"`
	SpriteColumns int    `mapstructure:"spriteColumns"`
	SpriteFormat  string `mapstructure:"spriteFormat"`
	SpriteQuality int    `mapstructure:"spriteQuality"`
	MaxTags       int    `mapstructure:"maxTags"`

	TitleCaseCategories bool `mapstructure:"titleCaseCategories"`
	Quiet               bool `mapstructure:"quiet"`

	// BaseDir is the directory relative paths are resolved against.
	BaseDir string `mapstructure:"-"`
}

// Defaults returns the values used when neither a config file, the
// environment nor a flag sets a key.
func Defaults() map[string]any {
	return map[string]any{
		"siteTitle":           "Local Bookmarks",
		"description":         "",
		"language":            "en",
		"listFile":            "src/list.json",
		"iconsDir":            "src/icons",
		"introFile":           "src/intro.md",
		"template":            "",
		"output":              "dist/index.html",
		"iconSize":            24,
		"spriteColumns":       12,
		"spriteFormat":        "jpeg",
		"spriteQuality":       85,
		"maxTags":             5,
		"titleCaseCategories": false,
		"quiet":               false,
	}
}

// Default returns a Config populated from Defaults. Tests and callers that do
// not go through viper start from here.
func Default() Config {
	return Config{
		SiteTitle:     "Local Bookmarks",
		Language:      "en",
		ListFile:      "src/list.json",
		IconsDir:      "src/icons",
		IntroFile:     "src/intro.md",
		Output:        "dist/index.html",
		IconSize:      24,
		SpriteColumns: 12,
		SpriteFormat:  "jpeg",
		SpriteQuality: 85,
		MaxTags:       5,
	}
}

// Validate reports the first setting that would make a build meaningless.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ListFile) == "" {
		return fmt.Errorf("listFile is required")
	}
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("output is required")
	}
	if strings.TrimSpace(c.Language) == "" {
		return fmt.Errorf("language is required")
	}
	if c.IconSize <= 0 {
		return fmt.Errorf("iconSize must be positive, got %d", c.IconSize)
	}
	if c.SpriteColumns <= 0 {
		return fmt.Errorf("spriteColumns must be positive, got %d", c.SpriteColumns)
	}
	switch strings.ToLower(c.SpriteFormat) {
	case "jpeg", "jpg", "png":
	default:
		return fmt.Errorf("spriteFormat must be jpeg or png, got %q", c.SpriteFormat)
	}
	if c.SpriteQuality < 1 || c.SpriteQuality > 100 {
		return fmt.Errorf("spriteQuality must be within 1..100, got %d", c.SpriteQuality)
	}
	if c.MaxTags < 1 {
		return fmt.Errorf("maxTags must be at least 1, got %d", c.MaxTags)
	}
	return nil
}

// ResolvePaths makes every relative path absolute against BaseDir.
func (c *Config) ResolvePaths() {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
			return p
		}
		return filepath.Join(c.BaseDir, p)
	}

	c.ListFile = resolve(c.ListFile)
	c.IconsDir = resolve(c.IconsDir)
	c.IntroFile = resolve(c.IntroFile)
	c.Template = resolve(c.Template)
	c.Output = resolve(c.Output)
}

// WatchPaths lists the inputs whose change should trigger a rebuild.
func (c *Config) WatchPaths() []string {
	var paths []string
	for _, p := range []string{c.ListFile, c.IconsDir, c.IntroFile, c.Template} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

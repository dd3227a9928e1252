// Package intro renders the optional Markdown blurb shown above the site
// list.
package intro

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Intro is the parsed intro file.
type Intro struct {
	Title       string
	Description string
	Body        template.HTML
}

type matter struct {
	Title       string `yaml:"title" toml:"title" json:"title"`
	Description string `yaml:"description" toml:"description" json:"description"`
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		gmhtml.WithHardWraps(),
	),
)

// Load reads path. A missing file yields (nil, nil) since the intro is
// optional; any other failure is returned.
func Load(path string) (*Intro, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading intro %s: %w", path, err)
	}

	in, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rendering intro %s: %w", path, err)
	}
	return in, nil
}

// Parse splits optional frontmatter from the Markdown body and renders the
// body to HTML. Raw HTML in the body is omitted from the output.
func Parse(data []byte) (*Intro, error) {
	var fm matter
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return nil, fmt.Errorf("parsing frontmatter: %w", err)
	}

	var buf bytes.Buffer
	if err := markdown.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}

	return &Intro{
		Title:       strings.TrimSpace(fm.Title),
		Description: strings.TrimSpace(fm.Description),
		Body:        template.HTML(buf.String()),
	}, nil
}

// Package build runs the whole pipeline: load the list, pack icons, render
// the page and write it out.
package build

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/behnamazizi/localnet-bookmarks/internal/config"
	"github.com/behnamazizi/localnet-bookmarks/internal/intro"
	"github.com/behnamazizi/localnet-bookmarks/internal/model"
	"github.com/behnamazizi/localnet-bookmarks/internal/order"
	"github.com/behnamazizi/localnet-bookmarks/internal/render"
	"github.com/behnamazizi/localnet-bookmarks/internal/sitelist"
	"github.com/behnamazizi/localnet-bookmarks/internal/sprite"
)

// Result summarizes one build.
type Result struct {
	Output     string
	Version    string
	Sites      int
	Categories int
	Icons      int
	Bytes      int
}

// Report is what Check finds without writing anything.
type Report struct {
	Sites        int
	Categories   int
	Icons        int
	MissingIcons []string
}

// Builder runs builds for one configuration.
type Builder struct {
	cfg    config.Config
	getenv func(string) string
}

// NewBuilder creates a builder. cfg is expected to be validated and to have
// its paths resolved.
func NewBuilder(cfg config.Config) *Builder {
	return &Builder{cfg: cfg, getenv: os.Getenv}
}

func (b *Builder) logf(format string, args ...any) {
	if b.cfg.Quiet {
		return
	}
	log.Printf(format, args...)
}

type loaded struct {
	sorter *order.Sorter
	sites  []model.Site
	hosts  []string
	sheet  *sprite.Sheet
}

func (b *Builder) load() (*loaded, error) {
	sorter, err := order.New(b.cfg.Language, order.WithTitleCase(b.cfg.TitleCaseCategories))
	if err != nil {
		return nil, err
	}

	b.logf("Loading sites from %s", b.cfg.ListFile)
	sites, err := sitelist.Load(b.cfg.ListFile, sitelist.Options{
		MaxTags:  b.cfg.MaxTags,
		Language: sorter.Tag(),
	})
	if err != nil {
		return nil, err
	}
	sorter.Sort(sites)
	b.logf("Loaded %d sites", len(sites))

	hosts := sitelist.Hosts(sites)
	icons, err := sprite.Load(b.cfg.IconsDir, hosts, b.cfg.IconSize)
	if err != nil {
		return nil, err
	}
	for _, ic := range icons {
		b.logf("Icon for %s: %s", ic.Host, ic.Path)
	}
	sheet := sprite.Pack(icons, b.cfg.SpriteColumns, b.cfg.IconSize)
	b.logf("Packed %d icons for %d hosts", sheet.Len(), len(hosts))

	return &loaded{sorter: sorter, sites: sites, hosts: hosts, sheet: sheet}, nil
}

// Check loads and validates the inputs and reports hosts without an icon.
func (b *Builder) Check() (*Report, error) {
	l, err := b.load()
	if err != nil {
		return nil, err
	}
	return &Report{
		Sites:        len(l.sites),
		Categories:   len(l.sorter.Group(l.sites)),
		Icons:        l.sheet.Len(),
		MissingIcons: l.sheet.Missing(l.hosts),
	}, nil
}

// Render produces the page without writing it.
func (b *Builder) Render() ([]byte, *Result, error) {
	l, err := b.load()
	if err != nil {
		return nil, nil, err
	}
	l.sheet.Attach(l.sites)

	uri, err := sprite.Encode(l.sheet.Image, b.cfg.SpriteFormat, b.cfg.SpriteQuality)
	if err != nil {
		return nil, nil, err
	}

	in, err := intro.Load(b.cfg.IntroFile)
	if err != nil {
		return nil, nil, err
	}

	payload, err := render.Payload(l.sites)
	if err != nil {
		return nil, nil, err
	}

	engine, err := render.NewEngine(b.cfg.Template)
	if err != nil {
		return nil, nil, err
	}
	b.logf("Rendering with template %s", engine.Name())

	page := model.PageData{
		SiteTitle:    b.cfg.SiteTitle,
		Description:  b.cfg.Description,
		Language:     l.sorter.Tag().String(),
		Categories:   l.sorter.Group(l.sites),
		SiteCount:    len(l.sites),
		SpriteURI:    template.URL(uri),
		SpriteImage:  render.SpriteImage(uri),
		SpriteBgSize: template.CSS(l.sheet.BgSize),
		Payload:      payload,
	}
	if in != nil {
		if in.Title != "" {
			page.SiteTitle = in.Title
		}
		if in.Description != "" {
			page.Description = in.Description
		}
		page.Intro = in.Body
	}

	version, out, err := b.stamp(engine, page)
	if err != nil {
		return nil, nil, err
	}

	return out, &Result{
		Output:     b.cfg.Output,
		Version:    version,
		Sites:      len(l.sites),
		Categories: len(page.Categories),
		Icons:      l.sheet.Len(),
		Bytes:      len(out),
	}, nil
}

// stamp renders page with its build version. SOURCE_DATE_EPOCH wins when it
// is a plain number; otherwise the version is a digest of the page rendered
// without a version, so identical inputs always produce identical bytes.
func (b *Builder) stamp(engine *render.Engine, page model.PageData) (string, []byte, error) {
	version := b.getenv("SOURCE_DATE_EPOCH")
	if !isDigits(version) {
		unversioned, err := engine.Render(page)
		if err != nil {
			return "", nil, err
		}
		sum := sha256.Sum256(unversioned)
		version = hex.EncodeToString(sum[:])[:12]
	}

	page.Version = version
	out, err := engine.Render(page)
	if err != nil {
		return "", nil, err
	}
	return version, out, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Build renders the page and writes it to the configured output path.
func (b *Builder) Build() (*Result, error) {
	start := time.Now()
	b.logf("Building %s", b.cfg.Output)

	out, res, err := b.Render()
	if err != nil {
		return nil, err
	}
	if err := writeFile(b.cfg.Output, out); err != nil {
		return nil, err
	}

	b.logf("Wrote %d bytes (%d sites, %d categories) in %s", res.Bytes, res.Sites, res.Categories, time.Since(start).Round(time.Millisecond))
	return res, nil
}

// writeFile replaces path atomically so a server reading it never sees a
// partial page.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".build-*.html")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

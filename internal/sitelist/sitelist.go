// Package sitelist reads the bookmark list and turns it into validated,
// normalized sites.
package sitelist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"

	"github.com/behnamazizi/localnet-bookmarks/internal/model"
)

// DefaultMaxTags is how many tags a site keeps when Options leaves it unset.
const DefaultMaxTags = 5

// Entry is one site as written in the list file.
type Entry struct {
	Name     string   `json:"name" yaml:"name"`
	URL      string   `json:"url" yaml:"url"`
	Category string   `json:"category" yaml:"category"`
	Tags     []string `json:"tags" yaml:"tags"`
}

type document struct {
	Sites []Entry `json:"sites" yaml:"sites"`
}

// Options tunes normalization.
type Options struct {
	// MaxTags of zero means DefaultMaxTags. Configured builds always pass a
	// validated positive value.
	MaxTags  int
	Language language.Tag
}

// EntryError describes one invalid field of one entry.
type EntryError struct {
	Index  int
	Name   string
	Field  string
	Reason string
}

func (e *EntryError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("site #%d (%q): %s: %s", e.Index, e.Name, e.Field, e.Reason)
	}
	return fmt.Sprintf("site #%d: %s: %s", e.Index, e.Field, e.Reason)
}

// ErrEmpty is returned when the list holds no sites at all.
var ErrEmpty = errors.New("site list is empty")

// Load reads path and returns its sites in file order. The decoder is chosen
// by extension: .yaml and .yml are YAML, anything else is JSON.
func Load(path string, opts Options) ([]model.Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading site list %s: %w", path, err)
	}

	entries, err := Decode(data, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("parsing site list %s: %w", path, err)
	}

	sites, err := Normalize(entries, opts)
	if err != nil {
		return nil, fmt.Errorf("validating site list %s: %w", path, err)
	}
	return sites, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// Decode parses raw list data. Both {"sites": [...]} and a bare array are
// accepted.
func Decode(data []byte, format string) ([]Entry, error) {
	switch format {
	case "yaml":
		return decodeYAML(data)
	case "json":
		return decodeJSON(data)
	default:
		return nil, fmt.Errorf("unknown list format %q", format)
	}
}

func decodeJSON(data []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmpty
	}

	if trimmed[0] == '[' {
		var entries []Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return doc.Sites, nil
}

func decodeYAML(data []byte) ([]Entry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmpty
	}

	var doc document
	docErr := yaml.Unmarshal(data, &doc)
	if docErr == nil {
		return doc.Sites, nil
	}

	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, docErr
	}
	return entries, nil
}

// Normalize validates every entry and converts the valid ones. All problems
// are reported together; the returned error unwraps to *EntryError values.
func Normalize(entries []Entry, opts Options) ([]model.Site, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	if opts.MaxTags <= 0 {
		opts.MaxTags = DefaultMaxTags
	}
	upper := cases.Upper(opts.Language)

	var errs []error
	seen := make(map[string]int, len(entries))
	sites := make([]model.Site, 0, len(entries))

	for i, e := range entries {
		site, entryErrs := normalizeEntry(i, e, opts.MaxTags, upper)
		if len(entryErrs) > 0 {
			errs = append(errs, entryErrs...)
			continue
		}

		key := site.Name + "\x00" + site.URL
		if first, dup := seen[key]; dup {
			errs = append(errs, &EntryError{
				Index:  i,
				Name:   site.Name,
				Field:  "url",
				Reason: fmt.Sprintf("duplicate of site #%d", first),
			})
			continue
		}
		seen[key] = i
		sites = append(sites, site)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return sites, nil
}

func normalizeEntry(i int, e Entry, maxTags int, upper cases.Caser) (model.Site, []error) {
	name := strings.TrimSpace(e.Name)
	rawURL := strings.TrimSpace(e.URL)
	category := strings.TrimSpace(e.Category)

	var errs []error
	fail := func(field, reason string) {
		errs = append(errs, &EntryError{Index: i, Name: name, Field: field, Reason: reason})
	}

	if name == "" {
		fail("name", "required")
	}
	if category == "" {
		fail("category", "required")
	}

	var host string
	if rawURL == "" {
		fail("url", "required")
	} else {
		h, err := hostOf(rawURL)
		if err != nil {
			fail("url", err.Error())
		}
		host = h
	}

	if len(errs) > 0 {
		return model.Site{}, errs
	}

	return model.Site{
		Name:     name,
		URL:      rawURL,
		Category: category,
		Tags:     cleanTags(e.Tags, maxTags),
		Host:     host,
		Letter:   letterOf(name, upper),
	}, nil
}

func hostOf(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("URL %q must use http or https", raw)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", fmt.Errorf("URL %q has no host", raw)
	}
	return host, nil
}

func cleanTags(tags []string, limit int) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}

// letterOf picks the first letter or digit of name, upper-cased and cut to
// one rune. Names made only of symbols fall back to their first rune.
func letterOf(name string, upper cases.Caser) string {
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			u, _ := utf8.DecodeRuneInString(upper.String(string(r)))
			return string(u)
		}
	}
	if r, _ := utf8.DecodeRuneInString(name); r != utf8.RuneError {
		return string(r)
	}
	return "?"
}

// StripWWW removes a leading "www." from host.
func StripWWW(host string) string {
	return strings.TrimPrefix(host, "www.")
}

// Hosts returns the distinct hostnames of sites in first-seen order.
func Hosts(sites []model.Site) []string {
	seen := make(map[string]bool, len(sites))
	var hosts []string
	for _, s := range sites {
		if s.Host == "" || seen[s.Host] {
			continue
		}
		seen[s.Host] = true
		hosts = append(hosts, s.Host)
	}
	return hosts
}

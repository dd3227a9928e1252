// Package order sorts sites by the collation rules of a locale and groups
// them into categories.
package order

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/behnamazizi/localnet-bookmarks/internal/model"
)

// Sorter orders sites for one locale. It is not safe for concurrent use.
type Sorter struct {
	tag       language.Tag
	collator  *collate.Collator
	titleCase bool
}

// Option configures a Sorter.
type Option func(*Sorter)

// WithTitleCase title-cases category headings using the locale's rules.
func WithTitleCase(on bool) Option {
	return func(s *Sorter) { s.titleCase = on }
}

// New builds a Sorter for a BCP 47 language tag such as "en", "de" or "sv-SE".
func New(lang string, opts ...Option) (*Sorter, error) {
	tag, err := ParseLanguage(lang)
	if err != nil {
		return nil, err
	}
	s := &Sorter{
		tag:      tag,
		collator: collate.New(tag, collate.IgnoreCase),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ParseLanguage validates a BCP 47 tag.
func ParseLanguage(lang string) (language.Tag, error) {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return language.Und, fmt.Errorf("invalid language %q: %w", lang, err)
	}
	return tag, nil
}

// Tag returns the locale the Sorter collates for.
func (s *Sorter) Tag() language.Tag {
	return s.tag
}

// Compare orders two strings by collation, falling back to byte order so that
// strings the collator treats as equal still have a fixed order.
func (s *Sorter) Compare(a, b string) int {
	if c := s.collator.CompareString(a, b); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// Sort orders sites in place by category, then name, then URL.
func (s *Sorter) Sort(sites []model.Site) {
	sort.SliceStable(sites, func(i, j int) bool {
		a, b := &sites[i], &sites[j]
		if c := s.Compare(a.Category, b.Category); c != 0 {
			return c < 0
		}
		if c := s.Compare(a.Name, b.Name); c != 0 {
			return c < 0
		}
		return s.Compare(a.URL, b.URL) < 0
	})
}

// Group splits sorted sites into categories, one per distinct category value,
// in the order the categories first appear. The returned categories point
// into sites, so sites must not be resized afterwards.
func (s *Sorter) Group(sites []model.Site) []model.Category {
	var cats []model.Category
	index := make(map[string]int)
	slugs := make(map[string]int)

	for i := range sites {
		site := &sites[i]
		pos, ok := index[site.Category]
		if !ok {
			pos = len(cats)
			index[site.Category] = pos
			cats = append(cats, model.Category{
				Name:    site.Category,
				Heading: s.heading(site.Category),
				Slug:    uniqueSlug(ToSlug(site.Category), slugs),
			})
		}
		cats[pos].Sites = append(cats[pos].Sites, site)
	}
	return cats
}

func (s *Sorter) heading(name string) string {
	if !s.titleCase {
		return name
	}
	return cases.Title(s.tag).String(name)
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// ToSlug converts a category name to an anchor id: lowercase, runs of
// anything but letters and digits become one hyphen, no leading or trailing
// hyphens.
func ToSlug(name string) string {
	s := strings.ToLower(name)
	s = nonWord.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "category"
	}
	return s
}

func uniqueSlug(slug string, used map[string]int) string {
	used[slug]++
	n := used[slug]
	if n == 1 {
		return slug
	}
	candidate := slug + "-" + strconv.Itoa(n)
	for used[candidate] > 0 {
		n++
		candidate = slug + "-" + strconv.Itoa(n)
	}
	used[candidate] = 1
	return candidate
}

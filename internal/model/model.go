package model

// Site is one bookmark after validation and normalization.
type Site struct {
	Name     string
	URL      string
	Category string
	Tags     []string

	// Host is the lowercased hostname of URL, used to find the icon.
	Host string
	// Letter is the glyph shown when no icon was packed.
	Letter string
	// Icon is nil when the site has no icon in the sprite.
	Icon *Icon
}

// Icon locates a site's image inside the sprite sheet.
type Icon struct {
	X     int
	Y     int
	Color string
}

// Category is one rendered section.
type Category struct {
	Name    string
	Heading string
	Slug    string
	Sites   []*Site
}

package model

import "html/template"

// PageData is the template context for the generated page.
type PageData struct {
	SiteTitle   string
	Description string
	Language    string
	Intro       template.HTML
	Version     string

	Categories []Category
	SiteCount  int

	// SpriteURI is the data URI of the packed icons. SpriteImage wraps it as
	// a CSS url() value and SpriteBgSize is its CSS background-size.
	SpriteURI    template.URL
	SpriteImage  template.CSS
	SpriteBgSize template.CSS

	// Payload is the JSON array of sites, in row order. The client-side filter
	// searches it and tints rows with their icon colour.
	Payload template.JS
}

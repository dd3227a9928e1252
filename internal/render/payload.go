package render

import (
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/behnamazizi/localnet-bookmarks/internal/model"
)

// payloadSite is the client-side view of a site. Icon fields are null when
// the site has no icon.
type payloadSite struct {
	Name      string   `json:"name"`
	URL       string   `json:"url"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	IconX     *int     `json:"icon_x"`
	IconY     *int     `json:"icon_y"`
	IconColor *string  `json:"icon_color"`
}

// Payload encodes sites as the JSON array embedded in the page. The encoder
// escapes <, > and & so the result is safe inside a script element.
func Payload(sites []model.Site) (template.JS, error) {
	out := make([]payloadSite, len(sites))
	for i, s := range sites {
		tags := s.Tags
		if tags == nil {
			tags = []string{}
		}
		p := payloadSite{Name: s.Name, URL: s.URL, Category: s.Category, Tags: tags}
		if s.Icon != nil {
			x, y, c := s.Icon.X, s.Icon.Y, s.Icon.Color
			p.IconX, p.IconY, p.IconColor = &x, &y, &c
		}
		out[i] = p
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encoding site payload: %w", err)
	}
	return template.JS(data), nil
}

// SpriteImage wraps a data URI as a CSS url() value.
func SpriteImage(uri string) template.CSS {
	return template.CSS(`url("` + uri + `")`)
}

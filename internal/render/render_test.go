package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/behnamazizi/localnet-bookmarks/internal/model"
)

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findAll(n *html.Node, tag, class string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag && hasClass(n, class) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func samplePage(t *testing.T) model.PageData {
	t.Helper()
	sites := []model.Site{
		{Name: "Grafana", URL: "https://grafana.lan", Category: "Monitoring", Tags: []string{"metrics", "dash"}, Letter: "G",
			Icon: &model.Icon{X: 24, Y: 0, Color: "#aabbcc"}},
		{Name: "Prometheus", URL: "https://prom.lan", Category: "Monitoring", Letter: "P"},
		{Name: "Router <admin>", URL: "http://192.168.1.1", Category: "Network & Wi-Fi", Tags: []string{}, Letter: "R"},
	}
	payload, err := Payload(sites)
	require.NoError(t, err)

	return model.PageData{
		SiteTitle:   "Home",
		Description: "LAN links",
		Language:    "en",
		Intro:       "<p>hello</p>",
		Version:     "1700000000",
		Categories: []model.Category{
			{Name: "Monitoring", Heading: "Monitoring", Slug: "monitoring", Sites: []*model.Site{&sites[0], &sites[1]}},
			{Name: "Network & Wi-Fi", Heading: "Network & Wi-Fi", Slug: "network-wi-fi", Sites: []*model.Site{&sites[2]}},
		},
		SiteCount:    3,
		SpriteURI:    "data:image/png;base64,AAAA",
		SpriteImage:  SpriteImage("data:image/png;base64,AAAA"),
		SpriteBgSize: "288px 24px",
		Payload:      payload,
	}
}

func TestRenderDefaultTemplate(t *testing.T) {
	engine, err := NewEngine("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplate, engine.Name())

	out, err := engine.Render(samplePage(t))
	require.NoError(t, err)

	doc, err := html.Parse(bytes.NewReader(out))
	require.NoError(t, err)

	sections := findAll(doc, "section", "category")
	require.Len(t, sections, 2)
	assert.Equal(t, "monitoring", attr(sections[0], "id"))
	assert.Equal(t, "Network & Wi-Fi", attr(sections[1], "data-category"))

	rows := findAll(doc, "li", "site")
	require.Len(t, rows, 3)
	assert.Len(t, findAll(sections[0], "li", "site"), 2)

	icons := findAll(rows[0], "span", "icon")
	require.Len(t, icons, 1)
	assert.Equal(t, "background-position:-24px 0px;background-color:#aabbcc", attr(icons[0], "style"))
	assert.Empty(t, findAll(rows[0], "span", "glyph"))
	assert.Equal(t, "metrics dash", attr(rows[0], "data-tags"))
	assert.Len(t, findAll(rows[0], "span", "tag"), 2)

	glyphs := findAll(rows[1], "span", "glyph")
	require.Len(t, glyphs, 1)
	assert.Equal(t, "P", text(glyphs[0]))
	assert.Empty(t, findAll(rows[1], "span", "icon"))
	assert.NotContains(t, renderNode(t, rows[1]), "background")

	assert.Equal(t, "Router <admin>", text(findAll(rows[2], "span", "name")[0]))
	assert.Contains(t, string(out), "Router &lt;admin&gt;")
	assert.Contains(t, string(out), `background-image: url("data:image/png;base64,AAAA")`)
	assert.Contains(t, string(out), "background-size: 288px 24px")
	assert.Contains(t, string(out), `<div class="intro"><p>hello</p></div>`)
	assert.Contains(t, string(out), `<html lang="en">`)
}

func renderNode(t *testing.T, n *html.Node) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, html.Render(&buf, n))
	return buf.String()
}

func TestRenderEmbedsPayload(t *testing.T) {
	engine, err := NewEngine("")
	require.NoError(t, err)

	out, err := engine.Render(samplePage(t))
	require.NoError(t, err)

	doc, err := html.Parse(bytes.NewReader(out))
	require.NoError(t, err)

	var script *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" && attr(n, "id") == "sites-data" {
			script = n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	require.NotNil(t, script)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(script)), &got))
	require.Len(t, got, 3)
	assert.Equal(t, float64(24), got[0]["icon_x"])
	assert.Equal(t, "#aabbcc", got[0]["icon_color"])
	assert.Nil(t, got[1]["icon_x"])
	assert.Equal(t, []any{}, got[1]["tags"])
	assert.Equal(t, "Router <admin>", got[2]["name"])
	assert.NotContains(t, text(script), "<admin>")
}

func TestRenderCustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.html")
	require.NoError(t, os.WriteFile(path, []byte(
		`<ul>{{range .Categories}}{{range .Sites}}<li>{{upper .Name}}</li>{{end}}{{end}}</ul>{{count .Categories}}`,
	), 0644))

	engine, err := NewEngine(path)
	require.NoError(t, err)
	assert.Equal(t, "custom.html", engine.Name())

	out, err := engine.Render(samplePage(t))
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>GRAFANA</li><li>PROMETHEUS</li><li>ROUTER &lt;ADMIN&gt;</li></ul>3", string(out))
}

func TestNewEngineErrors(t *testing.T) {
	_, err := NewEngine(filepath.Join(t.TempDir(), "missing.html"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading template")

	path := filepath.Join(t.TempDir(), "bad.html")
	require.NoError(t, os.WriteFile(path, []byte(`{{range}}`), 0644))
	_, err = NewEngine(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing template")
}

func TestRenderExecutionError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.html")
	require.NoError(t, os.WriteFile(path, []byte(`{{.Missing}}`), 0644))

	engine, err := NewEngine(path)
	require.NoError(t, err)

	_, err = engine.Render(samplePage(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `executing template "bad.html"`)
}

func TestIconStyleNil(t *testing.T) {
	assert.Empty(t, string(iconStyle(nil)))
}

func TestFilterScriptReadsPayload(t *testing.T) {
	engine, err := NewEngine("")
	require.NoError(t, err)

	out, err := engine.Render(samplePage(t))
	require.NoError(t, err)

	doc, err := html.Parse(bytes.NewReader(out))
	require.NoError(t, err)

	var payload, filter string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			if attr(n, "id") == "sites-data" {
				payload = text(n)
			} else {
				filter = text(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	assert.Contains(t, filter, `JSON.parse(document.getElementById("sites-data").textContent)`)
	assert.Contains(t, filter, "icon_color")

	var sites []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(payload), &sites))

	rows := findAll(doc, "li", "site")
	require.Len(t, sites, len(rows))
	for i, row := range rows {
		assert.Equal(t, sites[i].Name, attr(row, "data-name"), "row %d", i)
	}
}

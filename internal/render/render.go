package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/behnamazizi/localnet-bookmarks/internal/model"
)

// DefaultTemplate is the name of the embedded page template.
const DefaultTemplate = "index.html"

//go:embed templates/index.html
var templatesFS embed.FS

// Engine renders the bookmark page.
type Engine struct {
	tmpl *template.Template
	name string
}

// NewEngine parses the template at path, or the embedded default when path
// is empty.
func NewEngine(path string) (*Engine, error) {
	funcMap := BuildFuncMap()

	if path == "" {
		tmpl, err := template.New(DefaultTemplate).Funcs(funcMap).ParseFS(templatesFS, "templates/"+DefaultTemplate)
		if err != nil {
			return nil, fmt.Errorf("parsing embedded template: %w", err)
		}
		return &Engine{tmpl: tmpl, name: DefaultTemplate}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", path, err)
	}
	name := filepath.Base(path)
	tmpl, err := template.New(name).Funcs(funcMap).Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", path, err)
	}
	return &Engine{tmpl: tmpl, name: name}, nil
}

// Name returns the template the engine executes.
func (e *Engine) Name() string {
	return e.name
}

// Render executes the page template.
func (e *Engine) Render(page model.PageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, e.name, page); err != nil {
		return nil, fmt.Errorf("executing template %q: %w", e.name, err)
	}
	return buf.Bytes(), nil
}

package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/hugh/go-grc/internal/grc"
)

//go:embed templates
var TemplatesFS embed.FS

//go:embed static
var StaticFS embed.FS

// Templates holds one template set per page, each parsed on top of the base
// layout so pages can define the same block names.
type Templates struct {
	pages map[string]*template.Template
}

func (t *Templates) ExecuteTemplate(w io.Writer, name string, data interface{}) error {
	page, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return page.ExecuteTemplate(w, "base", data)
}

var funcs = template.FuncMap{
	"list": func(items ...string) []string {
		return items
	},
	"humanize": func(s interface{}) string {
		return strings.ReplaceAll(fmt.Sprint(s), "_", " ")
	},
	"bandClass": func(b grc.Band) string {
		return "band-" + string(b)
	},
}

// LoadTemplates parses every page under templates/pages with the base layout.
func LoadTemplates() (*Templates, error) {
	base, err := template.New("base").Funcs(funcs).ParseFS(TemplatesFS, "templates/layouts/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base layout: %w", err)
	}

	entries, err := fs.ReadDir(TemplatesFS, "templates/pages")
	if err != nil {
		return nil, err
	}

	t := &Templates{pages: make(map[string]*template.Template, len(entries))}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		page, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := page.ParseFS(TemplatesFS, "templates/pages/"+entry.Name()); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		t.pages[entry.Name()] = page
	}

	return t, nil
}

// GetStaticFS returns the static file system for serving static files
func GetStaticFS() (fs.FS, error) {
	return fs.Sub(StaticFS, "static")
}

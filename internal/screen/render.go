package screen

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"bssaj-admin/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

// partials are shared by every page.
var partials = []string{"templates/layout.html", "templates/partials.html"}

// Layout is the chrome around every page.
type Layout struct {
	Title  string
	Nav    []NavItem
	Active string
	Toast  view.Toast
	Actor  string
}

type Page struct {
	Layout
	Data any
}

type Renderer struct {
	pages map[string]*template.Template
	nav   []NavItem
}

func NewRenderer() (*Renderer, error) {
	entries, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range entries {
		if isPartial(name) {
			continue
		}
		files := append(append([]string(nil), partials...), name)
		t, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("screen: parse %s: %w", name, err)
		}
		key := strings.TrimSuffix(strings.TrimPrefix(name, "templates/"), ".html")
		r.pages[key] = t
	}
	return r, nil
}

func isPartial(name string) bool {
	for _, p := range partials {
		if p == name {
			return true
		}
	}
	return false
}

// SetNav fixes the navigation shown in the layout.
func (r *Renderer) SetNav(nav []NavItem) {
	r.nav = nav
}

func (r *Renderer) Nav() []NavItem {
	return r.nav
}

// Render writes a full page. The page is buffered so a template error never
// leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, layout Layout, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("screen: unknown page %q", page)
	}
	if layout.Nav == nil {
		layout.Nav = r.nav
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", Page{Layout: layout, Data: data}); err != nil {
		return fmt.Errorf("screen: render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Fragment renders one named template of a page, for live updates.
func (r *Renderer) Fragment(page, name string, data any) (string, error) {
	t, ok := r.pages[page]
	if !ok {
		return "", fmt.Errorf("screen: unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("screen: render %s/%s: %w", page, name, err)
	}
	return buf.String(), nil
}

var funcs = template.FuncMap{
	"tone": func(t view.Tone) string {
		if t == "" {
			return string(view.ToneNeutral)
		}
		return string(t)
	},
	"isChecked": func(v string) bool {
		switch strings.ToLower(v) {
		case "true", "on", "1", "yes":
			return true
		}
		return false
	},
	"contains": func(list []string, v string) bool {
		for _, x := range list {
			if x == v {
				return true
			}
		}
		return false
	},
	"humanBytes": func(n int) string { return view.Bytes(n).Text },
}

// ABOUTME: TemplateEngine loads embedded HTML templates and renders them with Go's html/template.
// ABOUTME: Pages are wrapped in the layout; editor and preview fragments render standalone.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templateFS embed.FS

// longDate is the modified-date format in the files table.
const longDate = "Monday, January 2, 2006"

// PageData holds all data passed to page templates.
type PageData struct {
	Title   string
	Backend string
	Files   []FileRow
	Active  *ActiveView
	Status  StatusView
}

// FileRow is one line of the files table.
type FileRow struct {
	Index    int
	Name     string
	Type     string
	Modified string
	Relative string
	Active   bool
	Editable bool
}

// ActiveView is the selected document with its rendered editor or preview.
type ActiveView struct {
	Name     string
	Type     string
	Editable bool
	Body     template.HTML
}

// StatusView carries the load status of both persisted cells.
type StatusView struct {
	Documents string
	Selection string
}

// TemplateEngine loads and renders embedded HTML templates.
type TemplateEngine struct {
	templates  map[string]*template.Template
	standalone map[string]*template.Template
}

// templateFuncs returns the FuncMap available to all templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"lower": strings.ToLower,
	}
}

func relTime(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// NewTemplateEngine parses all embedded templates and returns a ready-to-use engine.
// Each page template is parsed together with the layout so that the layout wraps every page.
func NewTemplateEngine() (*TemplateEngine, error) {
	funcs := templateFuncs()

	pages := []string{
		"home.html",
	}

	engine := &TemplateEngine{
		templates:  make(map[string]*template.Template),
		standalone: make(map[string]*template.Template),
	}

	for _, page := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		engine.templates[page] = t
	}

	fragments := []string{
		"editor.html",
		"preview.html",
	}

	for _, page := range fragments {
		t, err := template.New(page).Funcs(funcs).ParseFS(
			templateFS,
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("parsing standalone template %s: %w", page, err)
		}
		engine.standalone[page] = t
	}

	return engine, nil
}

// Render executes the named page with the given data and writes the result
// to w. It sets the Content-Type header to text/html.
func (e *TemplateEngine) Render(w http.ResponseWriter, name string, data any) error {
	t, ok := e.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	// Render into a buffer so a template error does not leave a half-written page.
	var b strings.Builder
	if err := t.ExecuteTemplate(&b, "layout.html", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderTo executes the named page with the given data and writes the
// result to an arbitrary io.Writer.
func (e *TemplateEngine) RenderTo(w io.Writer, name string, data any) error {
	t, ok := e.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	return t.ExecuteTemplate(w, "layout.html", data)
}

// RenderStandaloneTo executes a standalone template (no layout wrapping) and
// writes the result to w.
func (e *TemplateEngine) RenderStandaloneTo(w io.Writer, name string, data any) error {
	t, ok := e.standalone[name]
	if !ok {
		return fmt.Errorf("standalone template %q not found", name)
	}

	return t.Execute(w, data)
}

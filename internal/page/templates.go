package page

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

type templates struct {
	pages map[string]*template.Template
}

var pageNames = []string{"post", "index", "notfound", "error"}

func parseTemplates() (*templates, error) {
	t := &templates{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tmpl, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		t.pages[name] = tmpl
	}
	return t, nil
}

func (t *templates) execute(w io.Writer, name string, data any) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	// Render into a buffer so a failed execution never leaves a partial page.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderPost writes a post page.
func (a *Assembler) RenderPost(w io.Writer, p *PostPage) error {
	return a.tmpl.execute(w, "post", p)
}

// RenderIndex writes the listing page.
func (a *Assembler) RenderIndex(w io.Writer, p *IndexPage) error {
	return a.tmpl.execute(w, "index", p)
}

type statusPage struct {
	Meta    Meta
	Message string
}

// RenderNotFound writes the 404 page.
func (a *Assembler) RenderNotFound(w io.Writer) error {
	m := a.baseMeta()
	m.Title = "Post Not Found - " + a.cfg.SiteName
	return a.tmpl.execute(w, "notfound", statusPage{Meta: m})
}

// RenderError writes the generic failure page.
func (a *Assembler) RenderError(w io.Writer) error {
	m := a.baseMeta()
	m.Title = "Something went wrong - " + a.cfg.SiteName
	return a.tmpl.execute(w, "error", statusPage{Meta: m, Message: "We could not load this page. Please try again shortly."})
}

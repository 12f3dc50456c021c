// Package web renders the single-page HTML interface.
//
// The page has one URL input, one submit control that is disabled while a
// request is pending, an error banner shown only for failures and the
// itinerary shown only on success. Activity descriptions are rendered as
// sanitized Markdown.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/aretw0/tripreel/pkg/render"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData is the input of the page template.
type PageData struct {
	Screen    render.Screen
	Version   string
	EventsURL string
	SubmitURL string
}

// Presenter renders pages. It is safe for concurrent use.
type Presenter struct {
	tmpl   *template.Template
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New parses the embedded templates.
func New() (*Presenter, error) {
	p := &Presenter{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
	}
	tmpl, err := template.New("page.html").Funcs(template.FuncMap{
		"markdown": p.Markdown,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	p.tmpl = tmpl
	return p, nil
}

// Page writes the full HTML document.
func (p *Presenter) Page(w io.Writer, data PageData) error {
	if data.SubmitURL == "" {
		data.SubmitURL = "/submit"
	}
	return p.tmpl.ExecuteTemplate(w, "page.html", data)
}

// Result writes only the region below the form (banner or itinerary).
func (p *Presenter) Result(w io.Writer, sc render.Screen) error {
	return p.tmpl.ExecuteTemplate(w, "result", sc)
}

// Markdown converts a description to sanitized HTML. Conversion failures fall
// back to escaped plain text.
func (p *Presenter) Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(p.policy.SanitizeBytes(buf.Bytes()))
}

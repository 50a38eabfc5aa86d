package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/wordscraper/internal/errors"
)

// PageData contains common fields used across page templates.
type PageData struct {
	Title   string
	Version string
}

// IndexPageData is the template data for the status page.
type IndexPageData struct {
	PageData
	Day          string
	Session      string
	Distinct     int
	Total        int
	RenderedHTML template.HTML
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	Code    string
	Message string
}

// Renderer renders HTML pages from the embedded templates.
type Renderer struct {
	tmpl    *template.Template
	version string
}

// NewRenderer parses the templates from the given filesystem.
func NewRenderer(fsys fs.FS, version string) *Renderer {
	tmpl := template.Must(template.ParseFS(fsys, "*.html"))
	return &Renderer{tmpl: tmpl, version: version}
}

// renderPage renders the named template with the given data.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name+".html", data); err != nil {
		log.Printf("template %s: %v", name, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// renderError renders the error page with an appropriate status code.
func (r *Renderer) renderError(w http.ResponseWriter, err error) {
	code := "INTERNAL"
	status := http.StatusInternalServerError
	message := "an internal error occurred"

	if sErr, ok := err.(*errors.ScraperError); ok {
		code = string(sErr.Code)
		status = sErr.Status
		message = sErr.Message
	}

	w.WriteHeader(status)
	r.renderPage(w, "error", ErrorPageData{
		PageData: PageData{Title: fmt.Sprintf("Error %d", status), Version: r.version},
		Code:     code,
		Message:  message,
	})
}

// renderMarkdown converts markdown text to HTML using goldmark.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

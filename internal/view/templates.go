package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/claimsight/claimsight/internal/render"
	"github.com/claimsight/claimsight/web"
)

// Engine renders the embedded dashboard templates. Output is buffered so a
// failing template never leaves a half-written page.
type Engine struct {
	templates *template.Template
	buffers   sync.Pool
}

// TemplateData is the envelope every page receives.
type TemplateData struct {
	Title       string
	Theme       render.Theme
	CurrentPath string
	Data        any
}

var templateGlobs = []string{"layouts/*.html", "partials/*.html", "pages/*.html"}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	return newEngine(web.Templates())
}

func newEngine(fsys fs.FS) (*Engine, error) {
	tpl, err := template.New("claimsight").Funcs(template.FuncMap{
		"formatDate": formatDate,
	}).ParseFS(fsys, templateGlobs...)
	if err != nil {
		return nil, fmt.Errorf("view: parse templates: %w", err)
	}
	e := &Engine{templates: tpl}
	e.buffers.New = func() any { return new(bytes.Buffer) }
	return e, nil
}

// Render executes the named template and writes it as HTML.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil || e.templates == nil {
		return errors.New("view: engine not initialised")
	}
	buf := e.buffers.Get().(*bytes.Buffer)
	buf.Reset()
	defer e.buffers.Put(buf)

	if err := e.templates.ExecuteTemplate(buf, name, data); err != nil {
		return fmt.Errorf("view: render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, err := buf.WriteTo(w)
	return err
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006 15:04")
}

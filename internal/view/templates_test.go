package view

import (
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngineParsesEmbeddedTemplates(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	for _, name := range []string{"layouts/base.html", "partials/widget.html", "pages/dashboard.html"} {
		assert.NotNil(t, engine.templates.Lookup(name), name)
	}
}

func TestRenderBuffersFailures(t *testing.T) {
	fsys := fstest.MapFS{
		"layouts/base.html": {Data: []byte(`{{define "layouts/base.html"}}<p>{{.Title}}</p>{{end}}`)},
		"partials/x.html":   {Data: []byte(`{{define "partials/x.html"}}{{end}}`)},
		"pages/ok.html":     {Data: []byte(`{{define "pages/ok.html"}}{{template "layouts/base.html" .}}{{formatDate .Data}}{{end}}`)},
		"pages/broken.html": {Data: []byte(`{{define "pages/broken.html"}}partial{{.Data.Missing}}{{end}}`)},
	}
	engine, err := newEngine(fsys)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	require.NoError(t, engine.Render(rr, "pages/ok.html", TemplateData{Title: "Hi", Data: time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)}))
	assert.Equal(t, "<p>Hi</p>01 May 2025 09:30", rr.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))

	rr = httptest.NewRecorder()
	assert.Error(t, engine.Render(rr, "pages/broken.html", TemplateData{Data: 3}))
	assert.Empty(t, rr.Body.String())
	assert.Empty(t, rr.Header().Get("Content-Type"))
}

func TestRenderUnknownTemplate(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	assert.Error(t, engine.Render(httptest.NewRecorder(), "pages/missing.html", TemplateData{}))
}

func TestNilEngine(t *testing.T) {
	var engine *Engine
	assert.Error(t, engine.Render(httptest.NewRecorder(), "pages/dashboard.html", TemplateData{}))
}

func TestFormatDate(t *testing.T) {
	assert.Empty(t, formatDate(time.Time{}))
}

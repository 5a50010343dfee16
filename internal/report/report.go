// Package report renders batch results as Markdown or HTML summaries.
package report

import (
	"bytes"
	"embed"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/fjglira/xraysync/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const defaultTemplate = "batch.md"

// Report is the data passed to report templates.
type Report struct {
	Title     string
	Generated time.Time
	Result    domain.BatchResult
}

// Engine renders reports from the embedded templates.
type Engine struct {
	templates *template.Template
	markdown  goldmark.Markdown
}

// NewEngine parses the embedded report templates.
func NewEngine() (*Engine, error) {
	tmpl, err := template.New("").Funcs(CustomFuncMap()).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, domain.NewError(domain.PhaseWrite, "", "failed to parse report templates", err)
	}
	return &Engine{
		templates: tmpl,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.Table)),
	}, nil
}

// Markdown renders r as a Markdown document.
func (e *Engine) Markdown(w io.Writer, r Report) error {
	if err := e.templates.ExecuteTemplate(w, defaultTemplate+".tmpl", r); err != nil {
		return domain.NewError(domain.PhaseWrite, "", "failed to render report", err)
	}
	return nil
}

// HTML renders r as a standalone HTML page.
func (e *Engine) HTML(w io.Writer, r Report) error {
	var md bytes.Buffer
	if err := e.Markdown(&md, r); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := e.markdown.Convert(md.Bytes(), &body); err != nil {
		return domain.NewError(domain.PhaseWrite, "", "failed to convert report to HTML", err)
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	page.WriteString(html.EscapeString(r.Title))
	page.WriteString("</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")

	if _, err := io.WriteString(w, page.String()); err != nil {
		return domain.NewError(domain.PhaseWrite, "", "failed to write report", err)
	}
	return nil
}

// Write renders r to path, as HTML when path ends in .html or .htm and as
// Markdown otherwise.
func (e *Engine) Write(path string, r Report) error {
	var buf bytes.Buffer
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		err = e.HTML(&buf, r)
	default:
		err = e.Markdown(&buf, r)
	}
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.NewError(domain.PhaseWrite, path, "failed to create report directory", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return domain.NewError(domain.PhaseWrite, path, "failed to write report", err)
	}
	return nil
}

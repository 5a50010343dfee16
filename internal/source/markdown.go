package source

import (
	"bytes"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/fjglira/xraysync/internal/domain"
)

// MarkdownReader reads the first GFM table of a Markdown document.
type MarkdownReader struct {
	md goldmark.Markdown
}

// NewMarkdownReader creates a new MarkdownReader.
func NewMarkdownReader() *MarkdownReader {
	return &MarkdownReader{
		md: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// SupportedExtensions returns the file extensions this reader handles.
func (r *MarkdownReader) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Read loads the Markdown document at path.
func (r *MarkdownReader) Read(path string) (*domain.Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewError(domain.PhaseIO, path, "failed to read file", err)
	}
	return r.Parse(path, content)
}

// Parse extracts the first table of content as header plus rows.
func (r *MarkdownReader) Parse(path string, content []byte) (*domain.Table, error) {
	doc := r.md.Parser().Parse(text.NewReader(content))

	var records [][]string
	found := false
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		tbl, ok := n.(*east.Table)
		if !ok {
			return ast.WalkContinue, nil
		}
		found = true
		for row := tbl.FirstChild(); row != nil; row = row.NextSibling() {
			var rec []string
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				rec = append(rec, cellText(cell, content))
			}
			records = append(records, rec)
		}
		return ast.WalkStop, nil
	})
	if err != nil {
		return nil, domain.NewError(domain.PhaseParse, path, "failed to walk markdown AST", err)
	}
	if !found {
		return nil, domain.NewErrorWithSuggestion(domain.PhaseParse, path,
			"no table found",
			"describe the test cases in a pipe table with a header row",
			nil)
	}

	return buildTable(path, records)
}

// cellText concatenates the inline text of a table cell.
func cellText(cell ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(cell, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

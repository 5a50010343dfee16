package report

import (
	"path/filepath"
	"strings"
	"text/template"
)

// CustomFuncMap returns the custom template functions available in report templates.
func CustomFuncMap() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"base":      filepath.Base,
		"join":      strings.Join,
		"toUpper":   strings.ToUpper,
		"trimSpace": strings.TrimSpace,
		// cell makes s safe inside a Markdown table cell.
		"cell": func(s string) string {
			s = strings.ReplaceAll(s, "\r\n", " ")
			s = strings.ReplaceAll(s, "\n", " ")
			return strings.ReplaceAll(s, "|", `\|`)
		},
	}
}

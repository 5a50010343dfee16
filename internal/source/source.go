// Package source reads tabular test-case definitions from CSV, Excel and
// Markdown files.
package source

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/fjglira/xraysync/internal/domain"
)

// Reader loads a table of test-case rows from a file.
type Reader interface {
	Read(path string) (*domain.Table, error)
	SupportedExtensions() []string
}

// Registry maps file extensions to readers.
type Registry interface {
	Register(reader Reader)
	ReaderFor(extension string) (Reader, error)
	Extensions() []string
}

// DefaultRegistry is a thread-safe reader registry.
type DefaultRegistry struct {
	mu      sync.RWMutex
	readers map[string]Reader
}

// NewRegistry creates a new DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		readers: make(map[string]Reader),
	}
}

// NewDefaultRegistry returns a registry with the CSV, Excel and Markdown
// readers registered. sep is the CSV field separator.
func NewDefaultRegistry(sep rune) *DefaultRegistry {
	r := NewRegistry()
	r.Register(NewCSVReader(sep))
	r.Register(NewExcelReader())
	r.Register(NewMarkdownReader())
	return r
}

// Register adds a reader to the registry for each of its supported extensions.
func (r *DefaultRegistry) Register(reader Reader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range reader.SupportedExtensions() {
		r.readers[normalizeExt(ext)] = reader
	}
}

// ReaderFor returns the reader registered for the given file extension.
func (r *DefaultRegistry) ReaderFor(extension string) (Reader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if reader, ok := r.readers[normalizeExt(extension)]; ok {
		return reader, nil
	}
	return nil, fmt.Errorf("no reader registered for extension %q", extension)
}

// Extensions returns the registered extensions, sorted, with a leading dot.
func (r *DefaultRegistry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.readers))
	for ext := range r.readers {
		exts = append(exts, "."+ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// buildTable turns raw records (header first) into a Table. Short rows are
// padded with empty values; rows wider than the header are rejected.
func buildTable(path string, records [][]string) (*domain.Table, error) {
	if len(records) == 0 {
		return nil, domain.NewErrorWithSuggestion(domain.PhaseParse, path,
			"file has no header row",
			"the first row must name the columns, e.g. Summary and Step",
			nil)
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
	}

	table := &domain.Table{
		Source:  path,
		Columns: header,
	}
	for i, rec := range records[1:] {
		if len(rec) > len(header) {
			return nil, domain.NewErrorWithSuggestion(domain.PhaseParse, path,
				fmt.Sprintf("row %d has %d fields, header has %d", i+2, len(rec), len(header)),
				"check the field separator and quoting",
				nil)
		}
		row := make(domain.TestCaseRow, len(header))
		for j, name := range header {
			if name == "" {
				continue
			}
			if j < len(rec) {
				row[name] = rec[j]
			} else {
				row[name] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

package source

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/fjglira/xraysync/internal/domain"
)

// CSVReader reads delimited text files.
type CSVReader struct {
	Separator rune
}

// NewCSVReader creates a CSVReader using sep as the field separator.
func NewCSVReader(sep rune) *CSVReader {
	if sep == 0 {
		sep = ','
	}
	return &CSVReader{Separator: sep}
}

// SupportedExtensions returns the file extensions this reader handles.
func (r *CSVReader) SupportedExtensions() []string {
	return []string{".csv"}
}

// Read opens path and parses it as CSV.
func (r *CSVReader) Read(path string) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewError(domain.PhaseIO, path, "failed to open file", err)
	}
	defer f.Close()
	return r.Parse(path, f)
}

// Parse reads CSV records from in. A leading UTF-8 byte order mark, as
// written by spreadsheet exports, is dropped.
func (r *CSVReader) Parse(path string, in io.Reader) (*domain.Table, error) {
	decoded := transform.NewReader(in, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.Comma = r.Separator
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, domain.NewErrorWithSuggestion(domain.PhaseParse, path,
			"failed to read CSV",
			"check the field separator (\",\" or \";\") and quoting",
			err)
	}
	return buildTable(path, records)
}

// WriteCSV writes records to path using sep as the field separator.
func WriteCSV(path string, records [][]string, sep rune) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return domain.NewError(domain.PhaseWrite, path, "failed to create output directory", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return domain.NewError(domain.PhaseWrite, path, "failed to create CSV file", err)
	}

	w := csv.NewWriter(f)
	w.Comma = sep
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return domain.NewError(domain.PhaseWrite, path, "failed to write CSV file", err)
	}
	if err := f.Close(); err != nil {
		return domain.NewError(domain.PhaseWrite, path, "failed to close CSV file", err)
	}
	return nil
}

// Package document encodes, decodes and cleans Xray bulk import documents.
package document

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/fjglira/xraysync/internal/domain"
	"github.com/fjglira/xraysync/internal/scanner"
)

// Clean trims surrounding whitespace from the text fields of every document.
// Running it more than once yields the same documents.
func Clean(docs []domain.TestDocument) []domain.TestDocument {
	for i := range docs {
		d := &docs[i]
		d.TestType = strings.TrimSpace(d.TestType)
		d.Folder = strings.TrimSpace(d.Folder)
		d.Fields.Summary = strings.TrimSpace(d.Fields.Summary)
		d.Fields.Description = strings.TrimSpace(d.Fields.Description)
		d.Fields.Project.Key = strings.TrimSpace(d.Fields.Project.Key)

		if d.Steps == nil {
			d.Steps = []domain.StepRecord{}
		}
		for j := range d.Steps {
			s := &d.Steps[j]
			s.Action = strings.TrimSpace(s.Action)
			s.Data = strings.TrimSpace(s.Data)
			s.Result = strings.TrimSpace(s.Result)
		}

		if len(d.TestSets) > 0 {
			sets := d.TestSets[:0]
			for _, set := range d.TestSets {
				if set = strings.TrimSpace(set); set != "" {
					sets = append(sets, set)
				}
			}
			if len(sets) == 0 {
				sets = nil
			}
			d.TestSets = sets
		}
	}
	return docs
}

// Encode writes docs as an indented JSON array. Non-ASCII and HTML
// characters are written literally.
func Encode(w io.Writer, docs []domain.TestDocument) error {
	if docs == nil {
		docs = []domain.TestDocument{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(docs)
}

// Write encodes docs to path, replacing any existing file.
func Write(path string, docs []domain.TestDocument) error {
	var buf bytes.Buffer
	if err := Encode(&buf, docs); err != nil {
		return domain.NewError(domain.PhaseWrite, path, "failed to encode documents", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return domain.NewErrorWithSuggestion(domain.PhaseWrite, dir,
				"failed to create output directory",
				"check that the parent directory exists and has write permissions",
				err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return domain.NewErrorWithSuggestion(domain.PhaseWrite, path,
			"failed to write output file",
			"check disk space and write permissions for the output directory",
			err)
	}
	return nil
}

// Read decodes the documents stored at path.
func Read(path string) ([]domain.TestDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewError(domain.PhaseIO, path, "failed to read document", err)
	}
	var docs []domain.TestDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, domain.NewErrorWithSuggestion(domain.PhaseParse, path,
			"invalid test document",
			"the file must hold a JSON array of tests",
			err)
	}
	return docs, nil
}

// Compact strips insignificant whitespace from a JSON payload.
func Compact(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CleanFile cleans the document at path in place and returns the result.
func CleanFile(path string) ([]domain.TestDocument, error) {
	docs, err := Read(path)
	if err != nil {
		return nil, err
	}
	docs = Clean(docs)
	if err := Write(path, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// CleanDirectory cleans every JSON document directly inside dir. Files that
// cannot be cleaned are reported without stopping the others.
func CleanDirectory(dir string) (domain.BatchResult, error) {
	var result domain.BatchResult
	files, err := scanner.NewScanner().List(dir, ".json")
	if err != nil {
		return result, err
	}
	for _, path := range files {
		if _, err := CleanFile(path); err != nil {
			result.AddFailure(path, err)
			continue
		}
		result.AddSuccess(path)
	}
	return result, nil
}

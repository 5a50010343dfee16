// Package scanner discovers source and document files in the working directories.
package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fjglira/xraysync/internal/domain"
)

// Scanner discovers files by extension.
type Scanner interface {
	List(dir string, exts ...string) ([]string, error)
}

// FileScanner implements Scanner using filepath.WalkDir.
type FileScanner struct {
	Recursive bool
}

// NewScanner creates a FileScanner that only looks at the top level of a directory.
func NewScanner() *FileScanner {
	return &FileScanner{}
}

// List returns the sorted paths of regular files in dir whose extension
// matches one of exts, case-insensitively. Hidden files are skipped.
func (s *FileScanner) List(dir string, exts ...string) ([]string, error) {
	want := make(map[string]bool, len(exts))
	for _, ext := range exts {
		want[strings.ToLower("."+strings.TrimPrefix(ext, "."))] = true
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != dir && !s.Recursive {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			return nil
		}
		if want[strings.ToLower(filepath.Ext(name))] {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, domain.NewError(domain.PhaseIO, dir, "failed to scan directory", err)
	}

	sort.Strings(files)
	return files, nil
}

// SelectByPrefix keeps the files whose base name starts with any of prefixes.
// Blank prefixes are ignored; the input order is preserved.
func SelectByPrefix(files []string, prefixes []string) []string {
	var cleaned []string
	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}

	var selected []string
	for _, f := range files {
		base := filepath.Base(f)
		for _, p := range cleaned {
			if strings.HasPrefix(base, p) {
				selected = append(selected, f)
				break
			}
		}
	}
	return selected
}

// Stem returns the file name of path without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

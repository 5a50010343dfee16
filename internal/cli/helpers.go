package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fjglira/xraysync/internal/app"
	"github.com/fjglira/xraysync/internal/domain"
)

// resolveFiles maps command arguments to existing files. An argument is used
// as is when it names a file, otherwise it is looked up in dir with each of
// exts appended.
func resolveFiles(dir string, args []string, exts ...string) ([]string, error) {
	var files []string
	for _, arg := range args {
		path, ok := resolveFile(dir, arg, exts)
		if !ok {
			return nil, domain.NewErrorWithSuggestion(domain.PhaseIO, arg,
				"file not found",
				fmt.Sprintf("pass a path or a name inside %s (%s)", dir, strings.Join(exts, ", ")),
				nil)
		}
		files = append(files, path)
	}
	return files, nil
}

func resolveFile(dir, arg string, exts []string) (string, bool) {
	candidates := []string{arg, filepath.Join(dir, arg)}
	for _, ext := range exts {
		candidates = append(candidates, filepath.Join(dir, arg+ext))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}

// eachFile runs fn for every file and collects the outcomes.
func eachFile(files []string, fn func(string) (string, error)) domain.BatchResult {
	var result domain.BatchResult
	for _, f := range files {
		out, err := fn(f)
		if err != nil {
			log.Warnf("%s: %v", f, err)
			result.AddFailure(f, err)
			continue
		}
		result.AddSuccess(out)
	}
	return result
}

// finish prints the batch summary, writes the optional report and fails
// when any file failed.
func finish(w io.Writer, a *app.App, action string, result domain.BatchResult, reportPath string) error {
	fmt.Fprintf(w, "%s complete. Succeeded: %d - Failed: %d\n", action, len(result.Succeeded), len(result.Failed))
	for _, f := range result.Failed {
		fmt.Fprintf(w, "  %s: %s\n", filepath.Base(f.Path), f.Reason)
	}

	if reportPath != "" {
		if err := a.WriteReport(reportPath, action+" report", result); err != nil {
			return err
		}
	}

	if len(result.Failed) > 0 {
		return fmt.Errorf("%d of %d file(s) failed", len(result.Failed), result.Total())
	}
	return nil
}

// requireTargets rejects commands given neither files nor --all.
func requireTargets(args []string, all bool) error {
	if len(args) == 0 && !all {
		return fmt.Errorf("pass one or more files or --all")
	}
	if len(args) > 0 && all {
		return fmt.Errorf("--all cannot be combined with files (%s)", joinArgs(args))
	}
	return nil
}

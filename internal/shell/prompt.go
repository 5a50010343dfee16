package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// errQuit ends the menu loop when the input is exhausted.
var errQuit = errors.New("input closed")

const clearScreen = "\033[H\033[2J"

type styles struct {
	title lipgloss.Style
	ok    lipgloss.Style
	fail  lipgloss.Style
	muted lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		ok:    r.NewStyle().Foreground(lipgloss.Color("10")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("9")),
		muted: r.NewStyle().Faint(true),
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
	st  styles
}

func (p *prompter) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *prompter) ok(format string, args ...any) {
	fmt.Fprintln(p.out, p.st.ok.Render(fmt.Sprintf(format, args...)))
}

func (p *prompter) fail(format string, args ...any) {
	fmt.Fprintln(p.out, p.st.fail.Render(fmt.Sprintf(format, args...)))
}

// ask prints label and returns the trimmed answer.
func (p *prompter) ask(label string) (string, error) {
	p.printf("%s: ", label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		p.printf("\n")
		return "", errQuit
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// confirm asks a yes/no question; only y or yes confirms.
func (p *prompter) confirm(question string) (bool, error) {
	answer, err := p.ask(question + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// askFile asks for a file name in dir, without extension, until a file
// with one of exts exists. A name that already carries one of exts is
// accepted as is.
func (p *prompter) askFile(dir string, exts ...string) (string, error) {
	for {
		name, err := p.ask(fmt.Sprintf("File name (without %s)", strings.Join(exts, "/")))
		if err != nil {
			return "", err
		}
		if name == "" {
			continue
		}
		if path, ok := findFile(dir, name, exts); ok {
			return path, nil
		}
		p.fail("File %q not found in %s, try again.", name, dir)
	}
}

func findFile(dir, name string, exts []string) (string, bool) {
	candidates := make([]string, 0, len(exts))
	for _, ext := range exts {
		if strings.EqualFold(filepath.Ext(name), ext) {
			candidates = []string{name}
			break
		}
		candidates = append(candidates, name+ext)
	}
	for _, c := range candidates {
		path := filepath.Join(dir, c)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

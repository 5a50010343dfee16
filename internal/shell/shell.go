// Package shell implements the interactive numbered menu.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fjglira/xraysync/internal/config"
	"github.com/fjglira/xraysync/internal/domain"
	"github.com/fjglira/xraysync/internal/generator"
	"github.com/fjglira/xraysync/internal/scanner"
)

// Service is the set of operations the menu drives.
type Service interface {
	Config() *config.Config
	ProjectKey() string
	SetProjectKey(key string) error
	Separator() string
	SetSeparator(sep string) error
	Authenticate(ctx context.Context) error

	ConvertFile(src string) (string, error)
	ConvertAll(exts ...string) (domain.BatchResult, error)
	ExcelFile(src string) (string, error)
	ExcelAll() (domain.BatchResult, error)

	Send(ctx context.Context, path string) error
	SendAll(ctx context.Context) (domain.BatchResult, error)
	SendByPrefix(ctx context.Context, prefixes []string) (domain.BatchResult, error)
	CleanFile(path string) error
	CleanAll() (domain.BatchResult, error)
	List(dir string, exts ...string) ([]string, error)
}

// Menu runs the interactive menu over an input and output stream.
type Menu struct {
	svc   Service
	p     *prompter
	clear bool
}

// New creates a Menu reading answers from in and writing to out. The
// screen is cleared between menus only when out is a terminal.
func New(svc Service, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		svc:   svc,
		p:     &prompter{in: bufio.NewScanner(in), out: out, st: newStyles(out)},
		clear: isTerminal(out),
	}
}

// Run shows the main menu until the user exits or the input ends.
func (m *Menu) Run(ctx context.Context) error {
	m.clearScreen()
	if err := m.setup(ctx); err != nil {
		return ignoreQuit(err)
	}

	for {
		m.title("Xray test sync")
		m.p.printf("1. Change project key (current: %s)\n", m.svc.ProjectKey())
		m.p.printf("2. Regenerate authentication token\n")
		m.p.printf("3. Excel files\n")
		m.p.printf("4. CSV files\n")
		m.p.printf("5. JSON files\n")
		m.p.printf("0. Exit\n")

		choice, err := m.p.ask("Select an option")
		if err != nil {
			return ignoreQuit(err)
		}

		switch choice {
		case "1":
			err = m.changeProjectKey()
		case "2":
			m.authenticate(ctx)
		case "3":
			err = m.excelMenu()
		case "4":
			err = m.csvMenu()
		case "5":
			err = m.jsonMenu(ctx)
		case "0":
			m.p.printf("Bye.\n")
			return nil
		default:
			m.p.fail("Invalid option, try again.")
		}
		if err != nil {
			return ignoreQuit(err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// setup asks for the project key when none is configured and obtains the
// first token. An authentication failure is reported and the menu continues.
func (m *Menu) setup(ctx context.Context) error {
	for m.svc.ProjectKey() == "" {
		key, err := m.p.ask("Default project key")
		if err != nil {
			return err
		}
		if err := m.svc.SetProjectKey(key); err != nil {
			m.p.fail("A project key is required.")
		}
	}
	m.authenticate(ctx)
	return nil
}

func (m *Menu) changeProjectKey() error {
	key, err := m.p.ask("New project key")
	if err != nil {
		return err
	}
	if key == "" {
		return nil
	}
	if err := m.svc.SetProjectKey(key); err != nil {
		m.p.fail("%v", err)
	}
	return nil
}

func (m *Menu) authenticate(ctx context.Context) {
	if err := m.svc.Authenticate(ctx); err != nil {
		m.p.fail("Authentication failed: %v", err)
		return
	}
	m.p.ok("Token updated.")
}

func (m *Menu) excelMenu() error {
	paths := m.svc.Config().Paths
	for {
		m.title("Excel files")
		m.p.printf("1. Convert Excel to CSV\n")
		m.p.printf("2. Convert all Excel files to CSV\n")
		m.p.printf("3. List Excel files\n")
		m.p.printf("0. Back\n")

		choice, err := m.p.ask("Select an option")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			src, err := m.p.askFile(paths.ExcelDir(), generator.ExcelExtensions...)
			if err != nil {
				return err
			}
			if dst, err := m.svc.ExcelFile(src); err != nil {
				m.p.fail("Conversion failed: %v", err)
			} else {
				m.p.ok("Created %s", filepath.Base(dst))
			}
		case "2":
			result, err := m.svc.ExcelAll()
			m.summary("Conversion", result, err)
		case "3":
			m.list(paths.ExcelDir(), generator.ExcelExtensions...)
		case "0":
			return nil
		default:
			m.p.fail("Invalid option, try again.")
		}
	}
}

func (m *Menu) csvMenu() error {
	paths := m.svc.Config().Paths
	for {
		m.title("CSV files")
		m.p.printf("1. Change CSV separator (current: %s)\n", m.svc.Separator())
		m.p.printf("2. Convert CSV to JSON\n")
		m.p.printf("3. Convert all CSV files to JSON\n")
		m.p.printf("4. List CSV files\n")
		m.p.printf("0. Back\n")

		choice, err := m.p.ask("Select an option")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			sep, err := m.p.ask("New separator (, or ;)")
			if err != nil {
				return err
			}
			if err := m.svc.SetSeparator(sep); err != nil {
				m.p.fail("%v", err)
			}
		case "2":
			src, err := m.p.askFile(paths.CSVDir(), ".csv")
			if err != nil {
				return err
			}
			if dst, err := m.svc.ConvertFile(src); err != nil {
				m.p.fail("Conversion failed: %v", err)
			} else {
				m.p.ok("Created %s", filepath.Base(dst))
			}
		case "3":
			result, err := m.svc.ConvertAll(".csv")
			m.summary("Conversion", result, err)
		case "4":
			m.list(paths.CSVDir(), ".csv")
		case "0":
			return nil
		default:
			m.p.fail("Invalid option, try again.")
		}
	}
}

func (m *Menu) jsonMenu(ctx context.Context) error {
	dir := m.svc.Config().Paths.JSONDir()
	for {
		m.title("JSON files")
		m.p.printf("1. Send JSON to Xray\n")
		m.p.printf("2. Send JSON files to Xray in batch\n")
		m.p.printf("3. Clean JSON files\n")
		m.p.printf("4. List JSON files\n")
		m.p.printf("0. Back\n")

		choice, err := m.p.ask("Select an option")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = m.sendOne(ctx, dir)
		case "2":
			err = m.sendBatch(ctx, dir)
		case "3":
			err = m.clean(dir)
		case "4":
			m.list(dir, ".json")
		case "0":
			return nil
		default:
			m.p.fail("Invalid option, try again.")
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) sendOne(ctx context.Context, dir string) error {
	path, err := m.p.askFile(dir, ".json")
	if err != nil {
		return err
	}
	ok, err := m.p.confirm(fmt.Sprintf("Send %q to Xray?", filepath.Base(path)))
	if err != nil || !ok {
		return err
	}
	if err := m.svc.Send(ctx, path); err != nil {
		m.p.fail("Send failed: %v", err)
		return nil
	}
	m.p.ok("JSON sent successfully.")
	return nil
}

func (m *Menu) sendBatch(ctx context.Context, dir string) error {
	m.p.printf("1. Send by number list\n2. Send all\n")
	opt, err := m.p.ask("Select an option")
	if err != nil {
		return err
	}

	byNumber := opt == "1"
	var prefixes []string
	if byNumber {
		answer, err := m.p.ask("Numbers separated by commas")
		if err != nil {
			return err
		}
		for _, n := range strings.Split(answer, ",") {
			if n = strings.TrimSpace(n); n != "" {
				prefixes = append(prefixes, n)
			}
		}
	}

	files, err := m.svc.List(dir, ".json")
	if err != nil {
		m.p.fail("%v", err)
		return nil
	}
	if byNumber {
		files = scanner.SelectByPrefix(files, prefixes)
	}
	if len(files) == 0 {
		m.p.fail("No files found to send.")
		return nil
	}

	ok, err := m.p.confirm(fmt.Sprintf("Send %d file(s) to Xray?", len(files)))
	if err != nil || !ok {
		return err
	}

	var result domain.BatchResult
	if byNumber {
		result, err = m.svc.SendByPrefix(ctx, prefixes)
	} else {
		result, err = m.svc.SendAll(ctx)
	}
	m.summary("Send", result, err)
	return nil
}

func (m *Menu) clean(dir string) error {
	m.p.printf("1. Clean one file\n2. Clean all\n")
	opt, err := m.p.ask("Select an option")
	if err != nil {
		return err
	}
	if opt == "1" {
		path, err := m.p.askFile(dir, ".json")
		if err != nil {
			return err
		}
		if err := m.svc.CleanFile(path); err != nil {
			m.p.fail("Cleaning failed: %v", err)
			return nil
		}
		m.p.ok("File %q cleaned.", filepath.Base(path))
		return nil
	}
	result, err := m.svc.CleanAll()
	m.summary("Cleaning", result, err)
	return nil
}

func (m *Menu) list(dir string, exts ...string) {
	files, err := m.svc.List(dir, exts...)
	if err != nil {
		m.p.fail("%v", err)
		return
	}
	if len(files) == 0 {
		m.p.printf("%s\n", m.p.st.muted.Render("No files found in "+dir))
		return
	}
	for i, f := range files {
		m.p.printf("%3d. %s\n", i+1, filepath.Base(f))
	}
}

// summary prints the counts of a batch and one line per failure.
func (m *Menu) summary(action string, result domain.BatchResult, err error) {
	if err != nil {
		m.p.fail("%s failed: %v", action, err)
		return
	}
	line := fmt.Sprintf("%s complete. Succeeded: %d - Failed: %d", action, len(result.Succeeded), len(result.Failed))
	if len(result.Failed) == 0 {
		m.p.ok("%s", line)
		return
	}
	m.p.fail("%s", line)
	for _, f := range result.Failed {
		m.p.fail("  %s: %s", filepath.Base(f.Path), f.Reason)
	}
}

func (m *Menu) title(s string) {
	m.p.printf("\n%s\n", m.p.st.title.Render("--- "+s+" ---"))
}

func (m *Menu) clearScreen() {
	if m.clear {
		m.p.printf("%s", clearScreen)
	}
}

func ignoreQuit(err error) error {
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

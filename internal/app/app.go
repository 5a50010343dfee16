// Package app wires configuration, conversion and upload into the
// operations offered by the CLI and the interactive menu.
package app

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fjglira/xraysync/internal/config"
	"github.com/fjglira/xraysync/internal/converter"
	"github.com/fjglira/xraysync/internal/document"
	"github.com/fjglira/xraysync/internal/domain"
	"github.com/fjglira/xraysync/internal/generator"
	"github.com/fjglira/xraysync/internal/report"
	"github.com/fjglira/xraysync/internal/scanner"
	"github.com/fjglira/xraysync/internal/source"
	"github.com/fjglira/xraysync/internal/xray"
)

// tokenSkew refreshes tokens slightly before they expire.
const tokenSkew = time.Minute

// App holds the session state shared by all commands: configuration, the
// current project key and separator, and the API token.
type App struct {
	cfg     *config.Config
	log     *logrus.Logger
	scanner *scanner.FileScanner
	token   string

	// DryRun converts without writing files and skips uploads.
	DryRun bool

	httpClient *http.Client
	now        func() time.Time
}

// New creates an App from a validated configuration.
func New(cfg *config.Config, log *logrus.Logger) *App {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &App{
		cfg:        cfg,
		log:        log,
		scanner:    scanner.NewScanner(),
		httpClient: &http.Client{Timeout: cfg.Xray.Timeout},
		now:        time.Now,
	}
}

// Close releases idle connections of the authentication client.
func (a *App) Close() {
	a.httpClient.CloseIdleConnections()
}

// Config returns the active configuration.
func (a *App) Config() *config.Config { return a.cfg }

// ProjectKey returns the default project key for conversions.
func (a *App) ProjectKey() string { return a.cfg.Project.Key }

// SetProjectKey changes the default project key.
func (a *App) SetProjectKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.NewError(domain.PhaseConfig, "", "project key must not be empty", nil)
	}
	a.cfg.Project.Key = key
	a.log.Infof("Project key set to %s", key)
	return nil
}

// Separator returns the CSV separator.
func (a *App) Separator() string { return a.cfg.CSV.Separator }

// SetSeparator changes the CSV separator to "," or ";".
func (a *App) SetSeparator(sep string) error {
	sep = strings.TrimSpace(sep)
	if sep != "," && sep != ";" {
		return domain.NewErrorWithSuggestion(domain.PhaseConfig, "",
			"invalid separator "+sep,
			`use "," or ";"`,
			nil)
	}
	a.cfg.CSV.Separator = sep
	a.log.Infof("CSV separator set to %q", sep)
	return nil
}

// Token returns the current API token, empty before authentication.
func (a *App) Token() string { return a.token }

// Authenticate obtains a fresh API token with the configured credentials.
func (a *App) Authenticate(ctx context.Context) error {
	id, secret, authURL, err := a.cfg.Xray.Credentials()
	if err != nil {
		return err
	}
	token, err := xray.Authenticate(ctx, a.httpClient, xray.Credentials{
		ClientID:     id,
		ClientSecret: secret,
		AuthURL:      authURL,
	})
	if err != nil {
		return err
	}
	a.token = token
	if exp, ok := xray.TokenExpiry(token); ok {
		a.log.Infof("Token obtained, valid until %s", exp.Local().Format(time.RFC1123))
	} else {
		a.log.Infof("Token obtained")
	}
	return nil
}

// ensureToken authenticates when there is no token or it has expired.
func (a *App) ensureToken(ctx context.Context) error {
	if a.token != "" && !xray.TokenExpired(a.token, a.now(), tokenSkew) {
		return nil
	}
	if a.token != "" {
		a.log.Infof("Token expired, requesting a new one")
	}
	return a.Authenticate(ctx)
}

func (a *App) newGenerator() *generator.DefaultGenerator {
	gen := generator.NewGenerator(
		a.scanner,
		source.NewDefaultRegistry(a.cfg.CSV.SeparatorRune()),
		converter.NewConverter(),
		a.log,
	)
	gen.DryRun = a.DryRun
	return gen
}

func (a *App) newClient() *xray.Client {
	up := a.cfg.Upload
	return xray.NewClient(xray.Options{
		Token:    a.token,
		Endpoint: a.cfg.Xray.ImportURL,
		Timeout:  a.cfg.Xray.Timeout,
		Policy: xray.RetryPolicy{
			Retries:   up.Retries,
			BaseDelay: up.BaseDelay,
			Backoff:   up.Backoff,
			Cooldown:  up.Cooldown,
		},
		Parallel: up.Mode == config.ModeParallel,
		Workers:  up.Workers,
		Log:      a.log,
	})
}

// JSONPath returns where the document converted from src is written.
func (a *App) JSONPath(src string) string {
	return filepath.Join(a.cfg.Paths.JSONDir(), scanner.Stem(src)+".json")
}

// ConvertFile converts one source file into a JSON document in the JSON
// directory and returns the document path.
func (a *App) ConvertFile(src string) (string, error) {
	dst := a.JSONPath(src)
	if _, err := a.newGenerator().GenerateFile(src, dst, a.cfg.Project.Key); err != nil {
		return "", err
	}
	return dst, nil
}

// ConvertAll converts every source with one of exts in the CSV directory.
// Only CSV files are converted when exts is empty.
func (a *App) ConvertAll(exts ...string) (domain.BatchResult, error) {
	if len(exts) == 0 {
		exts = []string{".csv"}
	}
	return a.newGenerator().GenerateDirectory(a.cfg.Paths.CSVDir(), a.cfg.Paths.JSONDir(), a.cfg.Project.Key, exts...)
}

// ExcelFile exports a workbook to CSV in the CSV directory and returns the
// CSV path.
func (a *App) ExcelFile(src string) (string, error) {
	dst := filepath.Join(a.cfg.Paths.CSVDir(), scanner.Stem(src)+".csv")
	if err := a.newGenerator().ExportCSV(src, dst, a.cfg.CSV.SeparatorRune()); err != nil {
		return "", err
	}
	return dst, nil
}

// ExcelAll exports every workbook of the Excel directory to CSV.
func (a *App) ExcelAll() (domain.BatchResult, error) {
	return a.newGenerator().ExportDirectory(a.cfg.Paths.ExcelDir(), a.cfg.Paths.CSVDir(), a.cfg.CSV.SeparatorRune())
}

// Send uploads a single document.
func (a *App) Send(ctx context.Context, path string) error {
	if a.DryRun {
		a.log.Infof("[DRY-RUN] Would upload %s", path)
		return nil
	}
	if err := a.ensureToken(ctx); err != nil {
		return err
	}
	c := a.newClient()
	defer c.Close()
	if err := c.Upload(ctx, path); err != nil {
		return err
	}
	a.log.Infof("Uploaded %s", path)
	return nil
}

// SendPaths uploads the given documents as one batch.
func (a *App) SendPaths(ctx context.Context, paths []string) (domain.BatchResult, error) {
	if a.DryRun {
		var result domain.BatchResult
		for _, p := range paths {
			a.log.Infof("[DRY-RUN] Would upload %s", p)
			result.AddSuccess(p)
		}
		return result, nil
	}
	if len(paths) == 0 {
		a.log.Warnf("No documents to upload")
		return domain.BatchResult{}, nil
	}
	if err := a.ensureToken(ctx); err != nil {
		return domain.BatchResult{}, err
	}
	c := a.newClient()
	defer c.Close()
	return c.UploadBatch(ctx, paths), nil
}

// SendAll uploads every document in the JSON directory.
func (a *App) SendAll(ctx context.Context) (domain.BatchResult, error) {
	paths, err := a.List(a.cfg.Paths.JSONDir(), ".json")
	if err != nil {
		return domain.BatchResult{}, err
	}
	return a.SendPaths(ctx, paths)
}

// SendByPrefix uploads the documents of the JSON directory whose names start
// with one of prefixes.
func (a *App) SendByPrefix(ctx context.Context, prefixes []string) (domain.BatchResult, error) {
	paths, err := a.List(a.cfg.Paths.JSONDir(), ".json")
	if err != nil {
		return domain.BatchResult{}, err
	}
	selected := scanner.SelectByPrefix(paths, prefixes)
	if len(selected) == 0 {
		return domain.BatchResult{}, domain.NewError(domain.PhaseIO, a.cfg.Paths.JSONDir(),
			"no documents match "+strings.Join(prefixes, ", "), nil)
	}
	return a.SendPaths(ctx, selected)
}

// CleanFile normalizes a document in place.
func (a *App) CleanFile(path string) error {
	if a.DryRun {
		a.log.Infof("[DRY-RUN] Would clean %s", path)
		return nil
	}
	docs, err := document.CleanFile(path)
	if err != nil {
		return err
	}
	a.log.Infof("Cleaned %d test(s) in %s", len(docs), path)
	return nil
}

// CleanAll normalizes every document in the JSON directory.
func (a *App) CleanAll() (domain.BatchResult, error) {
	if a.DryRun {
		paths, err := a.List(a.cfg.Paths.JSONDir(), ".json")
		var result domain.BatchResult
		for _, p := range paths {
			a.log.Infof("[DRY-RUN] Would clean %s", p)
			result.AddSuccess(p)
		}
		return result, err
	}
	return document.CleanDirectory(a.cfg.Paths.JSONDir())
}

// List returns the files of dir with one of exts, sorted by name.
func (a *App) List(dir string, exts ...string) ([]string, error) {
	return a.scanner.List(dir, exts...)
}

// WriteReport renders result to path as Markdown or HTML.
func (a *App) WriteReport(path, title string, result domain.BatchResult) error {
	engine, err := report.NewEngine()
	if err != nil {
		return err
	}
	if err := engine.Write(path, report.Report{Title: title, Generated: a.now(), Result: result}); err != nil {
		return err
	}
	a.log.Infof("Report written to %s", path)
	return nil
}

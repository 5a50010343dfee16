package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fjglira/xraysync/internal/app"
	"github.com/fjglira/xraysync/internal/config"
	"github.com/fjglira/xraysync/internal/shell"
)

var (
	cfgFile string
	envFile string
	verbose bool
	dryRun  bool
	log     = logrus.New()
	logFile io.Closer
)

// rootCmd is the base command for xraysync. Without a subcommand it starts
// the interactive menu.
var rootCmd = &cobra.Command{
	Use:   "xraysync",
	Short: "Convert test case sheets to Xray JSON and upload them",
	Long: `xraysync converts manual test cases kept in CSV, Excel or Markdown tables
into Xray bulk-import JSON documents and uploads them to Xray Cloud.

Credentials and paths come from a .env file (CLIENT_ID, CLIENT_SECRET,
AUTH_URL, PATH_FILES, ...) and an optional YAML or TOML config file.`,
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			_ = logFile.Close()
			logFile = nil
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return shell.New(a, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (.yaml or .toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with credentials and paths")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "convert but don't write files or upload")

	log.SetOutput(os.Stderr)
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(cfgFile, envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadApp loads the configuration, sets up logging and creates the App.
func loadApp() (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := setupLogging(cfg.Logging); err != nil {
		return nil, err
	}
	log.Debugf("Loaded config: paths=%+v upload=%+v", cfg.Paths, cfg.Upload)

	a := app.New(cfg, log)
	a.DryRun = dryRun
	return a, nil
}

func setupLogging(lc config.LoggingConfig) error {
	level, err := logrus.ParseLevel(lc.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	if verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if lc.File == "" {
		return nil
	}
	f, err := os.OpenFile(lc.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", lc.File, err)
	}
	logFile = f
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}

func joinArgs(args []string) string {
	return strings.Join(args, ", ")
}

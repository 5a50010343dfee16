package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/fjglira/xraysync/internal/domain"
)

// Validate checks the Config for required fields and valid values.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Paths.Base == "" {
		errs = append(errs, "paths.base must not be empty")
	}

	if cfg.CSV.Separator != "," && cfg.CSV.Separator != ";" {
		errs = append(errs, fmt.Sprintf("csv.separator must be \",\" or \";\" (got %q)", cfg.CSV.Separator))
	}

	if cfg.Xray.ImportURL == "" {
		errs = append(errs, "xray.import_url must not be empty")
	} else if u, err := url.Parse(cfg.Xray.ImportURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("xray.import_url must be an absolute URL (got %q)", cfg.Xray.ImportURL))
	}
	if cfg.Xray.Timeout < 0 {
		errs = append(errs, "xray.timeout must not be negative")
	}

	switch cfg.Upload.Mode {
	case ModeSequential, ModeParallel:
	default:
		errs = append(errs, fmt.Sprintf("upload.mode must be one of: sequential, parallel (got %q)", cfg.Upload.Mode))
	}
	if cfg.Upload.Workers < 1 {
		errs = append(errs, "upload.workers must be at least 1")
	}
	if cfg.Upload.Retries < 0 {
		errs = append(errs, "upload.retries must not be negative")
	}
	if cfg.Upload.BaseDelay < 0 || cfg.Upload.Cooldown < 0 {
		errs = append(errs, "upload.base_delay and upload.cooldown must not be negative")
	}
	if cfg.Upload.Backoff < 1 {
		errs = append(errs, "upload.backoff must be at least 1")
	}

	if cfg.Logging.Level != "" {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[cfg.Logging.Level] {
			errs = append(errs, fmt.Sprintf("logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level))
		}
	}

	if len(errs) > 0 {
		return domain.NewError(domain.PhaseConfig, "", fmt.Sprintf("validation failed: %s", strings.Join(errs, "; ")), nil)
	}

	return nil
}

package config

import "time"

// DefaultImportURL is the Xray Cloud bulk test import endpoint.
const DefaultImportURL = "https://xray.cloud.getxray.app/api/v1/import/test/bulk"

// Upload modes.
const (
	ModeSequential = "sequential"
	ModeParallel   = "parallel"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			Base: ".",
		},
		CSV: CSVConfig{
			Separator: ",",
		},
		Xray: XrayConfig{
			ImportURL: DefaultImportURL,
			Timeout:   60 * time.Second,
		},
		Upload: UploadConfig{
			Mode:      ModeSequential,
			Workers:   5,
			Retries:   3,
			BaseDelay: 5 * time.Second,
			Backoff:   2.0,
			Cooldown:  time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

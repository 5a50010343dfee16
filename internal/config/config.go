package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/fjglira/xraysync/internal/domain"
)

// Config is the top-level configuration struct.
type Config struct {
	Project ProjectConfig `yaml:"project" toml:"project"`
	Paths   PathsConfig   `yaml:"paths" toml:"paths"`
	CSV     CSVConfig     `yaml:"csv" toml:"csv"`
	Xray    XrayConfig    `yaml:"xray" toml:"xray"`
	Upload  UploadConfig  `yaml:"upload" toml:"upload"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

type ProjectConfig struct {
	Key string `yaml:"key" toml:"key"`
}

// PathsConfig holds the working directories. Empty sub-directories fall back to Base.
type PathsConfig struct {
	Base  string `yaml:"base" toml:"base"`
	Excel string `yaml:"excel" toml:"excel"`
	CSV   string `yaml:"csv" toml:"csv"`
	JSON  string `yaml:"json" toml:"json"`
}

type CSVConfig struct {
	Separator string `yaml:"separator" toml:"separator"`
}

type XrayConfig struct {
	AuthURL      string        `yaml:"auth_url" toml:"auth_url"`
	ImportURL    string        `yaml:"import_url" toml:"import_url"`
	ClientID     string        `yaml:"client_id" toml:"client_id"`
	ClientSecret string        `yaml:"client_secret" toml:"client_secret"`
	Timeout      time.Duration `yaml:"timeout" toml:"timeout"`
}

type UploadConfig struct {
	Mode      string        `yaml:"mode" toml:"mode"` // "sequential" or "parallel"
	Workers   int           `yaml:"workers" toml:"workers"`
	Retries   int           `yaml:"retries" toml:"retries"`
	BaseDelay time.Duration `yaml:"base_delay" toml:"base_delay"`
	Backoff   float64       `yaml:"backoff" toml:"backoff"`
	Cooldown  time.Duration `yaml:"cooldown" toml:"cooldown"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
	File  string `yaml:"file" toml:"file"`
}

// ExcelDir returns the directory holding Excel workbooks.
func (p PathsConfig) ExcelDir() string { return orBase(p.Excel, p.Base) }

// CSVDir returns the directory holding CSV sources.
func (p PathsConfig) CSVDir() string { return orBase(p.CSV, p.Base) }

// JSONDir returns the directory holding generated JSON documents.
func (p PathsConfig) JSONDir() string { return orBase(p.JSON, p.Base) }

func orBase(dir, base string) string {
	if dir == "" {
		return base
	}
	if filepath.IsAbs(dir) || base == "" {
		return dir
	}
	return filepath.Join(base, dir)
}

// SeparatorRune returns the configured CSV field separator.
func (c CSVConfig) SeparatorRune() rune {
	if c.Separator == ";" {
		return ';'
	}
	return ','
}

// Load reads a YAML or TOML configuration file and returns a Config.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewError(domain.PhaseConfig, path, "failed to read config file", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, domain.NewError(domain.PhaseConfig, path, "failed to parse config file", err)
	}

	return cfg, nil
}

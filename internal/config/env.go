package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/fjglira/xraysync/internal/domain"
)

// Environment variable names understood by ApplyEnv.
const (
	EnvClientID     = "CLIENT_ID"
	EnvClientSecret = "CLIENT_SECRET"
	EnvAuthURL      = "AUTH_URL"
	EnvImportURL    = "XRAY_IMPORT_URL"
	EnvPathFiles    = "PATH_FILES"
	EnvProjectKey   = "PROJECT_KEY"
	EnvSeparator    = "CSV_SEPARATOR"
)

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// ReadEnvFile parses a dotenv file without touching the process environment.
// A missing file yields an empty map.
func ReadEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, domain.NewError(domain.PhaseConfig, path, "failed to parse env file", err)
	}
	return vars, nil
}

// Layered returns a lookup that prefers the process environment and falls
// back to the given dotenv values.
func Layered(dotenv map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

// ApplyEnv overlays non-empty environment values onto cfg.
func ApplyEnv(cfg *Config, lookup LookupFunc) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvClientID, &cfg.Xray.ClientID)
	set(EnvClientSecret, &cfg.Xray.ClientSecret)
	set(EnvAuthURL, &cfg.Xray.AuthURL)
	set(EnvImportURL, &cfg.Xray.ImportURL)
	set(EnvPathFiles, &cfg.Paths.Base)
	set(EnvProjectKey, &cfg.Project.Key)
	set(EnvSeparator, &cfg.CSV.Separator)
}

// LoadWithEnv loads the config file then overlays the dotenv file and the
// process environment, in that order of increasing precedence.
func LoadWithEnv(path, envFile string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	vars, err := ReadEnvFile(envFile)
	if err != nil {
		return nil, err
	}
	ApplyEnv(cfg, Layered(vars))
	return cfg, nil
}

// Credentials returns the Xray client credentials or a config error naming
// the missing variables.
func (x XrayConfig) Credentials() (clientID, clientSecret, authURL string, err error) {
	var missing []string
	if x.ClientID == "" {
		missing = append(missing, EnvClientID)
	}
	if x.ClientSecret == "" {
		missing = append(missing, EnvClientSecret)
	}
	if x.AuthURL == "" {
		missing = append(missing, EnvAuthURL)
	}
	if len(missing) > 0 {
		return "", "", "", domain.NewErrorWithSuggestion(domain.PhaseConfig, "",
			"missing "+strings.Join(missing, ", "),
			"define them in the .env file or the environment",
			nil)
	}
	return x.ClientID, x.ClientSecret, x.AuthURL, nil
}

// Package config loads the configuration of the idx tool.
//
// Values come, by increasing priority, from the defaults, an optional YAML file, and INDICES_*
// environment variables. A .env file in the working directory is loaded into the environment
// first.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/indices"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backends of the ledgers.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config is the configuration of the ledgers and sources.
type Config struct {
	// LedgerDir holds the JSON ledgers.
	LedgerDir string `yaml:"ledger_dir"`
	// Backend is "json" or "sqlite".
	Backend string `yaml:"backend"`
	// SQLitePath is the database of the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`
	// Files overrides the ledger file name of an index.
	Files map[string]string `yaml:"files"`

	// ManualDir holds the CSV series maintained by hand.
	ManualDir string `yaml:"manual_dir"`

	BCB   BCB   `yaml:"bcb"`
	Retry Retry `yaml:"retry"`

	// ExportDir receives the BI files.
	ExportDir string `yaml:"export_dir"`

	// GeminiAPIKey enables the assistant. It is usually set in the environment.
	GeminiAPIKey string `yaml:"-"`
}

// BCB configures the Banco Central source.
type BCB struct {
	BaseURL string `yaml:"base_url"`
	Cache   bool   `yaml:"cache"`
	// CacheDir defaults to the system temporary directory.
	CacheDir string `yaml:"cache_dir"`
}

// Retry configures the retry policy of the engines.
type Retry struct {
	Attempts int           `yaml:"attempts"`
	Delay    time.Duration `yaml:"delay"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		LedgerDir:  "db",
		Backend:    BackendJSON,
		SQLitePath: filepath.Join("db", "indices.db"),
		ManualDir:  "manual",
		BCB:        BCB{BaseURL: "https://api.bcb.gov.br/dados/serie", Cache: true},
		Retry:      Retry{Attempts: indices.DefaultRetry.Attempts, Delay: indices.DefaultRetry.Delay},
		ExportDir:  "bi",
	}
}

// Load reads .env, the YAML file at path if it exists, and the environment.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("invalid config file %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// applyEnv overrides cfg with the INDICES_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	str("INDICES_LEDGER_DIR", &c.LedgerDir)
	str("INDICES_BACKEND", &c.Backend)
	str("INDICES_SQLITE_PATH", &c.SQLitePath)
	str("INDICES_MANUAL_DIR", &c.ManualDir)
	str("INDICES_EXPORT_DIR", &c.ExportDir)
	str("INDICES_BCB_URL", &c.BCB.BaseURL)
	str("INDICES_BCB_CACHE_DIR", &c.BCB.CacheDir)
	str("GEMINI_API_KEY", &c.GeminiAPIKey)

	var errs error
	if v, ok := lookup("INDICES_BCB_CACHE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		errs = errors.Join(errs, wrapEnv("INDICES_BCB_CACHE", err))
		c.BCB.Cache = b
	}
	if v, ok := lookup("INDICES_RETRY_ATTEMPTS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		errs = errors.Join(errs, wrapEnv("INDICES_RETRY_ATTEMPTS", err))
		c.Retry.Attempts = n
	}
	if v, ok := lookup("INDICES_RETRY_DELAY"); ok && v != "" {
		d, err := time.ParseDuration(v)
		errs = errors.Join(errs, wrapEnv("INDICES_RETRY_DELAY", err))
		c.Retry.Delay = d
	}
	return errs
}

func wrapEnv(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("invalid %s: %w", name, err)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []string
	if c.Backend != BackendJSON && c.Backend != BackendSQLite {
		errs = append(errs, fmt.Sprintf("invalid backend %q: must be %q or %q", c.Backend, BackendJSON, BackendSQLite))
	}
	if c.Retry.Attempts < 1 {
		errs = append(errs, fmt.Sprintf("invalid retry attempts %d: must be at least 1", c.Retry.Attempts))
	}
	if c.Retry.Delay < 0 {
		errs = append(errs, fmt.Sprintf("invalid retry delay %v: must not be negative", c.Retry.Delay))
	}
	if c.Backend == BackendJSON && c.LedgerDir == "" {
		errs = append(errs, "ledger_dir is required by the json backend")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// RetryPolicy returns the retry policy of the engines.
func (c *Config) RetryPolicy() indices.Retry {
	return indices.Retry{Attempts: c.Retry.Attempts, Delay: c.Retry.Delay}
}

// LedgerFile returns the path of the JSON ledger of an index.
func (c *Config) LedgerFile(id string) (string, error) {
	name, ok := c.Files[id]
	if !ok {
		name, ok = indices.DefaultFiles[id]
	}
	if !ok {
		return "", fmt.Errorf("no ledger file for index %q", id)
	}
	return filepath.Join(c.LedgerDir, name), nil
}

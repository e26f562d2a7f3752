package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"

	DefaultAPIBaseURL     = "http://localhost:8000"
	DefaultRequestTimeout = 30 * time.Second
)

type Config struct {
	DataDir             string
	DBPath              string
	StatePath           string
	LogPath             string
	APIBaseURL          string
	StorageBackend      string
	LogoutClearsSession bool
	RequestTimeout      time.Duration
	LogLevel            string
}

// fileConfig mirrors <data>/config.yaml. Every field is optional.
type fileConfig struct {
	APIBaseURL          string `yaml:"api_base_url"`
	StorageBackend      string `yaml:"storage_backend"`
	LogoutClearsSession *bool  `yaml:"logout_clears_session"`
	RequestTimeout      string `yaml:"request_timeout"`
	LogLevel            string `yaml:"log_level"`
}

// New resolves configuration from defaults, then <dataDir>/config.yaml, then
// HAIRLY_* environment variables.
func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Config{
		DataDir:        dataDir,
		DBPath:         filepath.Join(dataDir, "hairly.db"),
		StatePath:      filepath.Join(dataDir, "state.json"),
		LogPath:        filepath.Join(dataDir, "hairly.log"),
		APIBaseURL:     DefaultAPIBaseURL,
		StorageBackend: BackendSQLite,
		RequestTimeout: DefaultRequestTimeout,
		LogLevel:       "info",
	}
	if err := cfg.applyFile(filepath.Join(dataDir, "config.yaml")); err != nil {
		return Config{}, err
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StorageBackend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return fmt.Errorf("unsupported storage backend %q", c.StorageBackend)
	}
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api base url is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	fc := fileConfig{}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if fc.APIBaseURL != "" {
		c.APIBaseURL = fc.APIBaseURL
	}
	if fc.StorageBackend != "" {
		c.StorageBackend = strings.ToLower(fc.StorageBackend)
	}
	if fc.LogoutClearsSession != nil {
		c.LogoutClearsSession = *fc.LogoutClearsSession
	}
	if fc.RequestTimeout != "" {
		d, err := time.ParseDuration(fc.RequestTimeout)
		if err != nil {
			return fmt.Errorf("parse request_timeout: %w", err)
		}
		c.RequestTimeout = d
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HAIRLY_API_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("HAIRLY_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("HAIRLY_STORAGE"); v != "" {
		c.StorageBackend = strings.ToLower(v)
	}
}

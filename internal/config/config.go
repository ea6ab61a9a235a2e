// Package config handles reading and writing .orchestra/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for .orchestra/config.yaml.
type Config struct {
	Version int           `yaml:"version"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Assets  AssetsConfig  `yaml:"assets"`
	Catalog CatalogConfig `yaml:"catalog"`
	Refiner RefinerConfig `yaml:"refiner"`
	Cleanup CleanupConfig `yaml:"cleanup"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StorageConfig selects the SQLite driver and database location.
type StorageConfig struct {
	Driver string `yaml:"driver"` // "sqlite3" (cgo) | "sqlite" (pure Go)
	Path   string `yaml:"path"`   // relative paths resolve against the data dir
}

// AssetsConfig is the root every generated or exported file lives under.
type AssetsConfig struct {
	Dir string `yaml:"dir"`
}

// CatalogConfig points at an alternative question catalog. Empty uses the embedded one.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// RefinerConfig configures the text refinement collaborator.
type RefinerConfig struct {
	Provider       string `yaml:"provider"` // "claude" | "openai" | "static"
	Model          string `yaml:"model"`
	CLIPath        string `yaml:"cli_path"`
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
}

// CleanupConfig holds the retention policy for generated assets.
type CleanupConfig struct {
	MaxAgeDays int `yaml:"max_age_days"`
}

const configDir = ".orchestra"
const configFile = "config.yaml"

// Dir returns the data directory (.orchestra/) for a project root.
func Dir(root string) string {
	return filepath.Join(root, configDir)
}

// ReadConfig reads .orchestra/config.yaml from the given root directory.
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Start from defaults so older files without newer sections still load.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// WriteConfig writes cfg to .orchestra/config.yaml in the given root directory.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Addr: "127.0.0.1:3000",
		},
		Storage: StorageConfig{
			Driver: "sqlite3",
			Path:   "orchestra.db",
		},
		Assets: AssetsConfig{
			Dir: "generated",
		},
		Refiner: RefinerConfig{
			Provider:       "claude",
			Model:          "sonnet",
			CLIPath:        "claude",
			BaseURL:        "https://api.openai.com/v1",
			APIKeyEnv:      "OPENAI_API_KEY",
			TimeoutSeconds: 60,
			MaxRetries:     2,
		},
		Cleanup: CleanupConfig{
			MaxAgeDays: 30,
		},
	}
}

// Validate reports configuration values the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite3", "sqlite":
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Refiner.Provider {
	case "claude", "openai", "static":
	default:
		return fmt.Errorf("config: unknown refiner provider %q", c.Refiner.Provider)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("config: storage.path is required")
	}
	if c.Assets.Dir == "" {
		return fmt.Errorf("config: assets.dir is required")
	}
	if c.Refiner.TimeoutSeconds < 0 || c.Refiner.MaxRetries < 0 {
		return fmt.Errorf("config: refiner timeout and retries must be non-negative")
	}
	return nil
}

// RefinerTimeout returns the per-call deadline for the refiner.
func (c *Config) RefinerTimeout() time.Duration {
	if c.Refiner.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Refiner.TimeoutSeconds) * time.Second
}

// Resolve makes a configured path absolute relative to the data directory of root.
func Resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(Dir(root), p)
}

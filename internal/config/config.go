// ABOUTME: Configuration loading and parsing for dayboard
// ABOUTME: Supports YAML files with environment variable expansion and injected storage paths

package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents the complete dayboard configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Storage   StorageConfig   `yaml:"storage"`
	Workout   WorkoutConfig   `yaml:"workout"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Hostname  string `yaml:"hostname"`
	AuthKey   string `yaml:"auth_key"`
	StateDir  string `yaml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral"`
	Funnel    bool   `yaml:"funnel"` // Enable public Funnel (implies HTTPS)
}

// StorageConfig holds every filesystem path the storage layers touch.
// Paths are injected here so the same reconciler can run against a temp
// dir in tests and the real disk in production.
type StorageConfig struct {
	// DataDir holds the day's briefing documents (briefing-YYYY-MM-DD.json).
	DataDir string `yaml:"data_dir"`
	// CacheDir holds the ephemeral per-feature override documents.
	CacheDir string `yaml:"cache_dir"`
	// SourcePath is the durable briefing source document. Usually only
	// resolvable on the developer workstation; empty disables the layer.
	SourcePath string `yaml:"source_path"`
	// NotesPath is the external notes file the saves module appends to.
	NotesPath string `yaml:"notes_path"`
	// ArchivePath is the sqlite briefing archive database.
	ArchivePath string `yaml:"archive_path"`
}

// WorkoutConfig holds workout cycle configuration
type WorkoutConfig struct {
	// CyclePath points at a TOML cycle definition file; empty uses the
	// default push/pull/legs rotation.
	CyclePath string `yaml:"cycle_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// An HTTP address is required unless Tailscale provides the listener
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	// Tailscale requires a hostname
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir is required")
	}
	if c.Storage.CacheDir == "" {
		return fmt.Errorf("storage.cache_dir is required")
	}

	return nil
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// searchPaths returns the ordered list of config file locations to try.
func searchPaths() []string {
	var paths []string

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "chime", "chime.yaml"))
	}

	paths = append(paths, filepath.Join(".claude", "chime.yaml"))

	if envPath := os.Getenv("CHIME_CONFIG"); envPath != "" {
		paths = append(paths, envPath)
	}

	return paths
}

// Load reads configuration from YAML files and environment variables.
// Files are loaded in order (each overrides the previous):
// ~/.config/chime/chime.yaml < ./.claude/chime.yaml < $CHIME_CONFIG
func Load() (*Config, error) {
	cfg := Defaults()

	for _, path := range searchPaths() {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	cfg := Defaults()

	if err := loadFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables have higher priority than YAML config values. The
// environment is read exactly once here; senders receive credentials through
// the config struct, never from ambient process state.
func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("PUSHOVER_TOKEN"); token != "" {
		cfg.Pushover.Token = token
	}
	if user := os.Getenv("PUSHOVER_USER"); user != "" {
		cfg.Pushover.User = user
	}
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted config search paths
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	slog.Debug("loading config file", "path", path)

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

func validate(cfg *Config) error {
	if cfg.Pushover.Endpoint == "" {
		return fmt.Errorf("pushover.endpoint must not be empty")
	}

	if cfg.Pushover.Timeout <= 0 {
		return fmt.Errorf("pushover.timeout must be positive, got %s", cfg.Pushover.Timeout)
	}

	if cfg.Dispatch.ChannelTimeout <= 0 {
		return fmt.Errorf("dispatch.channel_timeout must be positive, got %s", cfg.Dispatch.ChannelTimeout)
	}

	if cfg.Summary.MaxLength < 1 {
		return fmt.Errorf("summary.max_length must be at least 1")
	}

	if cfg.Cache.Dir == "" {
		return fmt.Errorf("cache.dir must not be empty")
	}

	cfg.Log.File = ExpandHome(cfg.Log.File)
	cfg.History.Path = ExpandHome(cfg.History.Path)

	return nil
}

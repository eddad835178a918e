package config

import "time"

// Config is the root configuration for Chime.
type Config struct {
	Pushover PushoverConfig `yaml:"pushover"`
	Desktop  DesktopConfig  `yaml:"desktop"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Summary  SummaryConfig  `yaml:"summary"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
	History  HistoryConfig  `yaml:"history"`
	Filters  FiltersConfig  `yaml:"filters"`
}

type PushoverConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Token    string        `yaml:"token"`
	User     string        `yaml:"user"`
	Timeout  time.Duration `yaml:"timeout"`
}

type DesktopConfig struct {
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
}

type DispatchConfig struct {
	// ChannelTimeout is the per-channel ceiling enforced by the dispatcher,
	// independent of each sender's own shorter timeout.
	ChannelTimeout time.Duration `yaml:"channel_timeout"`
}

type SummaryConfig struct {
	Enabled    bool          `yaml:"enabled"`
	ClaudePath string        `yaml:"claude_path"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxLength  int           `yaml:"max_length"`
}

type CacheConfig struct {
	// Dir is the session cache directory, relative to the project working
	// directory when not absolute.
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	File          string `yaml:"file"`
	Level         string `yaml:"level"`
	RetentionDays int    `yaml:"retention_days"`
	MaxSizeBytes  int64  `yaml:"max_size_bytes"`
}

type HistoryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

type FiltersConfig struct {
	// IgnoredTypes lists notification_type values that never produce a
	// notification. The upstream enumeration of passive types is not
	// exhaustive, so the list stays configurable.
	IgnoredTypes []string `yaml:"ignored_types"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Pushover: PushoverConfig{
			Endpoint: "https://api.pushover.net/1/messages.json",
			Timeout:  10 * time.Second,
		},
		Desktop: DesktopConfig{
			Enabled: true,
			Timeout: 5 * time.Second,
		},
		Dispatch: DispatchConfig{
			ChannelTimeout: 15 * time.Second,
		},
		Summary: SummaryConfig{
			Enabled:    true,
			ClaudePath: "claude",
			Timeout:    30 * time.Second,
			MaxLength:  200,
		},
		Cache: CacheConfig{
			Dir: ".claude/cache",
		},
		Log: LogConfig{
			File:          "~/.config/chime/logs/chime.log",
			Level:         "info",
			RetentionDays: 3,
			MaxSizeBytes:  5 * 1024 * 1024,
		},
		History: HistoryConfig{
			Enabled:       true,
			Path:          "~/.config/chime/chime.db",
			RetentionDays: 90,
		},
		Filters: FiltersConfig{
			IgnoredTypes: []string{"idle_prompt"},
		},
	}
}

// Ignored reports whether a notification type is suppressed by configuration.
func (f FiltersConfig) Ignored(notificationType string) bool {
	for _, t := range f.IgnoredTypes {
		if t == notificationType {
			return true
		}
	}
	return false
}

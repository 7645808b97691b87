// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// knownFormats are the audio formats accepted for extraction, mapped to the
// container extension each produces on disk.
var knownFormats = map[string]string{
	"vorbis": "ogg",
	"wav":    "wav",
	"mp3":    "mp3",
	"flac":   "flac",
	"opus":   "opus",
	"m4a":    "m4a",
}

// Config represents the application configuration
type Config struct {
	RootPath           string   `env:"ROOT_PATH,required"`
	Labels             []string `env:"LABELS" envSeparator:","`
	WorkerCount        int      `env:"WORKER_COUNT" envDefault:"1"`
	DownloadType       string   `env:"DOWNLOAD_TYPE" envDefault:"unbalanced_train"`
	CopyAndReplicate   bool     `env:"COPY_AND_REPLICATE" envDefault:"true"`
	CookieFile         string   `env:"COOKIE_FILE"`
	CookiesFromBrowser bool     `env:"COOKIES_FROM_BROWSER" envDefault:"false"`
	MaxRetries         int      `env:"MAX_RETRIES" envDefault:"5"`
	RetryDelaySeconds  int      `env:"RETRY_DELAY_SECONDS" envDefault:"5"`
	StartIndex         int      `env:"START_INDEX" envDefault:"-1"`
	EndIndex           int      `env:"END_INDEX" envDefault:"-1"`
	AudioFormat        string   `env:"AUDIO_FORMAT" envDefault:"vorbis"`
	AudioQuality       int      `env:"AUDIO_QUALITY" envDefault:"5"`
	FFprobePath        string   `env:"FFPROBE_PATH"`
	HistoryDBPath      string   `env:"HISTORY_DB_PATH" envDefault:"history.db"`
	LogLevel           string   `env:"LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.RootPath == "" {
		return fmt.Errorf("ROOT_PATH cannot be empty")
	}
	c.RootPath = filepath.Clean(c.RootPath)

	// Validate log level
	validLogLevels := []string{"debug", "info", "warn", "error"}
	logLevel := strings.ToLower(c.LogLevel)
	isValidLevel := false
	for _, level := range validLogLevels {
		if logLevel == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("invalid log level %q, must be one of: %v", c.LogLevel, validLogLevels)
	}

	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1, got %d", c.WorkerCount)
	}

	if c.MaxRetries < 1 {
		return fmt.Errorf("MAX_RETRIES must be at least 1, got %d", c.MaxRetries)
	}

	if c.RetryDelaySeconds < 0 {
		return fmt.Errorf("RETRY_DELAY_SECONDS cannot be negative, got %d", c.RetryDelaySeconds)
	}

	if _, ok := knownFormats[c.AudioFormat]; !ok {
		return fmt.Errorf("invalid audio format %q, must be one of: %v", c.AudioFormat, FormatNames())
	}

	if c.AudioQuality < 0 || c.AudioQuality > 10 {
		return fmt.Errorf("AUDIO_QUALITY must be between 0 and 10, got %d", c.AudioQuality)
	}

	// Slice bounds: -1 means unset, otherwise [start, end) with end exclusive
	if c.StartIndex < -1 {
		return fmt.Errorf("START_INDEX must be -1 (unset) or non-negative, got %d", c.StartIndex)
	}
	if c.EndIndex < -1 {
		return fmt.Errorf("END_INDEX must be -1 (unset) or non-negative, got %d", c.EndIndex)
	}
	if c.StartIndex >= 0 && c.EndIndex >= 0 && c.EndIndex < c.StartIndex {
		return fmt.Errorf("END_INDEX (%d) cannot be before START_INDEX (%d)", c.EndIndex, c.StartIndex)
	}

	return nil
}

// Extension returns the container extension for the configured audio format
func (c *Config) Extension() string {
	return ExtensionFor(c.AudioFormat)
}

// HasCookieConflict reports whether both cookie sources are configured.
// The cookie file takes precedence; callers surface a warning.
func (c *Config) HasCookieConflict() bool {
	return c.CookieFile != "" && c.CookiesFromBrowser
}

// ExtensionFor maps an audio format to its container extension. Unknown
// formats map to themselves.
func ExtensionFor(format string) string {
	if ext, ok := knownFormats[format]; ok {
		return ext
	}
	return format
}

// FormatNames returns the supported audio format names in sorted order
func FormatNames() []string {
	names := make([]string, 0, len(knownFormats))
	for name := range knownFormats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents logfilter CLI configuration options
type Config struct {
	// Pipelined reads and matches on separate goroutines
	Pipelined bool `yaml:"pipelined"`

	// Decompress reads zstd and LZ4 compressed inputs transparently
	Decompress bool `yaml:"decompress"`

	// MaxLineLength caps a single line in bytes (0 = unlimited)
	MaxLineLength int `yaml:"max_line_length"`

	// MemoryLimit caps line buffers and in-flight lines in bytes (0 = unlimited)
	MemoryLimit int64 `yaml:"memory_limit"`

	// IORate throttles reads in bytes per second (0 = unlimited)
	IORate int64 `yaml:"io_rate"`

	// ChunkSize overrides the mapping window (0 = allocation granularity)
	ChunkSize int `yaml:"chunk_size"`

	// QueueCapacity is the number of in-flight lines when pipelined
	QueueCapacity int `yaml:"queue_capacity"`

	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the log encoding (text, json)
	LogFormat string `yaml:"log_format"`

	// Color controls colored output (auto, always, never)
	Color string `yaml:"color"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Pipelined:     false,
		Decompress:    true,
		MaxLineLength: 0, // Unlimited
		MemoryLimit:   0, // Unlimited
		IORate:        0, // Unlimited
		ChunkSize:     0,
		QueueCapacity: 100,
		LogLevel:      "warn",
		LogFormat:     "text",
		Color:         "auto",
	}
}

// LoadConfig loads configuration from the specified file path
// If path is empty or the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Detect which keys were present so explicit false and zero values win
	var rawMap map[string]any
	if err := yaml.Unmarshal(data, &rawMap); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	has := func(key string) bool {
		_, ok := rawMap[key]
		return ok
	}

	if has("pipelined") {
		cfg.Pipelined = fileCfg.Pipelined
	}
	if has("decompress") {
		cfg.Decompress = fileCfg.Decompress
	}
	if has("max_line_length") {
		cfg.MaxLineLength = fileCfg.MaxLineLength
	}
	if has("memory_limit") {
		cfg.MemoryLimit = fileCfg.MemoryLimit
	}
	if has("io_rate") {
		cfg.IORate = fileCfg.IORate
	}
	if has("chunk_size") {
		cfg.ChunkSize = fileCfg.ChunkSize
	}
	if has("queue_capacity") {
		cfg.QueueCapacity = fileCfg.QueueCapacity
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogFormat != "" {
		cfg.LogFormat = fileCfg.LogFormat
	}
	if fileCfg.Color != "" {
		cfg.Color = fileCfg.Color
	}

	return cfg, nil
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(pipelined *bool, maxLineLength *int, ioRate *int64, logLevel *string, color *string) {
	if pipelined != nil {
		c.Pipelined = *pipelined
	}
	if maxLineLength != nil {
		c.MaxLineLength = *maxLineLength
	}
	if ioRate != nil {
		c.IORate = *ioRate
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if color != nil {
		c.Color = *color
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.MaxLineLength < 0 {
		return fmt.Errorf("max_line_length must be >= 0, got %d", c.MaxLineLength)
	}
	if c.MemoryLimit < 0 {
		return fmt.Errorf("memory_limit must be >= 0, got %d", c.MemoryLimit)
	}
	if c.IORate < 0 {
		return fmt.Errorf("io_rate must be >= 0, got %d", c.IORate)
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk_size must be >= 0, got %d", c.ChunkSize)
	}
	if c.QueueCapacity < 0 {
		return fmt.Errorf("queue_capacity must be >= 0, got %d", c.QueueCapacity)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q, must be one of: text, json", c.LogFormat)
	}

	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color %q, must be one of: auto, always, never", c.Color)
	}

	return nil
}

// SlogLevel converts LogLevel to a slog.Level
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}
}

package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Storage     StorageConfig    `toml:"storage"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Conversion  ConversionConfig `toml:"conversion"`
	Logging     LoggingConfig    `toml:"logging"`
}

// StorageConfig contains local filesystem layout for pipeline output
type StorageConfig struct {
	DataDir    string `toml:"data_dir" validate:"required"`    // Base data directory
	UploadsDir string `toml:"uploads_dir" validate:"required"` // Incoming PDF documents
	ReportsDir string `toml:"reports_dir" validate:"required"` // Converted report output (one subdir per document)
}

// GeminiConfig contains settings for the Gemini conversion backend
type GeminiConfig struct {
	APIKey      string  `toml:"api_key" validate:"required"`
	Model       string  `toml:"model"`       // Model for document conversion
	Timeout     string  `toml:"timeout"`     // e.g., "5m" - per remote call timeout
	Temperature float32 `toml:"temperature"` // Generation temperature
}

// ConversionConfig contains retry behavior for the remote conversion calls
type ConversionConfig struct {
	MaxAttempts    int    `toml:"max_attempts" validate:"min=1"` // Attempts per remote call (default: 3)
	InitialBackoff string `toml:"initial_backoff"`               // e.g., "2s"
	MaxBackoff     string `toml:"max_backoff"`                   // e.g., "10s"
}

// LoggingConfig mirrors the arbor writer configuration
type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig returns a Config populated with defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			DataDir:    "data",
			UploadsDir: "data/uploads",
			ReportsDir: "data/reports",
		},
		Gemini: GeminiConfig{
			APIKey:      "", // User must provide API key (no fallback)
			Model:       "gemini-2.0-flash",
			Timeout:     "5m",
			Temperature: 0.1,
		},
		Conversion: ConversionConfig{
			MaxAttempts:    3,
			InitialBackoff: "2s",
			MaxBackoff:     "10s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks required fields and duration formats
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for name, value := range map[string]string{
		"gemini.timeout":             c.Gemini.Timeout,
		"conversion.initial_backoff": c.Conversion.InitialBackoff,
		"conversion.max_backoff":     c.Conversion.MaxBackoff,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TRANSCRIBO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Storage configuration
	if dir := os.Getenv("TRANSCRIBO_DATA_DIR"); dir != "" {
		config.Storage.DataDir = dir
	}
	if dir := os.Getenv("TRANSCRIBO_UPLOADS_DIR"); dir != "" {
		config.Storage.UploadsDir = dir
	}
	if dir := os.Getenv("TRANSCRIBO_REPORTS_DIR"); dir != "" {
		config.Storage.ReportsDir = dir
	}

	// Gemini configuration
	if key := os.Getenv("TRANSCRIBO_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if model := os.Getenv("TRANSCRIBO_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if timeout := os.Getenv("TRANSCRIBO_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}

	// Conversion retry configuration
	if attempts := os.Getenv("TRANSCRIBO_CONVERSION_MAX_ATTEMPTS"); attempts != "" {
		if a, err := strconv.Atoi(attempts); err == nil {
			config.Conversion.MaxAttempts = a
		}
	}

	// Logging configuration
	if level := os.Getenv("TRANSCRIBO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("TRANSCRIBO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// EnsureDirectories creates the configured data directories if absent
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Storage.DataDir, c.Storage.UploadsDir, c.Storage.ReportsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Package config provides CLI configuration management for the lingomeet
// command-line tool. It supports loading configuration from a YAML file and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lingomeet/lingomeet/pkg/meeting"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Summarizer backends.
const (
	SummarizerLocal  = "local"
	SummarizerOpenAI = "openai"
)

// Default configuration values.
const (
	DefaultConfigDir    = ".lingomeet"
	DefaultConfigFile   = "config.yaml"
	DefaultOutputFormat = OutputFormatText
	DefaultTimeout      = 30 * time.Second
)

// RedisConfig holds the realtime room backend connection settings.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string `yaml:"addr,omitempty"`

	// Password authenticates against the server when set.
	Password string `yaml:"password,omitempty"`

	// DB selects the Redis logical database.
	DB int `yaml:"db,omitempty"`
}

// IsConfigured reports whether a realtime backend is configured.
func (c *RedisConfig) IsConfigured() bool {
	return c != nil && c.Addr != ""
}

// DatabaseConfig holds PostgreSQL settings for durable meeting storage.
// When unset, meetings live in memory for the duration of the process.
type DatabaseConfig struct {
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Database string `yaml:"database,omitempty"`
	User     string `yaml:"user,omitempty"`
	SSLMode  string `yaml:"sslmode,omitempty"`
}

// IsConfigured reports whether durable storage is configured.
func (c *DatabaseConfig) IsConfigured() bool {
	return c != nil && c.Host != "" && c.Database != "" && c.User != ""
}

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// SourceLanguage is the default language spoken in meetings.
	SourceLanguage meeting.Language `yaml:"source_language"`

	// TargetLanguage is the default translation target.
	TargetLanguage meeting.Language `yaml:"target_language"`

	// DisplayName is shown to other participants in shared meetings.
	DisplayName string `yaml:"display_name,omitempty"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// Timeout is the default timeout for remote calls.
	Timeout time.Duration `yaml:"timeout"`

	// Summarizer selects the summary backend: local or openai.
	Summarizer string `yaml:"summarizer,omitempty"`

	// OpenAIModel overrides the model used by the openai summarizer.
	OpenAIModel string `yaml:"openai_model,omitempty"`

	// MyMemoryEmail raises the translation quota when set.
	MyMemoryEmail string `yaml:"mymemory_email,omitempty"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`

	// Redis holds the realtime room backend settings.
	Redis *RedisConfig `yaml:"redis,omitempty"`

	// Database holds durable storage settings.
	Database *DatabaseConfig `yaml:"database,omitempty"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		SourceLanguage: meeting.LanguageKorean,
		TargetLanguage: meeting.LanguageEnglish,
		OutputFormat:   DefaultOutputFormat,
		Timeout:        DefaultTimeout,
		Summarizer:     SummarizerLocal,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $LINGOMEET_CONFIG_DIR if set, otherwise ~/.lingomeet
func ConfigDir() (string, error) {
	if dir := os.Getenv("LINGOMEET_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the CLI configuration. Sources are applied in order, later
// overriding earlier:
//  1. Default values
//  2. Config file (~/.lingomeet/config.yaml or $LINGOMEET_CONFIG_DIR/config.yaml)
//  3. Environment variables (LINGOMEET_SOURCE_LANGUAGE, LINGOMEET_TARGET_LANGUAGE, ...)
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}
	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// A temp struct so the duration can be written as a string.
	type configFile struct {
		SourceLanguage meeting.Language `yaml:"source_language"`
		TargetLanguage meeting.Language `yaml:"target_language"`
		DisplayName    string           `yaml:"display_name"`
		OutputFormat   OutputFormat     `yaml:"output_format"`
		Timeout        string           `yaml:"timeout"`
		Summarizer     string           `yaml:"summarizer"`
		OpenAIModel    string           `yaml:"openai_model"`
		MyMemoryEmail  string           `yaml:"mymemory_email"`
		Debug          bool             `yaml:"debug"`
		Redis          *RedisConfig     `yaml:"redis"`
		Database       *DatabaseConfig  `yaml:"database"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.SourceLanguage != "" {
		cfg.SourceLanguage = fileCfg.SourceLanguage
	}
	if fileCfg.TargetLanguage != "" {
		cfg.TargetLanguage = fileCfg.TargetLanguage
	}
	if fileCfg.DisplayName != "" {
		cfg.DisplayName = fileCfg.DisplayName
	}
	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	if fileCfg.Timeout != "" {
		timeout, err := time.ParseDuration(fileCfg.Timeout)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	if fileCfg.Summarizer != "" {
		cfg.Summarizer = fileCfg.Summarizer
	}
	if fileCfg.OpenAIModel != "" {
		cfg.OpenAIModel = fileCfg.OpenAIModel
	}
	if fileCfg.MyMemoryEmail != "" {
		cfg.MyMemoryEmail = fileCfg.MyMemoryEmail
	}
	if fileCfg.Debug {
		cfg.Debug = true
	}
	if fileCfg.Redis != nil {
		cfg.Redis = fileCfg.Redis
	}
	if fileCfg.Database != nil {
		cfg.Database = fileCfg.Database
	}
	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv("LINGOMEET_SOURCE_LANGUAGE"); v != "" {
		cfg.SourceLanguage = meeting.Language(v)
	}
	if v := os.Getenv("LINGOMEET_TARGET_LANGUAGE"); v != "" {
		cfg.TargetLanguage = meeting.Language(v)
	}
	if v := os.Getenv("LINGOMEET_DISPLAY_NAME"); v != "" {
		cfg.DisplayName = v
	}
	if v := os.Getenv("LINGOMEET_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}
	if v := os.Getenv("LINGOMEET_TIMEOUT"); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = timeout
		}
	}
	if v := os.Getenv("LINGOMEET_SUMMARIZER"); v != "" {
		cfg.Summarizer = v
	}
	if v := os.Getenv("LINGOMEET_DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = debug
		}
	}
	if v := os.Getenv("LINGOMEET_REDIS_ADDR"); v != "" {
		if cfg.Redis == nil {
			cfg.Redis = &RedisConfig{}
		}
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("LINGOMEET_REDIS_PASSWORD"); v != "" {
		if cfg.Redis == nil {
			cfg.Redis = &RedisConfig{}
		}
		cfg.Redis.Password = v
	}
}

// Validate checks the configuration for consistency.
func (c *CLIConfig) Validate() error {
	if !c.SourceLanguage.Valid() {
		return fmt.Errorf("invalid source language: %q (supported: ko, en, ja, zh)", c.SourceLanguage)
	}
	if !c.TargetLanguage.Valid() {
		return fmt.Errorf("invalid target language: %q (supported: ko, en, ja, zh)", c.TargetLanguage)
	}
	switch c.OutputFormat {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
	default:
		return fmt.Errorf("invalid output format: %q (supported: text, json, yaml)", c.OutputFormat)
	}
	switch c.Summarizer {
	case "", SummarizerLocal, SummarizerOpenAI:
	default:
		return fmt.Errorf("invalid summarizer: %q (supported: local, openai)", c.Summarizer)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// SaveConfig writes the configuration to the config file, creating the
// directory if needed.
func SaveConfig(cfg *CLIConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Durations are written in their human-readable form ("30s"), matching
	// what LoadConfig parses.
	type configFile struct {
		SourceLanguage meeting.Language `yaml:"source_language"`
		TargetLanguage meeting.Language `yaml:"target_language"`
		DisplayName    string           `yaml:"display_name,omitempty"`
		OutputFormat   OutputFormat     `yaml:"output_format"`
		Timeout        string           `yaml:"timeout"`
		Summarizer     string           `yaml:"summarizer,omitempty"`
		OpenAIModel    string           `yaml:"openai_model,omitempty"`
		MyMemoryEmail  string           `yaml:"mymemory_email,omitempty"`
		Debug          bool             `yaml:"debug,omitempty"`
		Redis          *RedisConfig     `yaml:"redis,omitempty"`
		Database       *DatabaseConfig  `yaml:"database,omitempty"`
	}
	data, err := yaml.Marshal(configFile{
		SourceLanguage: cfg.SourceLanguage,
		TargetLanguage: cfg.TargetLanguage,
		DisplayName:    cfg.DisplayName,
		OutputFormat:   cfg.OutputFormat,
		Timeout:        cfg.Timeout.String(),
		Summarizer:     cfg.Summarizer,
		OpenAIModel:    cfg.OpenAIModel,
		MyMemoryEmail:  cfg.MyMemoryEmail,
		Debug:          cfg.Debug,
		Redis:          cfg.Redis,
		Database:       cfg.Database,
	})
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	path := filepath.Join(dir, DefaultConfigFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

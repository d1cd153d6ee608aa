package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"pledgecli/internal/ingest"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Import   ImportConfig   `yaml:"import" envconfig:"IMPORT"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"10"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"20"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// ImportConfig configures the transaction-export ingestion pipeline. The
// column names and the category keyword are deliberately configuration, not
// code: the export signature belongs to the upstream system, not to this
// importer.
type ImportConfig struct {
	CategoryKeyword string   `yaml:"category_keyword" envconfig:"CATEGORY_KEYWORD" default:"pledge"`
	TypeColumn      string   `yaml:"type_column" envconfig:"TYPE_COLUMN" default:"Type"`
	ChargeColumn    string   `yaml:"charge_column" envconfig:"CHARGE_COLUMN" default:"Charge"`
	AccountColumn   string   `yaml:"account_column" envconfig:"ACCOUNT_COLUMN" default:"Account Id"`
	BirthdayColumn  string   `yaml:"birthday_column" envconfig:"BIRTHDAY_COLUMN" default:"Birthday"`
	ZipColumn       string   `yaml:"zip_column" envconfig:"ZIP_COLUMN" default:"Zip"`
	OptionalColumns []string `yaml:"optional_columns" envconfig:"OPTIONAL_COLUMNS" default:"Date,First Name,Last Name,Fund,Check Number"`
	MergePolicy     string   `yaml:"merge_policy" envconfig:"MERGE_POLICY" default:"first-file-wins"`
	MaxUploadBytes  int64    `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
	MaxFiles        int      `yaml:"max_files" envconfig:"MAX_FILES" default:"12"`
}

// Signature builds the ingest format signature from the configured columns.
func (c ImportConfig) Signature() ingest.FormatSignature {
	return ingest.FormatSignature{
		TypeColumn:     c.TypeColumn,
		ChargeColumn:   c.ChargeColumn,
		AccountColumn:  c.AccountColumn,
		BirthdayColumn: c.BirthdayColumn,
		ZipColumn:      c.ZipColumn,
		Optional:       c.OptionalColumns,
	}
}

// Policy resolves the configured merge policy.
func (c ImportConfig) Policy() (ingest.MergePolicy, error) {
	policy, ok := ingest.ParseMergePolicy(c.MergePolicy)
	if !ok {
		return policy, fmt.Errorf("unknown merge policy %q", c.MergePolicy)
	}
	return policy, nil
}

// Load loads configuration from environment variables and an optional
// config.yaml. Environment variables (and tag defaults) apply first; file
// values are unmarshaled over them, so keys present in the file win and
// absent keys keep their environment or default values.
func Load() (*Config, error) {
	cfg := Default()

	if err := envconfig.Process("PLEDGE", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path := findConfigFile(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Import.CategoryKeyword == "" {
		return fmt.Errorf("import category keyword must not be empty")
	}
	if c.Import.TypeColumn == "" || c.Import.ChargeColumn == "" ||
		c.Import.AccountColumn == "" || c.Import.BirthdayColumn == "" {
		return fmt.Errorf("all required import columns must be named")
	}
	if c.Import.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	if _, err := c.Import.Policy(); err != nil {
		return err
	}
	return nil
}

// findConfigFile returns the first config file found in common locations.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     10,
				Burst:   20,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "stdout",
			FilePath: "logs/app.log",
		},
		Import: ImportConfig{
			CategoryKeyword: "pledge",
			TypeColumn:      "Type",
			ChargeColumn:    "Charge",
			AccountColumn:   "Account Id",
			BirthdayColumn:  "Birthday",
			ZipColumn:       "Zip",
			OptionalColumns: []string{"Date", "First Name", "Last Name", "Fund", "Check Number"},
			MergePolicy:     "first-file-wins",
			MaxUploadBytes:  32 << 20,
			MaxFiles:        12,
		},
	}
}

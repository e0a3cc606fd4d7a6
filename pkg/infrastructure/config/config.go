package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the complete application configuration
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Logger        LoggerConfig        `mapstructure:"logger"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Analysis      AnalysisConfig      `mapstructure:"analysis"`
	Stores        StoresConfig        `mapstructure:"stores"`
	CommerceTools CommerceToolsConfig `mapstructure:"commercetools"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	Mode         string        `mapstructure:"mode" validate:"oneof=debug release test"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// MaxUploadMB limits multipart uploads
	MaxUploadMB int64 `mapstructure:"max_upload_mb" validate:"min=1"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggerConfig controls structured logging
type LoggerConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format     string `mapstructure:"format" validate:"oneof=console json"`
	OutputPath string `mapstructure:"output_path"`
}

// StorageConfig selects where plant data is persisted
type StorageConfig struct {
	Driver     string      `mapstructure:"driver" validate:"oneof=memory sqlite redis"`
	SQLitePath string      `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
	Redis      RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds the redis connection settings
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`
}

// Addr returns the redis address
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AnalysisConfig tunes the recommendation engine
type AnalysisConfig struct {
	PublishThreshold   float64  `mapstructure:"publish_threshold" validate:"gte=0,lte=100"`
	UnpublishThreshold float64  `mapstructure:"unpublish_threshold" validate:"gte=0,lte=100"`
	InactiveStatuses   []string `mapstructure:"inactive_statuses"`
	DSLocations        []string `mapstructure:"ds_locations"`
	// Timezone is used to interpret plant open and close dates
	Timezone string `mapstructure:"timezone"`
}

// Location resolves the configured timezone, defaulting to local time
func (a AnalysisConfig) Location() (*time.Location, error) {
	if a.Timezone == "" || strings.EqualFold(a.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid analysis timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}

// StoresConfig holds the active store rules
type StoresConfig struct {
	ExcludedRegions    []string `mapstructure:"excluded_regions"`
	OrganizationNumber string   `mapstructure:"organization_number" validate:"required"`
	ExcludedSites      []string `mapstructure:"excluded_sites"`
}

// CommerceToolsConfig holds the storefront API credentials and client tuning
type CommerceToolsConfig struct {
	ClientID          string        `mapstructure:"client_id"`
	ClientSecret      string        `mapstructure:"client_secret"`
	ProjectKey        string        `mapstructure:"project_key"`
	AuthURL           string        `mapstructure:"auth_url"`
	APIURL            string        `mapstructure:"api_url"`
	Concurrency       int           `mapstructure:"concurrency" validate:"min=1"`
	BatchSize         int           `mapstructure:"batch_size" validate:"min=1,max=500"`
	MaxRetries        int           `mapstructure:"max_retries" validate:"min=1"`
	RetryBaseDelay    time.Duration `mapstructure:"retry_base_delay"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gte=0"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// Configured reports whether every credential needed to call the API is present
func (c CommerceToolsConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.ProjectKey != "" &&
		c.AuthURL != "" && c.APIURL != ""
}

// Load reads configuration from an optional YAML file and PLU_ prefixed environment variables.
// When path is empty the standard locations are searched and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.pluanalyzer")
	}

	v.SetEnvPrefix("PLU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration produced by defaults alone
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks struct constraints on a loaded configuration
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := cfg.Analysis.Location(); err != nil {
		return err
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "5m")
	v.SetDefault("server.max_upload_mb", 100)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stderr")

	// Storage defaults
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "pluanalyzer.db")
	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)

	// Analysis defaults
	v.SetDefault("analysis.publish_threshold", 90)
	v.SetDefault("analysis.unpublish_threshold", 50)
	v.SetDefault("analysis.inactive_statuses", []string{"Inactive", "Discontinued"})
	v.SetDefault("analysis.ds_locations", []string{"9801", "9803"})
	v.SetDefault("analysis.timezone", "Local")

	// Store rule defaults
	v.SetDefault("stores.excluded_regions", []string{"Canada"})
	v.SetDefault("stores.organization_number", "9000")
	v.SetDefault("stores.excluded_sites", []string{"9011"})

	// CommerceTools defaults (credentials must be configured)
	v.SetDefault("commercetools.client_id", "")
	v.SetDefault("commercetools.client_secret", "")
	v.SetDefault("commercetools.project_key", "")
	v.SetDefault("commercetools.auth_url", "")
	v.SetDefault("commercetools.api_url", "")
	v.SetDefault("commercetools.concurrency", 10)
	v.SetDefault("commercetools.batch_size", 50)
	v.SetDefault("commercetools.max_retries", 3)
	v.SetDefault("commercetools.retry_base_delay", "1s")
	v.SetDefault("commercetools.requests_per_second", 0)
	v.SetDefault("commercetools.timeout", "30s")
}

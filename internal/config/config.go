// Package config loads the immutable service configuration from the
// environment and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Storage provider names.
const (
	ProviderCloudinary = "cloudinary"
	ProviderMemory     = "memory"
)

// Config is the complete service configuration. It is loaded once at
// startup and injected where needed; business logic never reads ambient
// environment state.
type Config struct {
	ListenAddr     string   `mapstructure:"listen_addr"`
	Debug          bool     `mapstructure:"debug"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// Ingestion caps, enforced at the transport boundary before the
	// conversion core ever sees the data.
	MaxFileBytes  int64 `mapstructure:"max_file_bytes"`
	MaxTotalBytes int64 `mapstructure:"max_total_bytes"`

	Storage StorageConfig `mapstructure:"storage"`
}

// StorageConfig selects and parameterizes the upload backend.
type StorageConfig struct {
	Provider string `mapstructure:"provider"`

	// Cloudinary settings. Either UploadPreset (unsigned mode) or
	// APIKey+APISecret (signed mode, enables existence probing).
	CloudName    string `mapstructure:"cloud_name"`
	UploadPreset string `mapstructure:"upload_preset"`
	APIKey       string `mapstructure:"api_key"`
	APISecret    string `mapstructure:"api_secret"`

	// BaseURL roots the URLs of the memory provider.
	BaseURL string `mapstructure:"base_url"`
}

// Load reads configuration from MAILFORGE_* environment variables and an
// optional mailforge.yaml in the working directory or $HOME.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("mailforge")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")

	v.SetEnvPrefix("MAILFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("debug", false)
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("max_file_bytes", int64(10*1024*1024))
	v.SetDefault("max_total_bytes", int64(50*1024*1024))
	v.SetDefault("storage.provider", ProviderCloudinary)

	// Declare the remaining keys so AutomaticEnv can bind them.
	v.SetDefault("storage.cloud_name", "")
	v.SetDefault("storage.upload_preset", "")
	v.SetDefault("storage.api_key", "")
	v.SetDefault("storage.api_secret", "")
	v.SetDefault("storage.base_url", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MaxFileBytes <= 0 || c.MaxTotalBytes <= 0 {
		return fmt.Errorf("size caps must be positive")
	}
	if c.MaxFileBytes > c.MaxTotalBytes {
		return fmt.Errorf("max_file_bytes exceeds max_total_bytes")
	}
	switch c.Storage.Provider {
	case ProviderCloudinary:
		if strings.TrimSpace(c.Storage.CloudName) == "" {
			return fmt.Errorf("storage.cloud_name is required for the cloudinary provider")
		}
		if c.Storage.UploadPreset == "" && (c.Storage.APIKey == "" || c.Storage.APISecret == "") {
			return fmt.Errorf("cloudinary needs storage.upload_preset or storage.api_key and storage.api_secret")
		}
	case ProviderMemory:
	default:
		return fmt.Errorf("unknown storage provider %q", c.Storage.Provider)
	}
	return nil
}

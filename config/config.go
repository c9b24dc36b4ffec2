package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Ebay     EbayConfig
	Pricing  PricingConfig
	Dedup    DedupConfig
	Database DatabaseConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EbayConfig holds eBay API credentials and endpoints
type EbayConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	AuthURL      string `mapstructure:"auth_url"`
	BaseURL      string `mapstructure:"base_url"`
}

// PricingConfig holds pricing pipeline tunables
type PricingConfig struct {
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
	MaxComps            int           `mapstructure:"max_comps"`
	OutlierStdDevs      float64       `mapstructure:"outlier_std_devs"`
	BroadeningThreshold int           `mapstructure:"broadening_threshold"`
}

// DedupConfig holds duplicate-detection thresholds
type DedupConfig struct {
	NameThreshold  float64 `mapstructure:"name_threshold"`
	QueryThreshold float64 `mapstructure:"query_threshold"`
}

// DatabaseConfig holds SQLite settings
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/estatelens/")

	// Environment variable settings
	v.SetEnvPrefix("ESTATELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// eBay defaults (production endpoints)
	v.SetDefault("ebay.auth_url", "https://api.ebay.com/identity/v1/oauth2/token")
	v.SetDefault("ebay.base_url", "https://api.ebay.com/buy/browse/v1")

	// Pricing defaults
	v.SetDefault("pricing.cache_ttl", "168h") // 7 days
	v.SetDefault("pricing.max_comps", 20)
	v.SetDefault("pricing.outlier_std_devs", 2.0)
	v.SetDefault("pricing.broadening_threshold", 3)

	// Dedup defaults
	v.SetDefault("dedup.name_threshold", 0.75)
	v.SetDefault("dedup.query_threshold", 0.70)

	// Database defaults
	v.SetDefault("database.path", "data/estatelens.db")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Ebay.ClientID == "" {
		return fmt.Errorf("eBay client ID is required (set ESTATELENS_EBAY_CLIENT_ID)")
	}

	if config.Ebay.ClientSecret == "" {
		return fmt.Errorf("eBay client secret is required (set ESTATELENS_EBAY_CLIENT_SECRET)")
	}

	if config.Pricing.CacheTTL < 0 {
		return fmt.Errorf("pricing cache TTL must not be negative, got: %s", config.Pricing.CacheTTL)
	}

	if t := config.Dedup.NameThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("dedup name threshold must be in (0, 1], got: %v", t)
	}

	if t := config.Dedup.QueryThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("dedup query threshold must be in (0, 1], got: %v", t)
	}

	if config.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	return nil
}

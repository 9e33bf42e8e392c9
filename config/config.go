package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Hierarchy HierarchyConfig
	Matching  MatchingConfig
	Batch     BatchConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig holds catalog store configuration
type CatalogConfig struct {
	Type     string `mapstructure:"type"` // "sqlite" or "memory"
	Path     string `mapstructure:"path"`
	SeedPath string `mapstructure:"seed_path"`
}

// HierarchyConfig holds the property hierarchy source configuration
type HierarchyConfig struct {
	Path string `mapstructure:"path"`
}

// MatchingConfig holds matching engine thresholds
type MatchingConfig struct {
	MaxMatches         int     `mapstructure:"max_matches"`
	MinScore           float64 `mapstructure:"min_score"`
	FuzzyThreshold     float64 `mapstructure:"fuzzy_threshold"`
	ContinueThreshold  int     `mapstructure:"continue_threshold"`
	InclusiveThreshold bool    `mapstructure:"inclusive_threshold"`
	ReviewThreshold    float64 `mapstructure:"review_threshold"`
}

// BatchConfig holds batch matching configuration
type BatchConfig struct {
	Concurrency int     `mapstructure:"concurrency"`
	QueryRate   float64 `mapstructure:"query_rate"` // catalog queries/sec, 0 = unlimited
}

// CacheConfig holds response cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"` // 0 disables response caching
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests/min per client IP, 0 = unlimited
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/partmatch/")

	// Environment variable settings
	v.SetEnvPrefix("PARTMATCH")
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
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Catalog defaults
	v.SetDefault("catalog.type", "sqlite")
	v.SetDefault("catalog.path", "data/catalog.db")

	// Hierarchy defaults
	v.SetDefault("hierarchy.path", "config/hierarchies.yaml")

	// Matching defaults
	v.SetDefault("matching.max_matches", 3)
	v.SetDefault("matching.min_score", 0.5)
	v.SetDefault("matching.fuzzy_threshold", 0.8)
	v.SetDefault("matching.continue_threshold", 10)
	v.SetDefault("matching.inclusive_threshold", false)
	v.SetDefault("matching.review_threshold", 0.7)

	// Batch defaults
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("batch.query_rate", 0)

	// Cache defaults: response caching off unless configured
	v.SetDefault("cache.ttl", "0s")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 120)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Catalog.Type != "sqlite" && config.Catalog.Type != "memory" {
		return fmt.Errorf("catalog type must be 'sqlite' or 'memory', got: %s", config.Catalog.Type)
	}

	if config.Catalog.Type == "sqlite" && config.Catalog.Path == "" {
		return fmt.Errorf("catalog path is required when catalog type is 'sqlite'")
	}

	if config.Hierarchy.Path == "" {
		return fmt.Errorf("hierarchy path is required (set PARTMATCH_HIERARCHY_PATH)")
	}

	if config.Matching.MinScore < 0 || config.Matching.MinScore > 1 {
		return fmt.Errorf("matching min_score must be in [0,1], got: %v", config.Matching.MinScore)
	}

	if config.Matching.FuzzyThreshold < 0 || config.Matching.FuzzyThreshold > 1 {
		return fmt.Errorf("matching fuzzy_threshold must be in [0,1], got: %v", config.Matching.FuzzyThreshold)
	}

	if config.Matching.ReviewThreshold < 0 || config.Matching.ReviewThreshold > 1 {
		return fmt.Errorf("matching review_threshold must be in [0,1], got: %v", config.Matching.ReviewThreshold)
	}

	if config.Matching.ContinueThreshold < 1 {
		return fmt.Errorf("matching continue_threshold must be >= 1, got: %d", config.Matching.ContinueThreshold)
	}

	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/technest/backend/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	AI         AIConfig         `mapstructure:"ai"`
	Log        LogConfig        `mapstructure:"log"`
	Search     SearchConfig     `mapstructure:"search"`
	Comparison ComparisonConfig `mapstructure:"comparison"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds device catalog storage configuration
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "postgres"
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type       string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL   string        `mapstructure:"redis_url"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// RateLimitConfig holds rate limiting configuration.
// Both values are requests per minute.
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
	AI    int `mapstructure:"ai"`
}

// AIConfig holds text generation provider configuration
type AIConfig struct {
	Provider    string        `mapstructure:"provider"` // "template", "openai" or "gemini"
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// SearchConfig holds discovery search configuration
type SearchConfig struct {
	Limit         int  `mapstructure:"limit"`
	FuzzyMatching bool `mapstructure:"fuzzy_matching"`
}

// ComparisonConfig holds the category table used for verdicts
type ComparisonConfig struct {
	Categories []CategoryConfig `mapstructure:"categories"`
}

// CategoryConfig is one configured comparison category.
// HigherIsBetter defaults to true when omitted.
type CategoryConfig struct {
	Name           string `mapstructure:"name"`
	SpecKey        string `mapstructure:"spec_key"`
	HigherIsBetter *bool  `mapstructure:"higher_is_better"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/technest/")

	// Environment variable settings: server.port -> TECHNEST_SERVER_PORT
	v.SetEnvPrefix("TECHNEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
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

// loadEnvFile loads a .env file from the working directory if present.
// Variables already set in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "technest.db")
	v.SetDefault("database.dsn", "")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.max_entries", 10000)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.ai", 60)

	// AI defaults
	v.SetDefault("ai.provider", "template")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.temperature", 0.3)
	v.SetDefault("ai.timeout", "30s")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Search defaults
	v.SetDefault("search.limit", 10)
	v.SetDefault("search.fuzzy_matching", true)

	// Comparison defaults mirror domain.DefaultCategoryTable
	defaults := make([]map[string]any, 0, 3)
	for _, rule := range domain.DefaultCategoryTable() {
		defaults = append(defaults, map[string]any{
			"name":             string(rule.Category),
			"spec_key":         rule.SpecKey,
			"higher_is_better": rule.Direction == domain.HigherIsBetter,
		})
	}
	v.SetDefault("comparison.categories", defaults)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis' (set TECHNEST_CACHE_REDIS_URL)")
	}

	switch config.Database.Driver {
	case "sqlite":
		if config.Database.Path == "" {
			return fmt.Errorf("database path is required when driver is 'sqlite'")
		}
	case "postgres":
		if config.Database.DSN == "" {
			return fmt.Errorf("database DSN is required when driver is 'postgres' (set TECHNEST_DATABASE_DSN)")
		}
	default:
		return fmt.Errorf("database driver must be 'sqlite' or 'postgres', got: %s", config.Database.Driver)
	}

	switch config.AI.Provider {
	case "template":
	case "openai", "gemini":
		if config.AI.APIKey == "" {
			return fmt.Errorf("AI API key is required for provider '%s' (set TECHNEST_AI_API_KEY)", config.AI.Provider)
		}
	default:
		return fmt.Errorf("ai provider must be 'template', 'openai' or 'gemini', got: %s", config.AI.Provider)
	}

	if err := config.CategoryTable().Validate(); err != nil {
		return err
	}

	return nil
}

// CategoryTable converts the configured categories into a domain.CategoryTable
func (c *Config) CategoryTable() domain.CategoryTable {
	table := make(domain.CategoryTable, 0, len(c.Comparison.Categories))
	for _, category := range c.Comparison.Categories {
		higher := true
		if category.HigherIsBetter != nil {
			higher = *category.HigherIsBetter
		}
		table = append(table, domain.CategoryRule{
			Category:  domain.Category(strings.TrimSpace(category.Name)),
			SpecKey:   strings.TrimSpace(category.SpecKey),
			Direction: domain.DirectionFromBool(higher),
		})
	}
	return table
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

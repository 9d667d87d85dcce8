package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/technest/backend/internal/domain"
)

var configEnvVars = []string{
	"TECHNEST_SERVER_PORT",
	"TECHNEST_SERVER_ENVIRONMENT",
	"TECHNEST_SERVER_ALLOWED_ORIGINS",
	"TECHNEST_DATABASE_DRIVER",
	"TECHNEST_DATABASE_PATH",
	"TECHNEST_DATABASE_DSN",
	"TECHNEST_CACHE_TYPE",
	"TECHNEST_CACHE_REDIS_URL",
	"TECHNEST_CACHE_TTL",
	"TECHNEST_RATELIMIT_PER_IP",
	"TECHNEST_RATELIMIT_AI",
	"TECHNEST_AI_PROVIDER",
	"TECHNEST_AI_API_KEY",
	"TECHNEST_AI_MODEL",
	"TECHNEST_AI_TIMEOUT",
	"TECHNEST_LOG_LEVEL",
	"TECHNEST_LOG_FORMAT",
}

// inTempDir runs the test from an empty directory so no config.yaml or .env is picked up
func inTempDir(t *testing.T) string {
	t.Helper()
	originalDir, _ := os.Getwd()
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(originalDir) })
	return dir
}

func TestLoad(t *testing.T) {
	cleanupEnv := func() {
		for _, key := range configEnvVars {
			os.Unsetenv(key)
		}
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()
		inTempDir(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if !cfg.IsDevelopment() {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "technest.db" {
			t.Errorf("Database = %+v, want sqlite technest.db", cfg.Database)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 100 || cfg.RateLimit.AI != 60 {
			t.Errorf("RateLimit = %+v, want 100/60", cfg.RateLimit)
		}
		if cfg.AI.Provider != "template" {
			t.Errorf("AI.Provider = %s, want template", cfg.AI.Provider)
		}
		if cfg.AI.Timeout != 30*time.Second {
			t.Errorf("AI.Timeout = %v, want 30s", cfg.AI.Timeout)
		}
		if cfg.Search.Limit != 10 || !cfg.Search.FuzzyMatching {
			t.Errorf("Search = %+v, want limit 10 with fuzzy matching", cfg.Search)
		}

		table := cfg.CategoryTable()
		want := domain.DefaultCategoryTable()
		if len(table) != len(want) {
			t.Fatalf("CategoryTable() has %d rules, want %d", len(table), len(want))
		}
		for i := range want {
			if table[i] != want[i] {
				t.Errorf("CategoryTable()[%d] = %+v, want %+v", i, table[i], want[i])
			}
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()
		inTempDir(t)

		os.Setenv("TECHNEST_SERVER_PORT", "9090")
		os.Setenv("TECHNEST_SERVER_ENVIRONMENT", "production")
		os.Setenv("TECHNEST_DATABASE_DRIVER", "postgres")
		os.Setenv("TECHNEST_DATABASE_DSN", "postgres://localhost/technest?sslmode=disable")
		os.Setenv("TECHNEST_CACHE_TYPE", "redis")
		os.Setenv("TECHNEST_CACHE_REDIS_URL", "redis://localhost:6379")
		os.Setenv("TECHNEST_CACHE_TTL", "24h")
		os.Setenv("TECHNEST_RATELIMIT_PER_IP", "200")
		os.Setenv("TECHNEST_AI_PROVIDER", "openai")
		os.Setenv("TECHNEST_AI_API_KEY", "sk-test")
		os.Setenv("TECHNEST_AI_MODEL", "gpt-4o")
		os.Setenv("TECHNEST_LOG_LEVEL", "debug")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.IsDevelopment() {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Database.Driver != "postgres" || cfg.Database.DSN == "" {
			t.Errorf("Database = %+v, want postgres with dsn", cfg.Database)
		}
		if cfg.Cache.RedisURL != "redis://localhost:6379" {
			t.Errorf("Cache.RedisURL = %s, want redis://localhost:6379", cfg.Cache.RedisURL)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if cfg.AI.APIKey != "sk-test" || cfg.AI.Model != "gpt-4o" {
			t.Errorf("AI = %+v, want openai key and model", cfg.AI)
		}
		if cfg.Log.Level != "debug" {
			t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
		}
	})

	t.Run("reads categories from config file", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()
		dir := inTempDir(t)

		content := `
comparison:
  categories:
    - name: battery
      spec_key: battery_capacity_mah
    - name: weight
      spec_key: weight_g
      higher_is_better: false
`
		if err := os.WriteFile(dir+"/config.yaml", []byte(content), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		table := cfg.CategoryTable()
		if len(table) != 2 {
			t.Fatalf("CategoryTable() = %+v, want 2 rules", table)
		}
		if table[0].Direction != domain.HigherIsBetter {
			t.Errorf("battery direction = %s, want higher_is_better", table[0].Direction)
		}
		if table[1].Category != "weight" || table[1].Direction != domain.LowerIsBetter {
			t.Errorf("weight rule = %+v, want lower_is_better", table[1])
		}
	})

	t.Run("fails validation for invalid cache type", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()
		inTempDir(t)
		os.Setenv("TECHNEST_CACHE_TYPE", "invalid")

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for invalid cache type")
		}
	})

	t.Run("fails validation when redis URL missing for redis cache", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()
		inTempDir(t)
		os.Setenv("TECHNEST_CACHE_TYPE", "redis")

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for missing Redis URL")
		}
		if !strings.Contains(err.Error(), "TECHNEST_CACHE_REDIS_URL") {
			t.Errorf("Load() error = %v, want hint about TECHNEST_CACHE_REDIS_URL", err)
		}
	})

	t.Run("fails validation when AI key missing", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()
		inTempDir(t)
		os.Setenv("TECHNEST_AI_PROVIDER", "gemini")

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for missing AI key")
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		inTempDir(t)

		if err := loadEnvFile(); err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables and skips comments", func(t *testing.T) {
		inTempDir(t)

		envContent := `
# Comment line
TEST_VAR_1=value1

TEST_VAR_2=value2
# TEST_COMMENTED=should_not_load
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_COMMENTED")
		defer func() {
			os.Unsetenv("TEST_VAR_1")
			os.Unsetenv("TEST_VAR_2")
		}()

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}
		if os.Getenv("TEST_COMMENTED") != "" {
			t.Errorf("TEST_COMMENTED should not be loaded from comment")
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		inTempDir(t)

		os.Setenv("TEST_OVERRIDE", "existing-value")
		defer os.Unsetenv("TEST_OVERRIDE")

		if err := os.WriteFile(".env", []byte("TEST_OVERRIDE=new-value"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "sqlite", Path: "technest.db"},
			Cache:    CacheConfig{Type: "memory"},
			AI:       AIConfig{Provider: "template"},
			Comparison: ComparisonConfig{Categories: []CategoryConfig{
				{Name: "battery", SpecKey: "battery_capacity_mah"},
			}},
		}
	}

	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(valid()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"invalid cache type", func(c *Config) { c.Cache.Type = "invalid-type" }},
		{"redis without URL", func(c *Config) { c.Cache.Type = "redis" }},
		{"unknown database driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }},
		{"unknown ai provider", func(c *Config) { c.AI.Provider = "claude" }},
		{"openai without key", func(c *Config) { c.AI.Provider = "openai" }},
		{"empty category table", func(c *Config) { c.Comparison.Categories = nil }},
		{"duplicate category", func(c *Config) {
			c.Comparison.Categories = append(c.Comparison.Categories, CategoryConfig{Name: "battery", SpecKey: "other"})
		}},
		{"category without spec key", func(c *Config) { c.Comparison.Categories[0].SpecKey = " " }},
	}

	for _, tt := range tests {
		t.Run("fails for "+tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := validate(cfg); err == nil {
				t.Errorf("validate() error = nil, want error for %s", tt.name)
			}
		})
	}

	t.Run("validates redis cache type with URL", func(t *testing.T) {
		cfg := valid()
		cfg.Cache = CacheConfig{Type: "redis", RedisURL: "redis://localhost:6379"}
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil for valid redis config", err)
		}
	})
}

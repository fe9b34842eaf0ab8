package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Business  BusinessConfig  `mapstructure:"business"`
}

type ServerConfig struct {
	Port string `mapstructure:"SERVER_PORT"`
	Host string `mapstructure:"SERVER_HOST"`
	Env  string `mapstructure:"ENV"`
}

type DatabaseConfig struct {
	URL          string `mapstructure:"DATABASE_URL"`
	MaxOpenConns int    `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	OverdueSweepSpec string `mapstructure:"SCHEDULER_OVERDUE_SWEEP_SPEC"`
	Timezone         string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

// BusinessConfig carries the tunable business knobs. The salary fallback
// percentage is a placeholder policy value, deliberately configurable rather
// than hard-coded.
type BusinessConfig struct {
	SalaryFallbackPercent string `mapstructure:"SALARY_FALLBACK_PERCENT"`
	StatisticsCacheTTL    string `mapstructure:"STATISTICS_CACHE_TTL"`
	DefaultListLimit      int    `mapstructure:"DEFAULT_LIST_LIMIT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SALARY_FALLBACK_PERCENT", "0.85")
	viper.SetDefault("STATISTICS_CACHE_TTL", "5m")
	viper.SetDefault("DEFAULT_LIST_LIMIT", 50)
	viper.SetDefault("SCHEDULER_OVERDUE_SWEEP_SPEC", "0 0 6 * * *")
	viper.SetDefault("SCHEDULER_TIMEZONE", "UTC")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	percent, err := decimal.NewFromString(c.Business.SalaryFallbackPercent)
	if err != nil {
		return fmt.Errorf("SALARY_FALLBACK_PERCENT must be a valid decimal: %w", err)
	}
	if percent.LessThanOrEqual(decimal.Zero) || percent.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("SALARY_FALLBACK_PERCENT must be in (0, 1]")
	}

	if _, err := time.ParseDuration(c.Business.StatisticsCacheTTL); err != nil {
		return fmt.Errorf("STATISTICS_CACHE_TTL must be a valid duration: %w", err)
	}

	if c.Business.DefaultListLimit <= 0 {
		return fmt.Errorf("DEFAULT_LIST_LIMIT must be greater than 0")
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetSalaryFallbackPercent returns the fallback net-salary percentage as decimal
func (c *Config) GetSalaryFallbackPercent() decimal.Decimal {
	percent, _ := decimal.NewFromString(c.Business.SalaryFallbackPercent)
	return percent
}

// GetStatisticsCacheTTL returns the statistics cache TTL as duration
func (c *Config) GetStatisticsCacheTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Business.StatisticsCacheTTL)
	return ttl
}

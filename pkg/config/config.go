package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the optimizer service.
// Values come from environment variables with sane defaults for local
// development.
type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	RedisURL string `mapstructure:"REDIS_URL"`

	// Solver limits. The squad search stops at whichever budget trips
	// first and reports the best solution found so far as time-limited.
	SolverNodeBudget   int64 `mapstructure:"SOLVER_NODE_BUDGET"`
	SolverTimeBudgetMs int   `mapstructure:"SOLVER_TIME_BUDGET_MS"`

	// Maximum candidate pool size accepted by the API.
	MaxPoolSize int `mapstructure:"MAX_POOL_SIZE"`

	// Result cache TTL in minutes.
	CacheTTLMinutes int `mapstructure:"CACHE_TTL_MINUTES"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8082")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/1")
	v.SetDefault("SOLVER_NODE_BUDGET", int64(5_000_000))
	v.SetDefault("SOLVER_TIME_BUDGET_MS", 2000)
	v.SetDefault("MAX_POOL_SIZE", 2000)
	v.SetDefault("CACHE_TTL_MINUTES", 60)

	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.SolverNodeBudget <= 0 {
		return nil, fmt.Errorf("SOLVER_NODE_BUDGET must be positive, got %d", cfg.SolverNodeBudget)
	}
	if cfg.SolverTimeBudgetMs <= 0 {
		return nil, fmt.Errorf("SOLVER_TIME_BUDGET_MS must be positive, got %d", cfg.SolverTimeBudgetMs)
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// SolverTimeBudget returns the per-request solver deadline.
func (c *Config) SolverTimeBudget() time.Duration {
	return time.Duration(c.SolverTimeBudgetMs) * time.Millisecond
}

// CacheTTL returns the result cache expiration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

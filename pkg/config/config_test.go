package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8082", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, int64(5_000_000), cfg.SolverNodeBudget)
	assert.Equal(t, 2*time.Second, cfg.SolverTimeBudget())
	assert.Equal(t, 2000, cfg.MaxPoolSize)
	assert.Equal(t, time.Hour, cfg.CacheTTL())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SOLVER_TIME_BUDGET_MS", "500")
	t.Setenv("SOLVER_NODE_BUDGET", "1000")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 500*time.Millisecond, cfg.SolverTimeBudget())
	assert.Equal(t, int64(1000), cfg.SolverNodeBudget)
}

func TestLoadConfig_RejectsNonPositiveBudgets(t *testing.T) {
	t.Setenv("SOLVER_NODE_BUDGET", "0")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "SOLVER_NODE_BUDGET")
}

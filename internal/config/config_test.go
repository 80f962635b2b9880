package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/peraccount/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 15*time.Second, cfg.Projection.Timeout)
	assert.False(t, cfg.UseMemory())
	assert.Equal(t, []string{"저축", "투자", "saving", "investment"}, cfg.Ledger.SavingCategories)
	assert.Equal(t, "postgres://postgres:@localhost:5432/peraccount?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("SAVING_CATEGORIES", "pension,etf")
	t.Setenv("STATE_FILE", "/tmp/peraccount-state.json")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.UseMemory())
	assert.Equal(t, []string{"pension", "etf"}, cfg.Ledger.SavingCategories)

	path, err := cfg.StatePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/peraccount-state.json", path)
}

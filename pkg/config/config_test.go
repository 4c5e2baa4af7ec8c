package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "stock-ledger", cfg.App.Name)
	assert.Equal(t, BackendPostgres, cfg.Ledger.Backend)
	assert.Equal(t, 30, cfg.Ledger.ForecastWindowDays)
	assert.True(t, cfg.Ledger.SelesaiTerminal)
	assert.Equal(t, 30*time.Second, cfg.Ledger.ProjectionTTL)
	assert.Equal(t, 5*time.Minute, cfg.Ledger.AlertRefresh)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("LEDGER_BACKEND", "MEMORY")
	v.Set("LEDGER_FORECAST_WINDOW_DAYS", "7")
	v.Set("LEDGER_SELESAI_TERMINAL", "false")
	v.Set("LEDGER_PROJECTION_TTL", "2s")
	v.Set("REDIS_ADDRESS", "localhost:6379")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Ledger.Backend)
	assert.Equal(t, 7, cfg.Ledger.ForecastWindowDays)
	assert.False(t, cfg.Ledger.SelesaiTerminal)
	assert.Equal(t, 2*time.Second, cfg.Ledger.ProjectionTTL)
	assert.True(t, cfg.Redis.Enabled())
}

func TestFromViper_InvalidBackend(t *testing.T) {
	v := viper.New()
	v.Set("LEDGER_BACKEND", "sqlite")
	_, err := fromViper(v)
	require.Error(t, err)
}

func TestFromViper_InvalidWindow(t *testing.T) {
	v := viper.New()
	v.Set("LEDGER_FORECAST_WINDOW_DAYS", 0)
	_, err := fromViper(v)
	require.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/ledger?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

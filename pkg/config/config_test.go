package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, 0.7, cfg.Integration.SuccessRate)
	assert.Equal(t, 10, cfg.Worker.Concurrency)
	assert.Empty(t, cfg.Server.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://grc.example.com, https://admin.example.com")
	t.Setenv("INTEGRATION_SUCCESS_RATE", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://grc.example.com", "https://admin.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 1.0, cfg.Integration.SuccessRate)
}

func TestLoad_RejectsSuccessRateOutOfRange(t *testing.T) {
	t.Setenv("INTEGRATION_SUCCESS_RATE", "1.5")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "grc", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=grc sslmode=disable", d.DSN())
}

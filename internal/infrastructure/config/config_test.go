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

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8000", cfg.RecipeAPI.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.RecipeAPI.Timeout)
	assert.Equal(t, DetectionRemote, cfg.Detection.Mode)
	assert.Equal(t, 4, cfg.Matcher.MinResults)
	assert.Equal(t, SessionMemory, cfg.Session.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, uint(1024), cfg.Image.MaxDimension)
	assert.Equal(t, time.Second, cfg.DedupWindow)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("RECIPE_API_BASE_URL", "https://recipes.example.com/")
	t.Setenv("DETECTION_MODE", "Simulated")
	t.Setenv("MATCHER_MIN_RESULTS", "0")
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://recipes.example.com", cfg.RecipeAPI.BaseURL)
	assert.Equal(t, DetectionSimulated, cfg.Detection.Mode)
	assert.Equal(t, 0, cfg.Matcher.MinResults)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown detection mode", env: map[string]string{"DETECTION_MODE": "camera"}},
		{name: "unknown session backend", env: map[string]string{"SESSION_BACKEND": "postgres"}},
		{name: "negative min results", env: map[string]string{"MATCHER_MIN_RESULTS": "-1"}},
		{name: "zero rate limit requests", env: map[string]string{"RATE_LIMIT_REQUESTS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

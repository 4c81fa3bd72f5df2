package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "park-storefront", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "http://localhost:9090", cfg.ParkAPI.BaseURL)
	assert.Equal(t, "park_session", cfg.Session.CookieName)
	assert.NotZero(t, cfg.Session.TTL)
	assert.False(t, cfg.OTel.Enabled)
}

func TestLoadWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.env")
	env := "SERVER_PORT=9999\nPARK_API_BASE_URL=http://park.internal:8081\n"
	require.NoError(t, os.WriteFile(path, []byte(env), 0o600))

	cfg, err := LoadWithPath(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "http://park.internal:8081", cfg.ParkAPI.BaseURL)

	// A missing explicit path is an error, unlike the optional .env.
	_, err = LoadWithPath(filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing app name",
			mutate:  func(c *Config) { c.App.Name = "" },
			wantErr: "app name is required",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "missing park api url",
			mutate:  func(c *Config) { c.ParkAPI.BaseURL = "" },
			wantErr: "park API base URL is required",
		},
		{
			name:    "missing session secret",
			mutate:  func(c *Config) { c.Session.Secret = "" },
			wantErr: "session secret is required",
		},
		{
			name:    "dev secret rejected in production",
			mutate:  func(c *Config) { c.App.Environment = "production" },
			wantErr: "session secret must be changed in production",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, ModeAPI, cfg.Mode)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 5*time.Second, cfg.StaleTime)
	assert.Equal(t, 5*time.Minute, cfg.CacheTime)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 2, cfg.RetryAttempts)
	assert.Equal(t, "dark", cfg.Theme)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"KCONSOLE_API_URL":          "https://console.example.com",
		"KCONSOLE_MODE":             "direct",
		"KCONSOLE_REFRESH_INTERVAL": "30s",
		"KCONSOLE_PAGE_SIZE":        "50",
		"KCONSOLE_DEBUG":            "true",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://console.example.com", cfg.APIURL)
	assert.Equal(t, ModeDirect, cfg.Mode)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 50, cfg.PageSize)
	assert.True(t, cfg.Debug)
}

func TestLoadInvalidDuration(t *testing.T) {
	_, err := LoadFrom(map[string]string{"KCONSOLE_STALE_TIME": "soon"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg, _ := LoadFrom(map[string]string{})
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"direct mode ignores url", func(c *Config) { c.Mode = ModeDirect; c.APIURL = "" }, true},
		{"unknown mode", func(c *Config) { c.Mode = "grpc" }, false},
		{"empty url", func(c *Config) { c.APIURL = "" }, false},
		{"bad scheme", func(c *Config) { c.APIURL = "ftp://console" }, false},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, false},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, false},
		{"negative retries", func(c *Config) { c.RetryAttempts = -1 }, false},
		{"refresh too fast", func(c *Config) { c.RefreshInterval = 100 * time.Millisecond }, false},
		{"stale beyond cache", func(c *Config) { c.StaleTime = time.Hour }, false},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestKubeconfigPath(t *testing.T) {
	cfg := Config{Kubeconfig: "/tmp/explicit"}
	p, err := cfg.KubeconfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/explicit", p)

	t.Setenv("KUBECONFIG", "/tmp/from-env")
	p, err = Config{}.KubeconfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env", p)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"USER_EMAIL", "USER_NAME", "USER_STACK", "PORT",
	"FACT_API_URL", "FACT_API_TIMEOUT", "LOG_LEVEL", "APP_ENV",
}

// clearEnv blanks every override so the host environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, ":3000", cfg.Server.Addr())
	assert.Equal(t, DefaultFactAPIURL, cfg.FactAPI.URL)
	assert.Equal(t, 5*time.Second, cfg.FactAPI.TimeoutDuration())
	assert.Equal(t, DefaultFallbackFact, cfg.FactAPI.Fallback)
	assert.NotEmpty(t, cfg.Profile.Email)
	assert.NotEmpty(t, cfg.Profile.Name)
	assert.NotEmpty(t, cfg.Profile.Stack)
}

func TestLoadConfig_YAMLOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
server:
  port: 8081
profile:
  name: Jane Doe
factApi:
  timeout: 250ms
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "Jane Doe", cfg.Profile.Name)
	assert.Equal(t, 250*time.Millisecond, cfg.FactAPI.TimeoutDuration())
	// 未出现在 YAML 中的字段保留默认值
	assert.Equal(t, DefaultFactAPIURL, cfg.FactAPI.URL)
	assert.Equal(t, "belloibrahimolawale@gmail.com", cfg.Profile.Email)
}

func TestLoadConfig_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "profile:\n  email: yaml@example.com\n")
	t.Setenv("USER_EMAIL", "env@example.com")
	t.Setenv("USER_STACK", "Go")
	t.Setenv("PORT", "4000")
	t.Setenv("FACT_API_TIMEOUT", "1500")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env@example.com", cfg.Profile.Email)
	assert.Equal(t, "Go", cfg.Profile.Stack)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, 1500*time.Millisecond, cfg.FactAPI.TimeoutDuration())
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "server: [not, a, map\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidPortEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "abc")

	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, ".env", "USER_NAME=From Dotenv\nUSER_STACK=Go/Gin\n")
	t.Setenv("USER_STACK", "Already Set")
	// godotenv 只写入不存在的变量; t.Setenv 负责在测试结束后恢复
	require.NoError(t, os.Unsetenv("USER_NAME"))

	require.NoError(t, LoadEnvFile(path))
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "From Dotenv", cfg.Profile.Name)
	assert.Equal(t, "Already Set", cfg.Profile.Stack)
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), ".env")))
	assert.NoError(t, LoadEnvFile(""))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"defaults", func(*AppConfig) {}, false},
		{"port zero", func(c *AppConfig) { c.Server.Port = 0 }, true},
		{"port too large", func(c *AppConfig) { c.Server.Port = 70000 }, true},
		{"relative url", func(c *AppConfig) { c.FactAPI.URL = "/fact" }, true},
		{"ftp url", func(c *AppConfig) { c.FactAPI.URL = "ftp://example.com/fact" }, true},
		{"bad timeout", func(c *AppConfig) { c.FactAPI.Timeout = "soon" }, true},
		{"negative timeout", func(c *AppConfig) { c.FactAPI.Timeout = "-1s" }, true},
		{"empty fallback", func(c *AppConfig) { c.FactAPI.Fallback = "" }, true},
		{"bad cors origin", func(c *AppConfig) { c.Middleware.CORS.AllowOrigins = []string{"example.com"} }, true},
		{"explicit cors origin", func(c *AppConfig) { c.Middleware.CORS.AllowOrigins = []string{"https://example.com"} }, false},
		{"unknown limiter", func(c *AppConfig) {
			c.Middleware.RateLimiter.Enabled = true
			c.Middleware.RateLimiter.Algorithm = "slidingLog"
		}, true},
		{"fixed window ok", func(c *AppConfig) {
			c.Middleware.RateLimiter.Enabled = true
			c.Middleware.RateLimiter.Algorithm = "fixedWindow"
		}, false},
		{"fixed window bad window", func(c *AppConfig) {
			c.Middleware.RateLimiter.Enabled = true
			c.Middleware.RateLimiter.Algorithm = "fixedWindow"
			c.Middleware.RateLimiter.FixedWindow.Window = "0s"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyEnv_IgnoresBlankValues(t *testing.T) {
	cfg := Default()
	env := map[string]string{"USER_NAME": "   ", "FACT_API_TIMEOUT": "2s"}

	err := applyEnv(cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.NoError(t, err)

	assert.Equal(t, "Ibraheem Bello", cfg.Profile.Name)
	assert.Equal(t, 2*time.Second, cfg.FactAPI.TimeoutDuration())
}

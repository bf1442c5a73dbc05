package config_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dom/gemrealm/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, config.SessionStorePostgres, cfg.SessionStore)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, uint64(2), cfg.LookupRetries)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.Cookie().Secure)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{
		"PORT":          "9000",
		"SESSION_STORE": "redis",
		"REDIS_URL":     "redis://cache:6379/1",
		"BCRYPT_COST":   "14",
	})
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, config.SessionStoreRedis, cfg.SessionStore)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, 14, cfg.BcryptCost)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
	}{
		{name: "unknown session store", environ: map[string]string{"SESSION_STORE": "memcached"}},
		{name: "bad cookie flag", environ: map[string]string{"COOKIE_SECURE": "sometimes"}},
		{name: "bad bcrypt cost", environ: map[string]string{"BCRYPT_COST": "high"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadFrom(tt.environ)
			assert.Error(t, err)
		})
	}
}

func TestConfig_Cookie(t *testing.T) {
	tests := []struct {
		name       string
		environ    map[string]string
		wantSecure bool
	}{
		{name: "development", environ: map[string]string{}, wantSecure: false},
		{name: "production", environ: map[string]string{"ENVIRONMENT": "production"}, wantSecure: true},
		{name: "explicit off in production", environ: map[string]string{"ENVIRONMENT": "production", "COOKIE_SECURE": "false"}, wantSecure: false},
		{name: "explicit on in development", environ: map[string]string{"COOKIE_SECURE": "true"}, wantSecure: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.LoadFrom(tt.environ)
			require.NoError(t, err)

			cookie := cfg.Cookie()
			assert.Equal(t, "session-token", cookie.Name)
			assert.Equal(t, tt.wantSecure, cookie.Secure)
			assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		})
	}
}

package config

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSecrets(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "access")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh")
}

func TestLoad_Defaults(t *testing.T) {
	setSecrets(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 240*time.Hour, cfg.RefreshTokenTTL)
	assert.True(t, cfg.Cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cfg.Cookie.SameSite)
	assert.Equal(t, int64(512<<20), cfg.Media.MaxUploadBytes)
	assert.False(t, cfg.ViewEmptyAsNotFound)
}

func TestLoad_Overrides(t *testing.T) {
	setSecrets(t)
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "5")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("COOKIE_SAMESITE", "Strict")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("VIEW_EMPTY_AS_NOT_FOUND", "true")
	t.Setenv("MEDIA_MAX_UPLOAD_MB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.False(t, cfg.Cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cfg.Cookie.SameSite)
	assert.Equal(t, 0.5, cfg.RateLimitRPS)
	assert.True(t, cfg.ViewEmptyAsNotFound)
	assert.Equal(t, int64(512<<20), cfg.Media.MaxUploadBytes)
}

func TestLoad_RequiredSecrets(t *testing.T) {
	tests := []struct {
		name    string
		access  string
		refresh string
	}{
		{name: "missing access secret", refresh: "refresh"},
		{name: "missing refresh secret", access: "access"},
		{name: "identical secrets", access: "same", refresh: "same"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ACCESS_TOKEN_SECRET", tt.access)
			t.Setenv("REFRESH_TOKEN_SECRET", tt.refresh)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

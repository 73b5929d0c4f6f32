package mcpserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// clearEnforcerEnv blanks every ENFORCER_* variable for the test.
func clearEnforcerEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENFORCER_CACHE_ENABLED", "ENFORCER_CACHE_MAX_SIZE",
		"ENFORCER_CACHE_FILE_TTL", "ENFORCER_CACHE_URL_TTL",
		"ENFORCER_CACHE_CONTENT_TTL", "ENFORCER_CACHE_SWEEP_INTERVAL",
		"ENFORCER_LIMIT", "ENFORCER_MAX_LIMIT",
		"ENFORCER_VALIDATE_STRICT", "ENFORCER_VALIDATE_NO_WARNINGS",
		"ENFORCER_REQUEST_STRICT", "ENFORCER_RANDOM_MAX_COUNT",
		"ENFORCER_MAX_INLINE_SIZE", "ENFORCER_ALLOW_PRIVATE_IPS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnforcerEnv(t)

	c := loadConfig()

	assert.True(t, c.CacheEnabled)
	assert.Equal(t, 10, c.CacheMaxSize)
	assert.Equal(t, 15*time.Minute, c.CacheFileTTL)
	assert.Equal(t, 5*time.Minute, c.CacheURLTTL)
	assert.Equal(t, 15*time.Minute, c.CacheContentTTL)
	assert.Equal(t, 60*time.Second, c.CacheSweepInterval)
	assert.Equal(t, 100, c.Limit)
	assert.Equal(t, 1000, c.MaxLimit)
	assert.False(t, c.ValidateStrict)
	assert.False(t, c.ValidateNoWarnings)
	assert.False(t, c.RequestStrict)
	assert.Equal(t, 100, c.RandomMaxCount)
	assert.Equal(t, int64(10*1024*1024), c.MaxInlineSize)
	assert.False(t, c.AllowPrivateIPs)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnforcerEnv(t)
	t.Setenv("ENFORCER_CACHE_ENABLED", "false")
	t.Setenv("ENFORCER_CACHE_MAX_SIZE", "50")
	t.Setenv("ENFORCER_CACHE_FILE_TTL", "30m")
	t.Setenv("ENFORCER_CACHE_URL_TTL", "2m")
	t.Setenv("ENFORCER_CACHE_CONTENT_TTL", "10m")
	t.Setenv("ENFORCER_CACHE_SWEEP_INTERVAL", "30s")
	t.Setenv("ENFORCER_LIMIT", "200")
	t.Setenv("ENFORCER_MAX_LIMIT", "500")
	t.Setenv("ENFORCER_VALIDATE_STRICT", "true")
	t.Setenv("ENFORCER_VALIDATE_NO_WARNINGS", "true")
	t.Setenv("ENFORCER_REQUEST_STRICT", "1")
	t.Setenv("ENFORCER_RANDOM_MAX_COUNT", "7")
	t.Setenv("ENFORCER_MAX_INLINE_SIZE", "5242880")
	t.Setenv("ENFORCER_ALLOW_PRIVATE_IPS", "true")

	c := loadConfig()

	assert.False(t, c.CacheEnabled)
	assert.Equal(t, 50, c.CacheMaxSize)
	assert.Equal(t, 30*time.Minute, c.CacheFileTTL)
	assert.Equal(t, 2*time.Minute, c.CacheURLTTL)
	assert.Equal(t, 10*time.Minute, c.CacheContentTTL)
	assert.Equal(t, 30*time.Second, c.CacheSweepInterval)
	assert.Equal(t, 200, c.Limit)
	assert.Equal(t, 500, c.MaxLimit)
	assert.True(t, c.ValidateStrict)
	assert.True(t, c.ValidateNoWarnings)
	assert.True(t, c.RequestStrict)
	assert.Equal(t, 7, c.RandomMaxCount)
	assert.Equal(t, int64(5242880), c.MaxInlineSize)
	assert.True(t, c.AllowPrivateIPs)
}

func TestLoadConfig_InvalidValues_UseDefaults(t *testing.T) {
	clearEnforcerEnv(t)
	t.Setenv("ENFORCER_CACHE_MAX_SIZE", "banana")
	t.Setenv("ENFORCER_CACHE_FILE_TTL", "not-a-duration")
	t.Setenv("ENFORCER_CACHE_ENABLED", "maybe")
	t.Setenv("ENFORCER_LIMIT", "-5")
	t.Setenv("ENFORCER_MAX_INLINE_SIZE", "abc")
	t.Setenv("ENFORCER_MAX_LIMIT", "0")
	t.Setenv("ENFORCER_CACHE_SWEEP_INTERVAL", "-1s")

	c := loadConfig()

	assert.True(t, c.CacheEnabled)
	assert.Equal(t, 10, c.CacheMaxSize)
	assert.Equal(t, 15*time.Minute, c.CacheFileTTL)
	assert.Equal(t, 100, c.Limit)
	assert.Equal(t, int64(10*1024*1024), c.MaxInlineSize)
	assert.Equal(t, 1000, c.MaxLimit)
	assert.Equal(t, 60*time.Second, c.CacheSweepInterval)
}

func TestLoadConfig_BareSecondsDuration(t *testing.T) {
	clearEnforcerEnv(t)
	t.Setenv("ENFORCER_CACHE_SWEEP_INTERVAL", "90")
	t.Setenv("ENFORCER_CACHE_URL_TTL", " 1h30m ")

	c := loadConfig()

	assert.Equal(t, 90*time.Second, c.CacheSweepInterval)
	assert.Equal(t, 90*time.Minute, c.CacheURLTTL)
}

func TestToDuration(t *testing.T) {
	tests := map[string]time.Duration{
		"45":    45 * time.Second,
		"250ms": 250 * time.Millisecond,
		"2h":    2 * time.Hour,
	}
	for in, want := range tests {
		got, err := toDuration(in)
		if assert.NoError(t, err, in) {
			assert.Equal(t, want, got, in)
		}
	}
	_, err := toDuration("soon")
	assert.Error(t, err)
}

func TestLoadConfig_PartialOverrides(t *testing.T) {
	clearEnforcerEnv(t)
	t.Setenv("ENFORCER_LIMIT", "42")
	t.Setenv("ENFORCER_CACHE_URL_TTL", "10m")

	c := loadConfig()

	assert.Equal(t, 42, c.Limit)
	assert.Equal(t, 10*time.Minute, c.CacheURLTTL)
	// Unchanged defaults:
	assert.Equal(t, 1000, c.MaxLimit)
	assert.Equal(t, 15*time.Minute, c.CacheFileTTL)
	assert.True(t, c.CacheEnabled)
}

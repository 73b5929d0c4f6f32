package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// serverConfig holds the MCP server settings that clients can change through
// the environment of the server process.
type serverConfig struct {
	// Cache settings.
	CacheEnabled       bool
	CacheMaxSize       int
	CacheFileTTL       time.Duration
	CacheURLTTL        time.Duration
	CacheContentTTL    time.Duration
	CacheSweepInterval time.Duration

	// Pagination defaults.
	Limit    int
	MaxLimit int

	// Validate tool defaults.
	ValidateStrict     bool
	ValidateNoWarnings bool

	// decode_request tool defaults.
	RequestStrict bool

	// random tool defaults.
	RandomMaxCount int

	// Input limits.
	MaxInlineSize   int64
	AllowPrivateIPs bool
}

// cfg is the active server configuration, read once when the package is
// loaded.
var cfg = loadConfig()

// loadConfig reads the ENFORCER_* environment variables. A value that does
// not parse, or a number or duration that is not positive, is logged and
// replaced by its default.
func loadConfig() *serverConfig {
	return &serverConfig{
		CacheEnabled:       envFlag("ENFORCER_CACHE_ENABLED", true),
		CacheMaxSize:       envPositive("ENFORCER_CACHE_MAX_SIZE", 10, cast.ToIntE),
		CacheFileTTL:       envPositive("ENFORCER_CACHE_FILE_TTL", 15*time.Minute, toDuration),
		CacheURLTTL:        envPositive("ENFORCER_CACHE_URL_TTL", 5*time.Minute, toDuration),
		CacheContentTTL:    envPositive("ENFORCER_CACHE_CONTENT_TTL", 15*time.Minute, toDuration),
		CacheSweepInterval: envPositive("ENFORCER_CACHE_SWEEP_INTERVAL", time.Minute, toDuration),
		Limit:              envPositive("ENFORCER_LIMIT", 100, cast.ToIntE),
		MaxLimit:           envPositive("ENFORCER_MAX_LIMIT", 1000, cast.ToIntE),
		ValidateStrict:     envFlag("ENFORCER_VALIDATE_STRICT", false),
		ValidateNoWarnings: envFlag("ENFORCER_VALIDATE_NO_WARNINGS", false),
		RequestStrict:      envFlag("ENFORCER_REQUEST_STRICT", false),
		RandomMaxCount:     envPositive("ENFORCER_RANDOM_MAX_COUNT", 100, cast.ToIntE),
		MaxInlineSize:      envPositive("ENFORCER_MAX_INLINE_SIZE", int64(10<<20), cast.ToInt64E),
		AllowPrivateIPs:    envFlag("ENFORCER_ALLOW_PRIVATE_IPS", false),
	}
}

func envFlag(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		slog.Warn("ignoring invalid setting", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

func envPositive[T int | int64 | time.Duration](key string, fallback T, conv func(any) (T, error)) T {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := conv(v)
	if err != nil || n <= 0 {
		slog.Warn("ignoring invalid setting", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

// toDuration parses a Go duration string. A bare integer is a number of
// seconds.
func toDuration(v any) (time.Duration, error) {
	if s, ok := v.(string); ok {
		if _, err := strconv.Atoi(s); err == nil {
			v = s + "s"
		}
	}
	return cast.ToDurationE(v)
}

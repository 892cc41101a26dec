// config.go
// ----------
// BackendKind selects the OMS dialect; Config carries the per-process settings
// for the transport (cache max-age, timeout, throttle, debug). Both are read
// once at startup and not mutated afterwards.
package omsbridge

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/opengovern/oms-bridge/internal"
)

type BackendKind int

const (
	// LegacyBackend is the OFBiz based OMS and the default.
	LegacyBackend BackendKind = iota
	// ModernBackend is the Moqui based OMS.
	ModernBackend
)

func (k BackendKind) String() string {
	if k == ModernBackend {
		return "MOQUI"
	}
	return "OFBIZ"
}

// ParseBackendKind maps a configuration value to a BackendKind. Anything
// other than MOQUI selects the legacy backend.
func ParseBackendKind(s string) BackendKind {
	if strings.EqualFold(strings.TrimSpace(s), "MOQUI") {
		return ModernBackend
	}
	return LegacyBackend
}

const DefaultTimeout = 30 * time.Second

// Config keys as read from viper. With the OMS env prefix they map to
// OMS_SYSTEM_TYPE, OMS_CACHE_MAX_AGE and so on.
const (
	KeySystemType  = "system_type"
	KeyCacheMaxAge = "cache_max_age"
	KeyTimeout     = "timeout"
	KeyRateLimit   = "rate_limit"
	KeyRateBurst   = "rate_burst"
	KeyInstance    = "instance"
	KeyToken       = "token"
	KeyDebug       = "debug"
	KeyRedisAddr   = "redis_addr"
)

type Config struct {
	Backend BackendKind

	CacheMaxAge time.Duration // 0 disables caching
	Timeout     time.Duration

	RequestsPerSecond float64 // 0 disables throttling
	Burst             int

	// RedisAddr, when set, shares the response cache through Redis.
	RedisAddr string

	Debug bool
}

// ConfigFromViper builds a Config from an already loaded viper instance.
func ConfigFromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Backend:           ParseBackendKind(v.GetString(KeySystemType)),
		Timeout:           DefaultTimeout,
		RequestsPerSecond: v.GetFloat64(KeyRateLimit),
		Burst:             v.GetInt(KeyRateBurst),
		RedisAddr:         v.GetString(KeyRedisAddr),
		Debug:             v.GetBool(KeyDebug),
	}

	maxAge, err := internal.ParseMaxAge(v.GetString(KeyCacheMaxAge))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", KeyCacheMaxAge, err)
	}
	cfg.CacheMaxAge = maxAge

	if s := v.GetString(KeyTimeout); s != "" {
		timeout, err := internal.ParseMaxAge(s)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", KeyTimeout, err)
		}
		if timeout > 0 {
			cfg.Timeout = timeout
		}
	}

	if cfg.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("%s must not be negative", KeyRateLimit)
	}
	if cfg.RequestsPerSecond > 0 && cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return cfg, nil
}

package omsbridge

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackendKind(t *testing.T) {
	tests := []struct {
		in   string
		want BackendKind
	}{
		{"MOQUI", ModernBackend},
		{" moqui ", ModernBackend},
		{"OFBIZ", LegacyBackend},
		{"", LegacyBackend},
		{"something-else", LegacyBackend},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseBackendKind(tc.in), "%q", tc.in)
	}
	assert.Equal(t, "MOQUI", ModernBackend.String())
	assert.Equal(t, "OFBIZ", LegacyBackend.String())
}

func TestConfigFromViper_Defaults(t *testing.T) {
	cfg, err := ConfigFromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, LegacyBackend, cfg.Backend)
	assert.Zero(t, cfg.CacheMaxAge)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Zero(t, cfg.RequestsPerSecond)
	assert.Empty(t, cfg.RedisAddr)
}

func TestConfigFromViper(t *testing.T) {
	v := viper.New()
	v.Set(KeySystemType, "moqui")
	v.Set(KeyCacheMaxAge, "30")
	v.Set(KeyTimeout, "5s")
	v.Set(KeyRateLimit, 2.5)
	v.Set(KeyRedisAddr, "localhost:6379")
	v.Set(KeyDebug, true)

	cfg, err := ConfigFromViper(v)
	require.NoError(t, err)

	assert.Equal(t, ModernBackend, cfg.Backend)
	assert.Equal(t, 30*time.Second, cfg.CacheMaxAge)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 2.5, cfg.RequestsPerSecond)
	assert.Equal(t, 1, cfg.Burst, "burst defaults to one when throttling")
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.True(t, cfg.Debug)
}

func TestConfigFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"bad max age", KeyCacheMaxAge, "soon"},
		{"negative max age", KeyCacheMaxAge, "-5"},
		{"bad timeout", KeyTimeout, "later"},
		{"negative rate", KeyRateLimit, -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tc.key, tc.val)
			_, err := ConfigFromViper(v)
			assert.Error(t, err)
		})
	}
}

package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(configs ...EndpointConfig) *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    5,
		DefaultWindow:   time.Minute,
		Allowlist:       map[string]bool{"10.0.0.1": true},
		Blocklist:       map[string]bool{"10.0.0.2": true},
		EndpointConfigs: configs,
	}
}

func TestLimiter_DefaultLimit(t *testing.T) {
	limiter := NewLimiter(testConfig())
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, info := limiter.Allow("1.2.3.4", "/v1/cv/abc", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 5, info.Limit)
	}

	allowed, info := limiter.Allow("1.2.3.4", "/v1/cv/abc", "GET")
	assert.False(t, allowed)
	assert.Zero(t, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestLimiter_RemainingDecreases(t *testing.T) {
	limiter := NewLimiter(testConfig())
	defer limiter.Stop()

	_, first := limiter.Allow("1.2.3.4", "/x", "GET")
	_, second := limiter.Allow("1.2.3.4", "/x", "GET")
	assert.Equal(t, 4, first.Remaining)
	assert.Equal(t, 3, second.Remaining)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	limiter := NewLimiter(testConfig(EndpointConfig{Path: "/v1/cv", Method: "POST", Limit: 1, Window: time.Hour}))
	defer limiter.Stop()

	allowed, _ := limiter.Allow("1.1.1.1", "/v1/cv", "POST")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("1.1.1.1", "/v1/cv", "POST")
	assert.False(t, allowed)

	allowed, _ = limiter.Allow("2.2.2.2", "/v1/cv", "POST")
	assert.True(t, allowed)
}

func TestLimiter_AllowAndBlockLists(t *testing.T) {
	limiter := NewLimiter(testConfig(EndpointConfig{Path: "/v1/cv", Method: "POST", Limit: 1, Window: time.Hour}))
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := limiter.Allow("10.0.0.1", "/v1/cv", "POST")
		assert.True(t, allowed)
	}

	allowed, _ := limiter.Allow("10.0.0.2", "/health", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := limiter.Allow("1.2.3.4", "/v1/cv", "POST")
		assert.True(t, allowed)
	}
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	limiter := NewLimiter(testConfig())
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := limiter.Allow("1.2.3.4", "/health", "GET")
		assert.True(t, allowed)
	}
}

func TestLimiter_Burst(t *testing.T) {
	limiter := NewLimiter(testConfig(EndpointConfig{Path: "/v1/cv", Method: "POST", Limit: 30, Window: time.Hour, Burst: 3}))
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		allowed, info := limiter.Allow("1.2.3.4", "/v1/cv", "POST")
		require.True(t, allowed)
		assert.Equal(t, 30, info.Limit)
	}
	allowed, info := limiter.Allow("1.2.3.4", "/v1/cv", "POST")
	assert.False(t, allowed)
	assert.InDelta(t, 2*time.Minute, info.RetryAfter, float64(5*time.Second))
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(testConfig(EndpointConfig{Path: "/v1/cv", Method: "POST", Limit: 20, Window: time.Hour}))
	defer limiter.Stop()

	var (
		wg      sync.WaitGroup
		allowed atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow("1.2.3.4", "/v1/cv", "POST"); ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(20), allowed.Load())
}

func TestLimiter_EvictIdle(t *testing.T) {
	limiter := NewLimiter(testConfig())
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		limiter.Allow(fmt.Sprintf("10.1.0.%d", i), "/x", "GET")
	}
	limiter.evictIdle(time.Now().Add(time.Second))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Empty(t, limiter.buckets)
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(nil)
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		name   string
		path   string
		method string
		want   string
	}{
		{"exact upload", "/v1/cv", "POST", "/v1/cv"},
		{"exact stream", "/v1/cv/stream", "POST", "/v1/cv/stream"},
		{"prefix read", "/v1/cv/abc-123", "GET", "/v1/cv/"},
		{"prefix delete", "/v1/cv/abc-123", "DELETE", "/v1/cv/"},
		{"no match", "/other", "GET", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Path)
		})
	}

	health := MatchEndpoint("/health", "GET", configs)
	require.NotNil(t, health)
	assert.Zero(t, health.Limit)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_UPLOADS_PER_HOUR", "7")
	t.Setenv("RATE_LIMIT_ALLOWLIST", "10.0.0.1, 10.0.0.3")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.True(t, cfg.Allowlist["10.0.0.3"])
	for _, e := range cfg.EndpointConfigs {
		if e.Method == "POST" {
			assert.Equal(t, 7, e.Limit)
		}
	}

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}

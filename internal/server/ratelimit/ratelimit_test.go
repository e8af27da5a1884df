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

// newTestLimiter returns a limiter without a cleanup goroutine and with a controllable clock
func newTestLimiter(cfg *Config) (*Limiter, *time.Time) {
	cfg.Enabled = true
	cfg.CleanupInterval = 0
	l := NewLimiter(cfg)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiter_AllowsBurstThenDenies(t *testing.T) {
	l, _ := newTestLimiter(&Config{DefaultLimit: 5, DefaultWindow: time.Minute})

	for i := 0; i < 5; i++ {
		allowed, info := l.Allow("1.2.3.4", "/documents", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 5, info.Limit)
		assert.Equal(t, "default", info.Name)
	}

	allowed, info := l.Allow("1.2.3.4", "/documents", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, info.RetryAfter, 13*time.Second)
}

func TestLimiter_Refill(t *testing.T) {
	l, now := newTestLimiter(&Config{DefaultLimit: 60, DefaultWindow: time.Minute})

	for i := 0; i < 60; i++ {
		l.Allow("client", "/catalog", "GET")
	}
	allowed, _ := l.Allow("client", "/catalog", "GET")
	require.False(t, allowed)

	*now = now.Add(1100 * time.Millisecond)
	allowed, _ = l.Allow("client", "/catalog", "GET")
	assert.True(t, allowed)
	allowed, _ = l.Allow("client", "/catalog", "GET")
	assert.False(t, allowed)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(&Config{DefaultLimit: 1, DefaultWindow: time.Minute})

	allowed, _ := l.Allow("a", "/catalog", "GET")
	assert.True(t, allowed)
	allowed, _ = l.Allow("a", "/catalog", "GET")
	assert.False(t, allowed)
	allowed, _ = l.Allow("b", "/catalog", "GET")
	assert.True(t, allowed)
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})

	for i := 0; i < 10; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/catalog", "GET")
		assert.True(t, allowed)
	}
	allowed, info := l.Allow("10.0.0.2", "/catalog", "GET")
	assert.False(t, allowed)
	assert.Equal(t, "blacklist", info.Name)
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("client", "/catalog", "GET")
		assert.True(t, allowed)
	}
	assert.Equal(t, 0, l.Len())
}

func TestLimiter_GenerateIsStricter(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(30),
	})

	for i := 0; i < 5; i++ {
		allowed, info := l.Allow("client", "/documents/generate", "POST")
		require.True(t, allowed)
		assert.Equal(t, "generate", info.Name)
	}
	allowed, _ := l.Allow("client", "/documents/generate", "POST")
	assert.False(t, allowed)

	// streaming and batch share the prefix rule, not the exact-path bucket
	allowed, _ = l.Allow("client", "/documents/generate/stream", "POST")
	assert.True(t, allowed)

	// reads are unaffected
	allowed, _ = l.Allow("client", "/documents", "GET")
	assert.True(t, allowed)
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	l, _ := newTestLimiter(&Config{DefaultLimit: 1, DefaultWindow: time.Minute})
	for i := 0; i < 10; i++ {
		allowed, _ := l.Allow("client", "/health", "GET")
		assert.True(t, allowed)
	}
	assert.Equal(t, 0, l.Len())
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(&Config{DefaultLimit: 50, DefaultWindow: time.Minute})

	var allowedCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("client", "/catalog", "GET"); ok {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(50), allowedCount.Load())
}

func TestLimiter_CleanupBuckets(t *testing.T) {
	l, now := newTestLimiter(&Config{DefaultLimit: 10, DefaultWindow: time.Minute})

	for i := 0; i < 3; i++ {
		l.Allow(fmt.Sprintf("client-%d", i), "/catalog", "GET")
	}
	require.Equal(t, 3, l.Len())

	*now = now.Add(2 * time.Hour)
	l.Allow("fresh", "/catalog", "GET")
	l.cleanupBuckets(now.Add(-time.Hour))
	assert.Equal(t, 1, l.Len())
}

func TestNewLimiter_NilConfigAndStop(t *testing.T) {
	l := NewLimiter(nil)
	require.NotNil(t, l)
	allowed, _ := l.Allow("client", "/catalog", "GET")
	assert.True(t, allowed)

	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs(30)

	tests := []struct {
		name   string
		path   string
		method string
		want   string
	}{
		{"exact generate", "/documents/generate", "POST", "generate"},
		{"stream uses generate prefix", "/documents/generate/stream", "POST", "generate"},
		{"batch uses generate prefix", "/documents/generate/batch", "POST", "generate"},
		{"download", "/documents/123/download", "POST", "download"},
		{"equity", "/equity/split", "POST", "equity"},
		{"health", "/health", "GET", "unlimited"},
		{"metrics", "/metrics", "GET", "unlimited"},
		{"read falls through", "/documents/123", "GET", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")
	t.Setenv("RATE_LIMIT_GENERATE_PER_HOUR", "7")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.True(t, cfg.Whitelist["10.0.0.2"])
	assert.Equal(t, 7, MatchEndpoint("/documents/generate", "POST", cfg.EndpointConfigs).Limit)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}

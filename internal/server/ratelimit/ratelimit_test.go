package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// newTestLimiter builds a limiter and ties its cleanup goroutine, if any,
// to the test's lifetime.
func newTestLimiter(t *testing.T, cfg *Config) *Limiter {
	t.Helper()
	l := NewLimiter(cfg)
	t.Cleanup(l.Stop)
	return l
}

// drain spends n tokens and fails the test on the first denial.
func drain(t *testing.T, l *Limiter, client, endpoint, method string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if allowed, _ := l.Allow(client, endpoint, method); !allowed {
			t.Fatalf("request %d of %d denied, want allowed", i+1, n)
		}
	}
}

func TestLimiter_Allow(t *testing.T) {
	l := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	})

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("203.0.113.7", "/outcomes", "GET")
		if !allowed {
			t.Fatalf("request %d denied inside the budget", i+1)
		}
		if info.Limit != 10 {
			t.Errorf("info.Limit = %d, want 10", info.Limit)
		}
		if want := 9 - i; info.Remaining != want {
			t.Errorf("after request %d: Remaining = %d, want %d", i+1, info.Remaining, want)
		}
	}

	allowed, info := l.Allow("203.0.113.7", "/outcomes", "GET")
	if allowed {
		t.Error("request beyond the budget was allowed")
	}
	if info.Remaining != 0 {
		t.Errorf("denied info.Remaining = %d, want 0", info.Remaining)
	}
	if info.RetryAfter <= 0 {
		t.Errorf("denied info.RetryAfter = %v, want > 0", info.RetryAfter)
	}
	if !info.ResetTime.After(time.Now()) {
		t.Error("denied info.ResetTime is not in the future")
	}
}

func TestLimiter_Refill(t *testing.T) {
	l := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			// 60 per minute refills one token per second.
			{Path: "/campaigns", Method: "POST", Limit: 60, Window: time.Minute, Burst: 1},
		},
	})

	if allowed, _ := l.Allow("203.0.113.7", "/campaigns", "POST"); !allowed {
		t.Fatal("first request denied")
	}

	allowed, info := l.Allow("203.0.113.7", "/campaigns", "POST")
	if allowed {
		t.Fatal("second request allowed with an empty bucket")
	}
	if info.RetryAfter <= 0 || info.RetryAfter > 2*time.Second {
		t.Errorf("RetryAfter = %v, want about one second", info.RetryAfter)
	}

	time.Sleep(1100 * time.Millisecond)

	if allowed, _ := l.Allow("203.0.113.7", "/campaigns", "POST"); !allowed {
		t.Error("request denied after a refill interval")
	}
	if allowed, _ := l.Allow("203.0.113.7", "/campaigns", "POST"); allowed {
		t.Error("request allowed after the refilled token was spent")
	}
}

func TestLimiter_Bypass(t *testing.T) {
	t.Run("whitelisted client", func(t *testing.T) {
		l := newTestLimiter(t, &Config{
			Enabled:       true,
			DefaultLimit:  1,
			DefaultWindow: time.Minute,
			Whitelist:     map[string]bool{"10.1.2.3": true},
		})

		drain(t, l, "10.1.2.3", "/outcomes", "GET", 100)

		_, info := l.Allow("10.1.2.3", "/outcomes", "GET")
		if info.Limit != 0 {
			t.Errorf("whitelisted info.Limit = %d, want 0 so no budget headers are set", info.Limit)
		}
	})

	t.Run("limiter disabled", func(t *testing.T) {
		l := newTestLimiter(t, &Config{Enabled: false})

		drain(t, l, "203.0.113.7", "/outcomes", "GET", 100)

		_, info := l.Allow("203.0.113.7", "/outcomes", "GET")
		if info.Limit != 0 {
			t.Errorf("disabled info.Limit = %d, want 0", info.Limit)
		}
	})

	t.Run("blacklisted client", func(t *testing.T) {
		l := newTestLimiter(t, &Config{
			Enabled:       true,
			DefaultLimit:  1000,
			DefaultWindow: time.Minute,
			Blacklist:     map[string]bool{"198.51.100.9": true},
		})

		if allowed, _ := l.Allow("198.51.100.9", "/outcomes", "GET"); allowed {
			t.Error("blacklisted client was allowed")
		}
	})
}

func TestLimiter_EndpointOverride(t *testing.T) {
	l := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/campaigns", Method: "POST", Limit: 5, Window: time.Hour, Burst: 5},
		},
	})

	drain(t, l, "203.0.113.7", "/campaigns", "POST", 5)

	allowed, info := l.Allow("203.0.113.7", "/campaigns", "POST")
	if allowed {
		t.Error("sixth campaign start allowed, want denial at the override limit")
	}
	if info.Limit != 5 {
		t.Errorf("info.Limit = %d, want the override limit 5", info.Limit)
	}

	// Other routes stay on the default budget.
	allowed, info = l.Allow("203.0.113.7", "/outcomes", "GET")
	if !allowed {
		t.Error("unrelated route denied")
	}
	if info.Limit != 1000 {
		t.Errorf("info.Limit = %d, want the default 1000", info.Limit)
	}
}

func TestLimiter_Burst(t *testing.T) {
	// Burst below Limit caps how much of the budget can be spent at once.
	l := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/campaigns", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		},
	})

	drain(t, l, "203.0.113.7", "/campaigns", "POST", 5)

	if allowed, _ := l.Allow("203.0.113.7", "/campaigns", "POST"); allowed {
		t.Error("request allowed past the burst capacity")
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
	})

	var wg sync.WaitGroup
	var granted atomic.Int64
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := l.Allow("203.0.113.7", "/outcomes", "GET"); allowed {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	// 200 racing requests against a budget of 100 must grant exactly 100.
	if got := granted.Load(); got != 100 {
		t.Errorf("granted = %d, want exactly 100", got)
	}
}

func TestLimiter_RemovesIdleBuckets(t *testing.T) {
	l := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	})

	for i := 0; i < 5; i++ {
		l.Allow(fmt.Sprintf("203.0.113.%d", i+1), "/outcomes", "GET")
	}
	l.Allow("10.0.0.1", "/outcomes", "GET")

	// Backdate all but one so they look idle.
	l.mu.Lock()
	for key, b := range l.buckets {
		if key != "10.0.0.1:/outcomes:GET" {
			b.lastSeen = time.Now().Add(-2 * time.Hour)
		}
	}
	l.mu.Unlock()

	l.removeIdleBuckets()

	l.mu.Lock()
	remaining := len(l.buckets)
	_, active := l.buckets["10.0.0.1:/outcomes:GET"]
	l.mu.Unlock()

	if remaining != 1 {
		t.Errorf("buckets after cleanup = %d, want 1", remaining)
	}
	if !active {
		t.Error("recently used bucket did not survive cleanup")
	}
}

func TestNewLimiter_NilConfig(t *testing.T) {
	// Nil config means the permissive defaults, not a nil limiter.
	l := newTestLimiter(t, nil)

	allowed, info := l.Allow("203.0.113.7", "/outcomes", "GET")
	if !allowed {
		t.Error("request denied under default config")
	}
	if info.Limit != 1000 {
		t.Errorf("info.Limit = %d, want the default 1000", info.Limit)
	}
}

func TestLimiter_StopWithoutCleanup(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})

	// No cleanup goroutine was started; Stop must still be safe.
	l.Stop()
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/campaigns", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/campaigns/{id}", Method: "GET", Limit: 100, Window: time.Minute},
		{Path: "/campaigns/{id}/events", Method: "GET", Limit: 20, Window: time.Minute},
	}

	tests := []struct {
		name      string
		path      string
		method    string
		wantLimit int
		wantNil   bool
	}{
		{name: "exact match", path: "/campaigns", method: "POST", wantLimit: 10},
		{name: "wildcard segment", path: "/campaigns/b2f4", method: "GET", wantLimit: 100},
		{name: "nested wildcard", path: "/campaigns/b2f4/events", method: "GET", wantLimit: 20},
		{name: "wildcard matches one segment only", path: "/campaigns/b2f4/events/extra", method: "GET", wantNil: true},
		{name: "method mismatch", path: "/campaigns", method: "DELETE", wantNil: true},
		{name: "no match", path: "/outcomes", method: "GET", wantNil: true},
		{name: "health is unlimited", path: "/health", method: "GET", wantLimit: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				if match != nil {
					t.Errorf("MatchEndpoint = %+v, want nil", match)
				}
				return
			}
			if match == nil {
				t.Fatal("MatchEndpoint = nil, want a match")
			}
			if match.Limit != tt.wantLimit {
				t.Errorf("match.Limit = %d, want %d", match.Limit, tt.wantLimit)
			}
		})
	}
}

func TestDefaultEndpointConfigs(t *testing.T) {
	configs := DefaultEndpointConfigs()

	campaign := MatchEndpoint("/campaigns", "POST", configs)
	if campaign == nil {
		t.Fatal("no budget entry for campaign creation")
	}
	if campaign.Limit != 10 || campaign.Window != time.Hour {
		t.Errorf("campaign creation budget = %d per %v, want 10 per hour", campaign.Limit, campaign.Window)
	}

	for _, path := range []string{"/auth/login", "/auth/register"} {
		if MatchEndpoint(path, "POST", configs) == nil {
			t.Errorf("no budget entry for %s", path)
		}
	}
	if MatchEndpoint("/auth/password", "PUT", configs) == nil {
		t.Error("no budget entry for /auth/password")
	}
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	if cfg := LoadConfig(); cfg.Enabled {
		t.Error("cfg.Enabled = true with RATE_LIMIT_ENABLED=false")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "")

	cfg := LoadConfig()
	if !cfg.Enabled {
		t.Error("cfg.Enabled = false, want enabled by default")
	}
	if cfg.DefaultLimit != 1000 {
		t.Errorf("cfg.DefaultLimit = %d, want 1000", cfg.DefaultLimit)
	}
	if cfg.DefaultWindow != time.Minute {
		t.Errorf("cfg.DefaultWindow = %v, want one minute", cfg.DefaultWindow)
	}
	if len(cfg.EndpointConfigs) == 0 {
		t.Error("cfg.EndpointConfigs is empty, want the shipped budgets")
	}
}

func TestParseIPList(t *testing.T) {
	list := parseIPList("127.0.0.1, 10.0.0.5,192.168.0.9")
	if len(list) != 3 {
		t.Errorf("len(list) = %d, want 3", len(list))
	}
	for _, ip := range []string{"127.0.0.1", "10.0.0.5", "192.168.0.9"} {
		if !list[ip] {
			t.Errorf("list[%q] = false, want true", ip)
		}
	}

	if got := parseIPList(""); len(got) != 0 {
		t.Errorf("parseIPList(\"\") has %d entries, want none", len(got))
	}
}

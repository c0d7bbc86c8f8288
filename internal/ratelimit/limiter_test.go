package ratelimit

import (
	"net/http"
	"sync"
	"testing"
	"time"
)

// mockClock is a controllable clock for testing.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCheckBookingCreate_Cooldown(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		BookingCooldown:     10 * time.Second,
		BookingMaxPerHour:   10,
		BookingMaxIPPerHour: 30,
		Clock:               clock,
	})
	defer limiter.Close()

	identifier := "budi@example.com"
	ip := "203.0.113.10"

	// First request should be allowed
	result := limiter.CheckBookingCreate(identifier, ip)
	if !result.Allowed {
		t.Errorf("First request should be allowed, got blocked: %s", result.Reason)
	}
	limiter.RecordBookingCreate(identifier, ip)

	// Second request within cooldown should be blocked
	clock.Advance(5 * time.Second)
	result = limiter.CheckBookingCreate(identifier, ip)
	if result.Allowed {
		t.Error("Second request within cooldown should be blocked")
	}
	if result.Reason != "cooldown" {
		t.Errorf("Expected reason 'cooldown', got '%s'", result.Reason)
	}
	if result.RetryAfter != 5*time.Second {
		t.Errorf("Expected RetryAfter 5s, got %v", result.RetryAfter)
	}

	// After cooldown expires, should be allowed
	clock.Advance(6 * time.Second)
	result = limiter.CheckBookingCreate(identifier, ip)
	if !result.Allowed {
		t.Errorf("Request after cooldown should be allowed, got blocked: %s", result.Reason)
	}
}

func TestCheckBookingCreate_HourlyLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		BookingCooldown:     1 * time.Millisecond,
		BookingMaxPerHour:   3,
		BookingMaxIPPerHour: 30,
		Clock:               clock,
	})
	defer limiter.Close()

	identifier := "budi@example.com"
	ip := "203.0.113.10"

	for i := 0; i < 3; i++ {
		result := limiter.CheckBookingCreate(identifier, ip)
		if !result.Allowed {
			t.Fatalf("Request %d should be allowed, got blocked: %s", i+1, result.Reason)
		}
		limiter.RecordBookingCreate(identifier, ip)
		clock.Advance(time.Second)
	}

	result := limiter.CheckBookingCreate(identifier, ip)
	if result.Allowed {
		t.Error("Fourth request within the hour should be blocked")
	}
	if result.Reason != "hourly_limit" {
		t.Errorf("Expected reason 'hourly_limit', got '%s'", result.Reason)
	}

	// Window resets after an hour from the first request
	clock.Advance(time.Hour)
	result = limiter.CheckBookingCreate(identifier, ip)
	if !result.Allowed {
		t.Errorf("Request in new window should be allowed, got blocked: %s", result.Reason)
	}
}

func TestCheckBookingCreate_IPHourlyLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		BookingCooldown:     1 * time.Millisecond,
		BookingMaxPerHour:   100,
		BookingMaxIPPerHour: 2,
		Clock:               clock,
	})
	defer limiter.Close()

	ip := "203.0.113.10"

	// Different identifiers sharing one IP still hit the IP cap
	limiter.RecordBookingCreate("a@example.com", ip)
	clock.Advance(time.Second)
	limiter.RecordBookingCreate("b@example.com", ip)
	clock.Advance(time.Second)

	result := limiter.CheckBookingCreate("c@example.com", ip)
	if result.Allowed {
		t.Error("Third identifier on same IP should be blocked")
	}
	if result.Reason != "ip_hourly_limit" {
		t.Errorf("Expected reason 'ip_hourly_limit', got '%s'", result.Reason)
	}

	// A different IP is unaffected
	result = limiter.CheckBookingCreate("c@example.com", "203.0.113.99")
	if !result.Allowed {
		t.Errorf("Different IP should be allowed, got blocked: %s", result.Reason)
	}
}

func TestCheckBookingCreate_IdentifierNormalization(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		BookingCooldown:     60 * time.Second,
		BookingMaxPerHour:   10,
		BookingMaxIPPerHour: 30,
		Clock:               clock,
	})
	defer limiter.Close()

	limiter.RecordBookingCreate("Budi@Example.COM", "203.0.113.10")

	result := limiter.CheckBookingCreate("budi@example.com", "203.0.113.10")
	if result.Allowed {
		t.Error("Case variants of an identifier must share a cooldown")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		trustProxy bool
		want       string
	}{
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.10:54321",
			want:       "203.0.113.10",
		},
		{
			name:       "untrusted proxy ignores xff",
			remoteAddr: "10.0.0.1:54321",
			xff:        "203.0.113.10",
			trustProxy: false,
			want:       "10.0.0.1",
		},
		{
			name:       "trusted proxy uses rightmost public xff",
			remoteAddr: "10.0.0.1:54321",
			xff:        "198.51.100.7, 203.0.113.10, 192.168.1.5",
			trustProxy: true,
			want:       "203.0.113.10",
		},
		{
			name:       "trusted proxy all private xff",
			remoteAddr: "10.0.0.1:54321",
			xff:        "192.168.1.5, 10.0.0.2",
			trustProxy: true,
			want:       "10.0.0.2",
		},
		{
			name:       "trusted proxy x-real-ip fallback",
			remoteAddr: "10.0.0.1:54321",
			xRealIP:    "203.0.113.10",
			trustProxy: true,
			want:       "203.0.113.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				r.Header.Set("X-Real-IP", tt.xRealIP)
			}

			got := GetClientIP(r, tt.trustProxy)
			if got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"budi@example.com", "bu***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"+6281234567890", "***7890"},
		{"081", "***"},
	}

	for _, tt := range tests {
		if got := SanitizeIdentifier(tt.in); got != tt.want {
			t.Errorf("SanitizeIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestSecurityHeadersMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	expected := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for header, want := range expected {
		if got := rr.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("expected Content-Security-Policy header")
	}
}

func TestStrictTransportSecurityMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(StrictTransportSecurityMiddleware(31536000))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	plain := httptest.NewRecorder()
	router.ServeHTTP(plain, httptest.NewRequest(http.MethodGet, "/", nil))
	if plain.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	proxied := httptest.NewRecorder()
	router.ServeHTTP(proxied, req)
	if got := proxied.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("Strict-Transport-Security = %q", got)
	}
}

func TestRateLimiter_ReserveAndReset(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := rl.Reserve("10.0.0.1"); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	ok, retry := rl.Reserve("10.0.0.1")
	if ok {
		t.Fatal("third attempt should be limited")
	}
	if retry <= 0 || retry > time.Second {
		t.Errorf("retry after = %v, want within 1s", retry)
	}

	if ok, _ := rl.Reserve("10.0.0.2"); !ok {
		t.Error("other clients have their own bucket")
	}

	now = now.Add(time.Second)
	if ok, _ := rl.Reserve("10.0.0.1"); !ok {
		t.Error("a token refills after one second")
	}

	rl.Reset("10.0.0.1")
	for i := 0; i < 2; i++ {
		if ok, _ := rl.Reserve("10.0.0.1"); !ok {
			t.Fatalf("after reset, attempt %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_CleanupDropsIdleKeys(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.Reserve("10.0.0.1")

	now = now.Add(time.Hour)
	rl.cleanup(idleLimiterTTL)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.limiters) != 0 {
		t.Errorf("expected idle limiter to be removed, have %d", len(rl.limiters))
	}
}

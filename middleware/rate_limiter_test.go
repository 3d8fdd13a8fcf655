package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientIPGeneric_DirectRemote(t *testing.T) {
	req := httptest.NewRequest("GET", "http://api.local/", nil)
	req.RemoteAddr = "203.0.113.5:54321"
	if ip := clientIPGeneric(req, nil); ip != "203.0.113.5" {
		t.Fatalf("expected the direct peer IP, got %s", ip)
	}
}

func TestClientIPGeneric_TrustedProxyXFF(t *testing.T) {
	req := httptest.NewRequest("GET", "http://api.local/", nil)
	req.RemoteAddr = "198.51.100.10:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 198.51.100.10")
	if ip := clientIPGeneric(req, []string{"198.51.100.10"}); ip != "203.0.113.7" {
		t.Fatalf("expected the first X-Forwarded-For hop, got %s", ip)
	}
}

func TestClientIPGeneric_UntrustedProxyIgnoresXFF(t *testing.T) {
	req := httptest.NewRequest("GET", "http://api.local/", nil)
	req.RemoteAddr = "198.51.100.11:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.8, 198.51.100.11")
	// forwarding headers from an unlisted peer are spoofable, ignore them
	if ip := clientIPGeneric(req, []string{"198.51.100.10"}); ip != "198.51.100.11" {
		t.Fatalf("expected the peer IP when the proxy is untrusted, got %s", ip)
	}
}

func TestClientIPGeneric_TrustedCIDRRealIP(t *testing.T) {
	req := httptest.NewRequest("GET", "http://api.local/", nil)
	req.RemoteAddr = "10.0.8.4:18443"
	req.Header.Set("X-Real-IP", "203.0.113.40")
	if ip := clientIPGeneric(req, []string{"10.0.0.0/8"}); ip != "203.0.113.40" {
		t.Fatalf("expected X-Real-IP behind a trusted CIDR, got %s", ip)
	}
}

func TestWebhookLimiterWhitelistBypass(t *testing.T) {
	wl := NewWebhookLimiter(1, time.Minute, []string{"203.0.113.9"})
	var hits int
	h := wl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))

	// a whitelisted gateway IP retries without ever being throttled
	listed := httptest.NewRequest("POST", "http://api.local/v1/payments/callback", nil)
	listed.RemoteAddr = "203.0.113.9:9000"
	for i := 0; i < 5; i++ {
		h.ServeHTTP(httptest.NewRecorder(), listed)
	}
	if hits != 5 {
		t.Fatalf("whitelisted IP should bypass the limit, got %d hits", hits)
	}

	other := httptest.NewRequest("POST", "http://api.local/v1/payments/callback", nil)
	other.RemoteAddr = "198.51.100.20:9000"
	h.ServeHTTP(httptest.NewRecorder(), other)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for an unlisted IP over budget, got %d", rec.Code)
	}
}

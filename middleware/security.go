package middleware

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"taskmarket/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SecurityHeadersMiddleware sets the usual defensive response headers.
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

// RequestIDMiddleware assigns a request id, reusing the caller's X-Request-ID
// when present so ids can be traced across services.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" || len(reqID) > 64 {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := context.WithValue(r.Context(), utils.RequestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// RequestLogMiddleware logs one structured line per request.
func RequestLogMiddleware(next http.Handler) http.Handler {
	trusted := strings.Split(getenv("TRUSTED_PROXIES", ""), ",")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		reqID, _ := r.Context().Value(utils.RequestIDKey).(string)
		fields := logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"bytes":      rec.bytes,
			"duration":   time.Since(start).Milliseconds(),
			"ip":         clientIPGeneric(r, trusted),
			"request_id": reqID,
		}
		if uid, ok := utils.GetUserID(r); ok && uid != 0 {
			fields["user_id"] = uid
		}
		entry := logrus.WithFields(fields)
		switch {
		case rec.status >= 500:
			entry.Error("request")
		case rec.status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	})
}

// RecoveryMiddleware turns handler panics into 500 responses.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				reqID, _ := r.Context().Value(utils.RequestIDKey).(string)
				logrus.WithFields(logrus.Fields{
					"panic":      rec,
					"path":       r.URL.Path,
					"request_id": reqID,
				}).Error("panic recovered")
				utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
					Success: false,
					Message: "Internal server error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// TimeoutMiddleware bounds handler execution time.
func TimeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Request counters, exposed through the admin dashboard.
var (
	totalRequests  int64
	totalErrors    int64
	inFlightGauge  int64
	latencySamples struct {
		mu    sync.Mutex
		sumMs int64
		count int64
	}
)

// MetricsMiddleware keeps cheap process-local counters.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&totalRequests, 1)
		atomic.AddInt64(&inFlightGauge, 1)
		defer atomic.AddInt64(&inFlightGauge, -1)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		if rec.status >= 500 {
			atomic.AddInt64(&totalErrors, 1)
		}
		latencySamples.mu.Lock()
		latencySamples.sumMs += time.Since(start).Milliseconds()
		latencySamples.count++
		latencySamples.mu.Unlock()
	})
}

// MetricsSnapshot reports the counters gathered by MetricsMiddleware.
func MetricsSnapshot() map[string]interface{} {
	latencySamples.mu.Lock()
	var avg int64
	if latencySamples.count > 0 {
		avg = latencySamples.sumMs / latencySamples.count
	}
	latencySamples.mu.Unlock()
	return map[string]interface{}{
		"total_requests": atomic.LoadInt64(&totalRequests),
		"total_errors":   atomic.LoadInt64(&totalErrors),
		"in_flight":      atomic.LoadInt64(&inFlightGauge),
		"avg_latency_ms": avg,
	}
}

// SuspiciousActivityMiddleware rejects requests whose path or query smells
// like scanner traffic before they reach a handler.
func SuspiciousActivityMiddleware(next http.Handler) http.Handler {
	badFragments := []string{
		"../", "..\\", "%2e%2e", "/etc/passwd", "<script", "wp-admin",
		".php", ".env", "union select", "information_schema",
	}
	trusted := strings.Split(getenv("TRUSTED_PROXIES", ""), ",")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probe := strings.ToLower(r.URL.Path + "?" + r.URL.RawQuery)
		for _, frag := range badFragments {
			if strings.Contains(probe, frag) {
				logrus.WithFields(logrus.Fields{
					"ip":   clientIPGeneric(r, trusted),
					"path": r.URL.Path,
				}).Warn("suspicious request blocked")
				utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
					Success: false,
					Message: "Bad request",
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"taskmarket/utils"
)

// In-memory sliding-window rate limiters with trusted-proxy support and a
// progressive login-lockout tracker. Designed to be replaced by Redis later;
// the lockout path already prefers Redis when it is configured.

// clientIPGeneric resolves the caller IP, honoring X-Forwarded-For /
// X-Real-IP only when the direct peer is in the trusted list.
func clientIPGeneric(r *http.Request, trustedCIDR []string) string {
	remoteHost, _, _ := net.SplitHostPort(r.RemoteAddr)
	remoteIP := net.ParseIP(remoteHost)
	trusted := false
	for _, cidr := range trustedCIDR {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if strings.Contains(cidr, "/") {
			if _, ipnet, err := net.ParseCIDR(cidr); err == nil {
				if remoteIP != nil && ipnet.Contains(remoteIP) {
					trusted = true
					break
				}
			}
			continue
		}
		if ip := net.ParseIP(cidr); ip != nil && remoteIP != nil && ip.Equal(remoteIP) {
			trusted = true
			break
		}
	}
	if trusted {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			if len(parts) > 0 {
				return strings.TrimSpace(parts[0])
			}
		}
		if xr := r.Header.Get("X-Real-IP"); xr != "" {
			return strings.TrimSpace(xr)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func tooMany(w http.ResponseWriter, retryAfter time.Duration) {
	w.Header().Set("Content-Type", "application/json")
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
	}
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Too many requests"})
}

type window struct {
	mu     sync.Mutex
	span   time.Duration
	hits   map[string][]int64 // key -> unix nanos
	closed chan struct{}
}

func newWindow(span time.Duration) *window {
	w := &window{span: span, hits: map[string][]int64{}, closed: make(chan struct{})}
	go w.cleanupLoop()
	return w
}

// allow records a hit for key and reports whether it stays within max.
func (w *window) allow(key string, max int) bool {
	now := time.Now().UnixNano()
	cutoff := now - w.span.Nanoseconds()
	w.mu.Lock()
	defer w.mu.Unlock()
	arr := w.hits[key]
	kept := arr[:0]
	for _, t := range arr {
		if t > cutoff {
			kept = append(kept, t)
		}
	}
	if len(kept) >= max {
		w.hits[key] = kept
		return false
	}
	w.hits[key] = append(kept, now)
	return true
}

func (w *window) cleanupLoop() {
	ticker := time.NewTicker(w.span)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().UnixNano() - w.span.Nanoseconds()
			w.mu.Lock()
			for k, arr := range w.hits {
				kept := arr[:0]
				for _, t := range arr {
					if t > cutoff {
						kept = append(kept, t)
					}
				}
				if len(kept) == 0 {
					delete(w.hits, k)
				} else {
					w.hits[k] = kept
				}
			}
			w.mu.Unlock()
		case <-w.closed:
			return
		}
	}
}

// IPRateLimiter limits by client IP.
type IPRateLimiter struct {
	max     int
	win     *window
	trusted []string
}

func NewIPRateLimiter(maxReq int, span time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		max:     maxReq,
		win:     newWindow(span),
		trusted: strings.Split(os.Getenv("TRUSTED_PROXIES"), ","),
	}
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIPGeneric(r, l.trusted)
		if !l.win.allow(ip, l.max) {
			tooMany(w, l.win.span)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserRateLimiter limits by authenticated user id, with separate read and
// write budgets; unauthenticated requests fall back to the IP key.
type UserRateLimiter struct {
	maxRead  int
	maxWrite int
	win      *window
	trusted  []string
}

func NewUserRateLimiter(maxReqRead, maxReqWrite int, windowSec int) *UserRateLimiter {
	return &UserRateLimiter{
		maxRead:  maxReqRead,
		maxWrite: maxReqWrite,
		win:      newWindow(time.Duration(windowSec) * time.Second),
		trusted:  strings.Split(os.Getenv("TRUSTED_PROXIES"), ","),
	}
}

func (l *UserRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role, _ := utils.GetUserRole(r); role == "admin" {
			next.ServeHTTP(w, r)
			return
		}
		var key string
		if uid, ok := utils.GetUserID(r); ok && uid != 0 {
			key = fmt.Sprintf("u:%d", uid)
		} else {
			key = "ip:" + clientIPGeneric(r, l.trusted)
		}
		max := l.maxRead
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			max = l.maxWrite
		}
		if !l.win.allow(key, max) {
			tooMany(w, l.win.span)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WebhookLimiter limits gateway callbacks by IP with a whitelist bypass.
type WebhookLimiter struct {
	max       int
	win       *window
	whitelist map[string]bool
}

func NewWebhookLimiter(maxReq int, span time.Duration, whitelist []string) *WebhookLimiter {
	wl := map[string]bool{}
	for _, ip := range whitelist {
		wl[strings.TrimSpace(ip)] = true
	}
	return &WebhookLimiter{max: maxReq, win: newWindow(span), whitelist: wl}
}

func (l *WebhookLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIPGeneric(r, nil)
		if !l.whitelist[ip] && !l.win.allow(ip, l.max) {
			tooMany(w, l.win.span)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Login lockout: progressive penalties per user, Redis-backed when available
// so lockouts hold across instances.

var (
	loginMu   sync.Mutex
	failedMap = map[string]int{}
	lockMap   = map[string]int64{} // key -> unix nano until
)

func lockoutDuration(failures int) time.Duration {
	switch {
	case failures <= 3:
		return 0
	case failures == 4:
		return 1 * time.Minute
	case failures == 5:
		return 5 * time.Minute
	case failures == 6:
		return 15 * time.Minute
	default:
		return 30 * time.Minute
	}
}

func IsAccountLocked(userID uint) (bool, time.Duration) {
	if utils.RedisClient != nil {
		lockKey := fmt.Sprintf("login:lock:u:%d", userID)
		ttl, err := utils.RedisClient.TTL(context.Background(), lockKey).Result()
		if err == nil && ttl > 0 {
			return true, ttl
		}
		return false, 0
	}
	loginMu.Lock()
	defer loginMu.Unlock()
	key := fmt.Sprintf("u:%d", userID)
	until := lockMap[key]
	if until == 0 {
		return false, 0
	}
	now := time.Now().UnixNano()
	if until > now {
		return true, time.Duration(until - now)
	}
	delete(lockMap, key)
	failedMap[key] = 0
	return false, 0
}

func RecordFailedLogin(userID uint) {
	if utils.RedisClient != nil {
		ctx := context.Background()
		failKey := fmt.Sprintf("login:fail:u:%d", userID)
		lockKey := fmt.Sprintf("login:lock:u:%d", userID)
		failures, err := utils.RedisClient.Incr(ctx, failKey).Result()
		if err == nil {
			_, _ = utils.RedisClient.Expire(ctx, failKey, 30*time.Minute).Result()
			if d := lockoutDuration(int(failures)); d > 0 {
				_ = utils.RedisClient.Set(ctx, lockKey, "1", d).Err()
			}
			return
		}
		// on Redis error fall back to in-memory
	}
	loginMu.Lock()
	defer loginMu.Unlock()
	key := fmt.Sprintf("u:%d", userID)
	failedMap[key]++
	if d := lockoutDuration(failedMap[key]); d > 0 {
		lockMap[key] = time.Now().UnixNano() + d.Nanoseconds()
	}
}

func ResetFailedLogin(userID uint) {
	if utils.RedisClient != nil {
		ctx := context.Background()
		_, _ = utils.RedisClient.Del(ctx,
			fmt.Sprintf("login:fail:u:%d", userID),
			fmt.Sprintf("login:lock:u:%d", userID)).Result()
		return
	}
	loginMu.Lock()
	defer loginMu.Unlock()
	key := fmt.Sprintf("u:%d", userID)
	delete(lockMap, key)
	failedMap[key] = 0
}

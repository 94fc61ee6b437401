package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/GymAurCode/in-ven-tory/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const purgeInterval = 5 * time.Minute

// windowCounter is a fixed-window request counter for one client IP.
type windowCounter struct {
	mu        sync.Mutex
	count     int
	windowEnd time.Time
}

// ipLimiter tracks one windowCounter per client IP.
type ipLimiter struct {
	name    string
	limit   int
	window  time.Duration
	mu      sync.Mutex
	clients map[string]*windowCounter
}

func newIPLimiter(name string, limit int, window time.Duration) *ipLimiter {
	l := &ipLimiter{name: name, limit: limit, window: window, clients: make(map[string]*windowCounter)}
	go l.purgeLoop()
	return l
}

// allow counts one request for ip and reports whether it is within the limit,
// plus the end of the current window.
func (l *ipLimiter) allow(ip string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	wc, ok := l.clients[ip]
	if !ok {
		wc = &windowCounter{}
		l.clients[ip] = wc
	}
	l.mu.Unlock()

	wc.mu.Lock()
	defer wc.mu.Unlock()
	if now.After(wc.windowEnd) {
		wc.count = 0
		wc.windowEnd = now.Add(l.window)
	}
	wc.count++
	return wc.count <= l.limit, wc.windowEnd
}

// purgeLoop drops counters whose window has ended so idle IPs do not pile up.
func (l *ipLimiter) purgeLoop() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for now := range ticker.C {
		l.mu.Lock()
		purged := 0
		for ip, wc := range l.clients {
			wc.mu.Lock()
			if now.After(wc.windowEnd) {
				delete(l.clients, ip)
				purged++
			}
			wc.mu.Unlock()
		}
		remaining := len(l.clients)
		l.mu.Unlock()

		if purged > 0 {
			log.Debug().Str("limiter", l.name).Int("purged", purged).Int("remaining", remaining).Msg("rate limiter purged")
		}
	}
}

func (l *ipLimiter) middleware(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", windowEnd.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// RateLimiter limits every client IP to limit requests per window.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newIPLimiter("api", limit, window).middleware("Too many requests. Try again shortly.")
}

// LoginRateLimiter allows 20 login attempts per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newIPLimiter("login", 20, time.Minute).middleware("Too many login attempts. Try again in a minute.")
}

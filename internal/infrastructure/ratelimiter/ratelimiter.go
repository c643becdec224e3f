package ratelimiter

import (
	"math"
	"net/http"
	"sync"
	"time"
)

const defaultSourceKey = "X-RateLimit-Key"

// Limiter throttles websocket handshakes per source (header key or remote
// address). This is separate from the per-connection chat throttle, which
// lives on the connection session.
type Limiter interface {
	Allow(sourceKey string) bool
	GetSourceKey(r *http.Request) string
	Remaining(sourceKey string) int
	GetMaxBurst() int
}

type bucket struct {
	tokens   float64
	lastFill int64 // Unix milliseconds
}

type tokenBucketLimiter struct {
	maxRatePerMillisecond float64
	maxBurst              int
	sourceHeaderKey       string

	mu      sync.Mutex
	buckets map[string]*bucket
	ttl     time.Duration
	touched map[string]time.Time
}

type Options struct {
	MaxRatePerSecond int
	MaxBurst         int
	CacheTTL         time.Duration
	SourceHeaderKey  string
}

func New(options Options) Limiter {
	if options.CacheTTL == 0 {
		options.CacheTTL = 10 * time.Second
	}
	if options.MaxBurst <= 0 {
		options.MaxBurst = options.MaxRatePerSecond
	}
	if options.SourceHeaderKey == "" {
		options.SourceHeaderKey = defaultSourceKey
	}

	l := &tokenBucketLimiter{
		maxRatePerMillisecond: float64(options.MaxRatePerSecond) / 1000.0,
		maxBurst:              options.MaxBurst,
		sourceHeaderKey:       options.SourceHeaderKey,
		buckets:               make(map[string]*bucket),
		touched:               make(map[string]time.Time),
		ttl:                   options.CacheTTL,
	}
	go l.evictStale()
	return l
}

func (l *tokenBucketLimiter) Allow(sourceKey string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.refill(sourceKey, time.Now().UnixMilli())
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

func (l *tokenBucketLimiter) Remaining(sourceKey string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.refill(sourceKey, time.Now().UnixMilli())
	return int(math.Floor(b.tokens))
}

func (l *tokenBucketLimiter) GetMaxBurst() int {
	return l.maxBurst
}

func (l *tokenBucketLimiter) GetSourceKey(r *http.Request) string {
	if key := r.Header.Get(l.sourceHeaderKey); key != "" {
		return key
	}

	// Fall back to IP address
	return r.RemoteAddr
}

// refill must be called with l.mu held.
func (l *tokenBucketLimiter) refill(sourceKey string, now int64) *bucket {
	b, ok := l.buckets[sourceKey]
	if !ok {
		b = &bucket{tokens: float64(l.maxBurst), lastFill: now}
		l.buckets[sourceKey] = b
	}

	if elapsed := now - b.lastFill; elapsed > 0 {
		b.tokens = math.Min(float64(l.maxBurst), b.tokens+float64(elapsed)*l.maxRatePerMillisecond)
		b.lastFill = now
	}
	l.touched[sourceKey] = time.Now()
	return b
}

func (l *tokenBucketLimiter) evictStale() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-l.ttl)

		l.mu.Lock()
		for key, at := range l.touched {
			if at.Before(cutoff) {
				delete(l.buckets, key)
				delete(l.touched, key)
			}
		}
		l.mu.Unlock()
	}
}

// Package ratelimit provides per-client token bucket rate limiting for the
// dashboard API.
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

// DefaultScope names the shared bucket of requests that match no rule.
const DefaultScope = "default"

// Rule limits one route. A Path ending in "/" matches every path below it.
type Rule struct {
	Path   string
	Method string
	Limit  int           // requests per Window; 0 means unlimited
	Window time.Duration
	Burst  int // bucket capacity, defaults to Limit
}

func (r Rule) matches(path, method string) bool {
	if r.Method != method {
		return false
	}
	if strings.HasSuffix(r.Path, "/") {
		return strings.HasPrefix(path, r.Path)
	}
	return r.Path == path
}

// scope identifies the bucket a rule feeds. Every path matching the rule
// shares it.
func (r Rule) scope() string {
	if r.Path == "" {
		return DefaultScope
	}
	return r.Method + " " + r.Path
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Rules           []Rule
}

// RefreshRules returns the rules guarding the endpoints that reach upstream
// sources. Health and metrics scrapes are never limited.
func RefreshRules(limit int, window time.Duration, burst int) []Rule {
	return []Rule{
		{Path: "/health", Method: "GET"},
		{Path: "/metrics", Method: "GET"},
		{Path: "/api/refresh", Method: "POST", Limit: limit, Window: window, Burst: burst},
	}
}

// Info contains information about rate limit status. Scope is the bucket the
// request was counted against, bounded by the number of rules.
type Info struct {
	Scope      string
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type bucket struct {
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
}

func (b *bucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.refillRate)
	}
	b.lastRefill = now
}

func (b *bucket) after(tokens float64) time.Duration {
	return time.Duration(tokens / b.refillRate * float64(time.Second))
}

// take consumes a token if one is available and reports the bucket status.
func (b *bucket) take(now time.Time) Info {
	b.refill(now)
	b.lastAccess = now

	info := Info{Allowed: b.tokens >= 1, ResetTime: now}
	if info.Allowed {
		b.tokens--
	} else {
		info.RetryAfter = b.after(1 - b.tokens)
	}
	if b.tokens < b.capacity {
		info.ResetTime = now.Add(b.after(b.capacity - b.tokens))
	}
	info.Remaining = int(b.tokens)
	return info
}

// Limiter manages one token bucket per client, route and method.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	config  Config
	now     func() time.Time

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewLimiter creates a limiter. When cleanup is configured a background
// goroutine evicts idle buckets until Stop is called.
func NewLimiter(config Config) *Limiter {
	if config.DefaultWindow <= 0 {
		config.DefaultWindow = time.Minute
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = time.Hour
	}

	l := &Limiter{
		buckets: make(map[string]*bucket),
		config:  config,
		now:     time.Now,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.stop = make(chan struct{})
		l.done = make(chan struct{})
		go l.cleanup(config.CleanupInterval)
	}
	return l
}

func (l *Limiter) rule(path, method string) Rule {
	for _, r := range l.config.Rules {
		if r.matches(path, method) {
			return r
		}
	}
	return Rule{Limit: l.config.DefaultLimit, Window: l.config.DefaultWindow}
}

// Allow checks whether clientID may call method on path. Buckets are kept per
// client and rule, so varying the path under one rule or under the default
// never opens a new bucket.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}

	r := l.rule(path, method)
	if r.Limit <= 0 {
		return true, Info{Allowed: true, Scope: r.scope()}
	}
	window := r.Window
	if window <= 0 {
		window = l.config.DefaultWindow
	}
	capacity := r.Burst
	if capacity <= 0 {
		capacity = r.Limit
	}

	now := l.now()
	key := clientID + " " + r.scope()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{
			capacity:   float64(capacity),
			refillRate: float64(r.Limit) / window.Seconds(),
			tokens:     float64(capacity),
			lastRefill: now,
		}
		l.buckets[key] = b
	}
	info := b.take(now)
	l.mu.Unlock()

	info.Limit = r.Limit
	info.Scope = r.scope()
	return info.Allowed, info
}

func (l *Limiter) cleanup(interval time.Duration) {
	defer close(l.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.evictIdle()
		case <-l.stop:
			return
		}
	}
}

// evictIdle removes buckets not used within IdleTTL.
func (l *Limiter) evictIdle() int {
	cutoff := l.now().Add(-l.config.IdleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	evicted := 0
	for key, b := range l.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(l.buckets, key)
			evicted++
		}
	}
	return evicted
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	if l.stop == nil {
		return
	}
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

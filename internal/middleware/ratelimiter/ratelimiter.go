package ratelimiter

import (
	"sync"
	"time"
)

// RateLimiter implements a token bucket rate limiter
type RateLimiter struct {
	tokens     float64
	capacity   float64
	rate       float64
	lastRefill time.Time
	mu         sync.Mutex
	timer      *time.Timer
	key        string           // Reference to key for cleanup
	parent     *UserRateLimiter // Reference to parent for cleanup
}

// UserRateLimiter manages rate limiting for multiple identities
type UserRateLimiter struct {
	limiters       map[string]*RateLimiter
	mu             sync.RWMutex
	rate           float64
	capacity       float64
	expirationTime time.Duration
}

// New creates a new UserRateLimiter instance
func New(rate float64, capacity float64, expirationTime time.Duration) *UserRateLimiter {
	return &UserRateLimiter{
		limiters:       make(map[string]*RateLimiter),
		rate:           rate,
		capacity:       capacity,
		expirationTime: expirationTime,
	}
}

// cleanup removes a specific limiter
func (url *UserRateLimiter) cleanup(key string) {
	url.mu.Lock()
	delete(url.limiters, key)
	url.mu.Unlock()
}

// resetTimer resets the expiration timer for a limiter
func (rl *RateLimiter) resetTimer() {
	if rl.timer != nil {
		rl.timer.Stop()
	}

	rl.timer = time.AfterFunc(rl.parent.expirationTime, func() {
		rl.parent.cleanup(rl.key)
	})
}

// getLimiter gets or creates a rate limiter for an identity
func (url *UserRateLimiter) getLimiter(key string) *RateLimiter {
	// First try read-only lookup
	url.mu.RLock()
	limiter, exists := url.limiters[key]
	url.mu.RUnlock()

	if exists {
		limiter.resetTimer()
		return limiter
	}

	// If not found, acquire write lock and create new
	url.mu.Lock()
	defer url.mu.Unlock()

	// Double-check after acquiring write lock
	limiter, exists = url.limiters[key]
	if exists {
		limiter.resetTimer()
		return limiter
	}

	limiter = &RateLimiter{
		tokens:     url.capacity,
		capacity:   url.capacity,
		rate:       url.rate,
		lastRefill: time.Now(),
		key:        key,
		parent:     url,
	}
	url.limiters[key] = limiter
	limiter.resetTimer()

	return limiter
}

func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()

	// Refill tokens based on elapsed time
	rl.tokens += elapsed * rl.rate
	if rl.tokens > rl.capacity {
		rl.tokens = rl.capacity
	}

	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}

	return false
}

// Allow checks if a request should be allowed for a given identity
func (url *UserRateLimiter) Allow(key string) bool {
	limiter := url.getLimiter(key)

	return limiter.Allow()
}

// Stop cleans up all timers
func (url *UserRateLimiter) Stop() {
	url.mu.Lock()
	defer url.mu.Unlock()

	for _, limiter := range url.limiters {
		if limiter.timer != nil {
			limiter.timer.Stop()
		}
	}
}

func OnceInSecond() *UserRateLimiter { return New(1, 1, 1*time.Hour) }

func OnceInMinute() *UserRateLimiter { return New(1.0/60, 1, 1*time.Hour) }

func Rps10() *UserRateLimiter { return New(10, 10, 1*time.Hour) }

func Rps100() *UserRateLimiter { return New(100, 100, 1*time.Hour) }

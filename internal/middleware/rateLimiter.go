package middleware

import (
	"sync"
	"time"

	"github.com/akolanti/GoRAG/internal/config"
	"golang.org/x/time/rate"
)

var limiterInstance = NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND)

// IPRateLimiter keeps a token bucket per client IP. Entries that have not
// been seen for an hour are dropped so the map cannot grow without bound.
//
//TODO: when the users grow
// I must offload this key-value to redis
type IPRateLimiter struct {
	mu        sync.RWMutex
	ips       map[string]*ipLimiter
	rateLimit rate.Limit
	burstRate int
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	l := &IPRateLimiter{
		ips:       make(map[string]*ipLimiter),
		rateLimit: r,
		burstRate: b,
	}
	go l.pruneLoop()
	return l
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.RLock()
	entry, exists := i.ips[ip]
	i.mu.RUnlock()
	if exists {
		i.mu.Lock()
		entry.lastSeen = time.Now()
		i.mu.Unlock()
		return entry.limiter
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	// another request may have raced us between the two locks
	if entry, exists = i.ips[ip]; !exists {
		entry = &ipLimiter{limiter: rate.NewLimiter(i.rateLimit, i.burstRate)}
		i.ips[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

func (i *IPRateLimiter) pruneLoop() {
	const staleAfter = time.Hour
	for range time.Tick(10 * time.Minute) {
		cutoff := time.Now().Add(-staleAfter)
		i.mu.Lock()
		for ip, entry := range i.ips {
			if entry.lastSeen.Before(cutoff) {
				delete(i.ips, ip)
			}
		}
		i.mu.Unlock()
	}
}

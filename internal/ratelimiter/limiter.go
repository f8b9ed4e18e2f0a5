package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ClientLimiters holds one token bucket per client key (usually the remote IP).
// Buckets idle for longer than ttl are dropped on the next sweep so scanners
// hitting the site once do not grow the map forever.
type ClientLimiters struct {
	mu        sync.Mutex
	clients   map[string]*client
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates ClientLimiters granting ratePerSec tokens per second per client
// with the given burst.
func New(ratePerSec, burst int, ttl time.Duration) *ClientLimiters {
	return &ClientLimiters{
		clients: make(map[string]*client),
		limit:   rate.Limit(ratePerSec),
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Allow reports whether the client identified by key may proceed now.
// It never blocks.
func (cl *ClientLimiters) Allow(key string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.now()
	cl.sweep(now)

	c, ok := cl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(cl.limit, cl.burst)}
		cl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients.
func (cl *ClientLimiters) Len() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.clients)
}

// sweep must be called with mu held.
func (cl *ClientLimiters) sweep(now time.Time) {
	if now.Sub(cl.lastSweep) < cl.ttl {
		return
	}
	for key, c := range cl.clients {
		if now.Sub(c.lastSeen) >= cl.ttl {
			delete(cl.clients, key)
		}
	}
	cl.lastSweep = now
}

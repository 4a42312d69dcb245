package services

import (
	"sync"
	"time"
)

// attemptCounter counts failed code verifications per mobile in process.
// It backs the account service when no Redis client is configured.
type attemptCounter struct {
	mu      sync.Mutex
	windows map[string]attemptWindow
}

type attemptWindow struct {
	n       int
	expires time.Time
}

func newAttemptCounter() *attemptCounter {
	return &attemptCounter{windows: make(map[string]attemptWindow)}
}

func (c *attemptCounter) count(key string, now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.windows[key]
	if !ok {
		return 0
	}
	if !now.Before(w.expires) {
		delete(c.windows, key)
		return 0
	}
	return w.n
}

// incr adds a failure and returns the count. A new window lasts ttl from the
// first failure, mirroring INCR followed by EXPIRE.
func (c *attemptCounter) incr(key string, now time.Time, ttl time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.windows[key]
	if !ok || !now.Before(w.expires) {
		w = attemptWindow{expires: now.Add(ttl)}
	}
	w.n++
	c.windows[key] = w
	return w.n
}

func (c *attemptCounter) reset(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.windows, key)
}

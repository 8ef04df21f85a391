package limiter

import (
	"context"
	"encoding/hex"
	"sync"
	"time"
)

type entry struct {
	fails        int
	blockedUntil time.Time
	updatedAt    time.Time
}

// Memory is an in-process limiter with a failure window and lockout.
// Failures older than window restart the count; maxFails failures block the
// (username, ip) pair for blockFor.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]*entry
	window   time.Duration
	maxFails int
	blockFor time.Duration
	now      func() time.Time

	lastSweep time.Time
}

var _ Limiter = (*Memory)(nil)

// NewMemory constructs an in-memory limiter.
func NewMemory(window time.Duration, maxFails int, blockFor time.Duration) *Memory {
	return &Memory{
		entries:  map[string]*entry{},
		window:   window,
		maxFails: maxFails,
		blockFor: blockFor,
		now:      time.Now,
	}
}

func key(username string, ipHash []byte) string {
	return username + "|" + hex.EncodeToString(ipHash)
}

// Allow reports whether login is currently allowed and a retry-after duration.
func (l *Memory) Allow(_ context.Context, username string, ipHash []byte) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key(username, ipHash)]
	if !ok {
		return true, 0, nil
	}
	if now := l.now(); e.blockedUntil.After(now) {
		return false, e.blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

// Success resets counters for (username, ip).
func (l *Memory) Success(_ context.Context, username string, ipHash []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key(username, ipHash))
	return nil
}

// Failure records a failed attempt; may set a block until a future time.
func (l *Memory) Failure(_ context.Context, username string, ipHash []byte) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	k := key(username, ipHash)
	e, ok := l.entries[k]
	if !ok {
		e = &entry{}
		l.entries[k] = e
	}
	if now.Sub(e.updatedAt) > l.window {
		e.fails = 0
	}
	e.fails++
	e.updatedAt = now

	if e.fails >= l.maxFails {
		e.blockedUntil = now.Add(l.blockFor)
		e.fails = 0
		return true, l.blockFor, nil
	}
	return false, 0, nil
}

// sweep drops entries that are neither blocked nor inside the failure window.
// It runs at most once per window so Failure stays amortized O(1).
// Callers hold l.mu.
func (l *Memory) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for k, e := range l.entries {
		if l.stale(e, now) {
			delete(l.entries, k)
		}
	}
}

func (l *Memory) stale(e *entry, now time.Time) bool {
	return !e.blockedUntil.After(now) && now.Sub(e.updatedAt) > l.window
}

// Len returns the number of tracked (username, ip) pairs.
func (l *Memory) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

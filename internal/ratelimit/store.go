// Package ratelimit implements the fixed-window attempt limiter that guards
// authentication-sensitive endpoints (login, forgot-password, video-token).
//
// The limiter is deliberately a fixed window, not a sliding one: the window
// starts at the first recorded attempt and is never extended by later
// attempts. This trades precision for O(1) memory per identifier and a
// worst-case burst that is easy to reason about (at most MaxAttempts inside
// any window, plus MaxAttempts again immediately after expiry). Adequate
// for abuse deterrence, not exact quota enforcement.
//
// Check and Record are separate calls so callers can check before doing
// expensive work and record only actual attempts (e.g. record a failed
// login, reset on success), so a successful first attempt is never
// penalized.
package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Policy bounds attempts for one limit class: at most MaxAttempts within a
// fixed Window starting at the first recorded attempt.
type Policy struct {
	MaxAttempts int
	Window      time.Duration
}

// Decision is the outcome of a Check call.
type Decision struct {
	// Allowed reports whether the caller may proceed.
	Allowed bool
	// RetryAfter is the window expiry to report to throttled callers.
	// Zero when Allowed.
	RetryAfter time.Time
	// Remaining is the number of attempts left in the current window.
	Remaining int
}

// entry tracks attempts for one (class, identifier) pair. An entry whose
// expiresAt has passed is logically absent regardless of its attempts value.
type entry struct {
	attempts  int
	expiresAt time.Time
}

// Store is a process-wide, in-memory attempt store. Construct one instance
// at startup and share it; tests construct their own isolated instances.
//
// All operations are synchronous map manipulations under a mutex: they never
// block on I/O and never return errors.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	clock   Clock
	metrics Metrics
}

// StoreConfig configures a Store. Zero values fall back to the system clock
// and no-op metrics.
type StoreConfig struct {
	Clock   Clock
	Metrics Metrics
}

// NewStore creates an empty attempt store.
func NewStore(cfg StoreConfig) *Store {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NoopMetrics{}
	}
	return &Store{
		entries: make(map[string]entry),
		clock:   cfg.Clock,
		metrics: cfg.Metrics,
	}
}

// key builds the composite store key. The unit separator keeps a crafted
// identifier from colliding with another class's keyspace.
func key(class, identifier string) string {
	return class + "\x1f" + identifier
}

// Check reports whether the identifier may make another attempt against the
// limit class. It records nothing: an absent or expired entry yields an
// allowed decision without creating state.
func (s *Store) Check(class, identifier string, policy Policy) Decision {
	now := s.clock.Now()

	s.mu.Lock()
	e, ok := s.entries[key(class, identifier)]
	s.mu.Unlock()

	if !ok || !now.Before(e.expiresAt) {
		s.metrics.RecordCheck(class, "allowed")
		return Decision{Allowed: true, Remaining: policy.MaxAttempts}
	}

	if e.attempts >= policy.MaxAttempts {
		s.metrics.RecordCheck(class, "denied")
		return Decision{Allowed: false, RetryAfter: e.expiresAt}
	}

	s.metrics.RecordCheck(class, "allowed")
	return Decision{Allowed: true, Remaining: policy.MaxAttempts - e.attempts}
}

// Record notes one attempt. The first attempt in a window creates the entry
// with expiry now+Window; later attempts increment the count in place and do
// not extend the expiry. An expired entry is replaced by a fresh window.
func (s *Store) Record(class, identifier string, policy Policy) {
	now := s.clock.Now()
	k := key(class, identifier)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[k]
	if !ok || !now.Before(e.expiresAt) {
		s.entries[k] = entry{attempts: 1, expiresAt: now.Add(policy.Window)}
		return
	}
	e.attempts++
	s.entries[k] = e
}

// Reset deletes the entry unconditionally. Called after a successful login
// to clear prior failed attempts.
func (s *Store) Reset(class, identifier string) {
	s.mu.Lock()
	delete(s.entries, key(class, identifier))
	s.mu.Unlock()
}

// Clear wipes the entire store. Test and ops utility.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

// Len returns the number of live and expired-but-unswept entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// sweep deletes all expired entries and returns how many were removed.
func (s *Store) sweep() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// StartCleanup runs the periodic sweep until ctx is cancelled. It bounds
// memory growth from abandoned identifiers; correctness does not depend on
// it because Check treats expired entries as absent.
//
// Run it in its own goroutine:
//
//	go store.StartCleanup(ctx, 5*time.Minute)
func (s *Store) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("rate limit cleanup started", slog.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("rate limit cleanup stopped")
			return
		case <-ticker.C:
			removed := s.sweep()
			s.metrics.RecordSweep(removed)
			slog.Debug("rate limit cleanup completed",
				slog.Int("entries_removed", removed),
				slog.Int("entries_remaining", s.Len()))
		}
	}
}

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore() (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewStore(StoreConfig{Clock: clock}), clock
}

var loginPolicy = Policy{MaxAttempts: 5, Window: 15 * time.Minute}

func TestStore_CheckWithoutRecords(t *testing.T) {
	store, _ := newTestStore()

	d := store.Check("login", "a@example.com", loginPolicy)

	assert.True(t, d.Allowed)
	assert.Equal(t, 5, d.Remaining)
	assert.True(t, d.RetryAfter.IsZero())
	assert.Equal(t, 0, store.Len(), "Check must not create state")
}

func TestStore_DeniesAfterMaxAttempts(t *testing.T) {
	store, clock := newTestStore()

	for i := 0; i < 5; i++ {
		d := store.Check("login", "a@example.com", loginPolicy)
		require.True(t, d.Allowed, "attempt %d should be allowed", i+1)
		assert.Equal(t, 5-i, d.Remaining)
		store.Record("login", "a@example.com", loginPolicy)
	}

	d := store.Check("login", "a@example.com", loginPolicy)
	assert.False(t, d.Allowed)
	assert.Equal(t, clock.now.Add(15*time.Minute), d.RetryAfter)
}

func TestStore_WindowIsFixedFromFirstAttempt(t *testing.T) {
	store, clock := newTestStore()
	start := clock.now

	store.Record("login", "a@example.com", loginPolicy)

	// Later attempts must not extend the window.
	clock.Advance(10 * time.Minute)
	for i := 0; i < 4; i++ {
		store.Record("login", "a@example.com", loginPolicy)
	}

	d := store.Check("login", "a@example.com", loginPolicy)
	require.False(t, d.Allowed)
	assert.Equal(t, start.Add(15*time.Minute), d.RetryAfter)

	// Window expiry is measured from the first attempt, so at start+15m
	// the identifier is clear again.
	clock.Advance(5*time.Minute + time.Second)
	d = store.Check("login", "a@example.com", loginPolicy)
	assert.True(t, d.Allowed)
	assert.Equal(t, 5, d.Remaining)
}

func TestStore_RecordAfterExpiryStartsFreshWindow(t *testing.T) {
	store, clock := newTestStore()

	for i := 0; i < 5; i++ {
		store.Record("login", "a@example.com", loginPolicy)
	}
	clock.Advance(16 * time.Minute)

	store.Record("login", "a@example.com", loginPolicy)

	d := store.Check("login", "a@example.com", loginPolicy)
	assert.True(t, d.Allowed)
	assert.Equal(t, 4, d.Remaining, "stale count must not carry into the new window")
}

func TestStore_ResetClearsIdentifier(t *testing.T) {
	store, _ := newTestStore()

	for i := 0; i < 5; i++ {
		store.Record("login", "a@example.com", loginPolicy)
	}
	require.False(t, store.Check("login", "a@example.com", loginPolicy).Allowed)

	store.Reset("login", "a@example.com")

	d := store.Check("login", "a@example.com", loginPolicy)
	assert.True(t, d.Allowed)
	assert.Equal(t, 5, d.Remaining)

	// Reset of an absent identifier is a no-op.
	store.Reset("login", "nobody@example.com")
}

func TestStore_ClassesAndIdentifiersAreIndependent(t *testing.T) {
	store, _ := newTestStore()
	forgotPolicy := Policy{MaxAttempts: 3, Window: 15 * time.Minute}

	for i := 0; i < 5; i++ {
		store.Record("login", "a@example.com", loginPolicy)
	}

	assert.False(t, store.Check("login", "a@example.com", loginPolicy).Allowed)
	assert.True(t, store.Check("login", "b@example.com", loginPolicy).Allowed)
	assert.True(t, store.Check("forgot_password", "a@example.com", forgotPolicy).Allowed)
}

func TestStore_ClassKeyCollision(t *testing.T) {
	store, _ := newTestStore()

	// An identifier crafted to look like another class's key must not
	// share state with it.
	store.Record("a", "x:b", loginPolicy)
	store.Record("a:x", "b", loginPolicy)

	assert.Equal(t, 2, store.Len())
}

func TestStore_Clear(t *testing.T) {
	store, _ := newTestStore()

	store.Record("login", "a@example.com", loginPolicy)
	store.Record("video_token", "user:42", Policy{MaxAttempts: 30, Window: time.Minute})
	require.Equal(t, 2, store.Len())

	store.Clear()

	assert.Equal(t, 0, store.Len())
	assert.True(t, store.Check("login", "a@example.com", loginPolicy).Allowed)
}

func TestStore_SweepRemovesOnlyExpired(t *testing.T) {
	store, clock := newTestStore()

	store.Record("login", "old@example.com", loginPolicy)
	clock.Advance(10 * time.Minute)
	store.Record("login", "new@example.com", loginPolicy)
	clock.Advance(6 * time.Minute)

	removed := store.sweep()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())
	// The surviving entry still enforces its window.
	store.Record("login", "new@example.com", loginPolicy)
	d := store.Check("login", "new@example.com", loginPolicy)
	assert.Equal(t, 3, d.Remaining)
}

func TestStore_StartCleanupStopsOnCancel(t *testing.T) {
	store, _ := newTestStore()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		store.StartCleanup(ctx, 10*time.Millisecond)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup did not stop after context cancellation")
	}
}

func TestStore_PrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := NewStore(StoreConfig{Clock: clock, Metrics: NewPrometheusMetrics(reg)})

	for i := 0; i < 5; i++ {
		store.Check("login", "a@example.com", loginPolicy)
		store.Record("login", "a@example.com", loginPolicy)
	}
	store.Check("login", "a@example.com", loginPolicy)

	families, err := reg.Gather()
	require.NoError(t, err)

	var checks *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "ratelimit_checks_total" {
			checks = mf
		}
	}
	require.NotNil(t, checks)

	got := map[string]float64{}
	for _, m := range checks.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == "outcome" {
				got[l.GetValue()] = m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, float64(5), got["allowed"])
	assert.Equal(t, float64(1), got["denied"])
}

package app_test

import (
	"sync"
	"testing"
	"time"

	"timed-quiz/internal/app"
	"timed-quiz/internal/domain"
)

// manualClock hands out tickers that only fire when the test says so.
type manualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *manualClock) NewTicker(time.Duration) app.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *manualClock) created() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

func (c *manualClock) live() []*manualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*manualTicker
	for _, t := range c.tickers {
		if !t.isStopped() {
			out = append(out, t)
		}
	}
	return out
}

type manualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *manualTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// onlyTicker returns the single running ticker or fails the test.
func onlyTicker(t *testing.T, clock *manualClock) *manualTicker {
	t.Helper()
	live := clock.live()
	if len(live) != 1 {
		t.Fatalf("expected exactly one running ticker, got %d", len(live))
	}
	return live[0]
}

// fire delivers one tick and waits for the resulting state on updates.
func fire(t *testing.T, tk *manualTicker, updates <-chan domain.QuizState) domain.QuizState {
	t.Helper()
	select {
	case tk.ch <- time.Now():
	case <-time.After(2 * time.Second):
		t.Fatalf("ticker goroutine did not accept tick")
	}
	return next(t, updates)
}

func next(t *testing.T, updates <-chan domain.QuizState) domain.QuizState {
	t.Helper()
	select {
	case st, ok := <-updates:
		if !ok {
			t.Fatalf("updates channel closed")
		}
		return st
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for state update")
	}
	return domain.QuizState{}
}

package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant a DeterministicClock reports.
var Epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock hands out ledger timestamps that are identical on
// every run: Epoch, then one second later on each call. Safe for
// concurrent use.
type DeterministicClock struct {
	mu   sync.Mutex
	next time.Time
}

func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{next: Epoch}
}

// Now returns the current tick and advances the clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(time.Second)
	return now
}

// Reset rewinds the clock to Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	c.next = Epoch
	c.mu.Unlock()
}

package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant a StepClock reports.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// counter is a thread-safe monotonic counter whose first next() is 1.
type counter struct {
	mu  sync.Mutex
	seq int64
}

func (c *counter) next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// StepClock reports Epoch plus one second per call, so journal rows get
// distinct, reproducible timestamps. Safe for concurrent use.
type StepClock struct {
	ticks counter
}

// NewStepClock returns a StepClock whose first Now is Epoch + 1s.
func NewStepClock() *StepClock {
	return &StepClock{}
}

// Now implements store.Clock.
func (c *StepClock) Now() time.Time {
	return Epoch.Add(time.Duration(c.ticks.next()) * time.Second)
}

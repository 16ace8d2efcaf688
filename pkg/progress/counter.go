// Package progress tracks the running document total shared by all export
// workers.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// Counter is a single document counter shared by every worker session.
// Updates are atomic; concurrent workers may interleave their reports on
// the diagnostic stream, but the final total is always the exact sum of
// every added batch. The mutex keeps each diagnostic line's bytes
// contiguous; the writer itself need not be concurrency-safe.
type Counter struct {
	total atomic.Int64
	mu    sync.Mutex
	out   io.Writer
}

// NewCounter creates a counter reporting to out. A nil writer reports to
// stderr, keeping stdout free for document output.
func NewCounter(out io.Writer) *Counter {
	if out == nil {
		out = os.Stderr
	}
	return &Counter{out: out}
}

// Add atomically increases the counter by n and returns the new total.
func (c *Counter) Add(n int) int64 {
	return c.total.Add(int64(n))
}

// Report adds a completed batch and writes one diagnostic line for it.
func (c *Counter) Report(n int) int64 {
	total := c.Add(n)

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "Fetched batch of %d, have now processed %d\n", n, total)
	return total
}

// Total returns the current running total.
func (c *Counter) Total() int64 {
	return c.total.Load()
}

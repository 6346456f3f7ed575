// Package gate bounds how many extraction calls are in flight at once,
// process-wide. Callers beyond the limit queue FIFO and are resumed in
// arrival order. The gate carries no timeout or cancellation; the deadline
// on the extractor's HTTP client is what frees a stuck slot.
package gate

import "sync"

type Gate struct {
	mu      sync.Mutex
	limit   int
	inUse   int
	waiters []chan struct{}
}

// New creates a gate with the given number of slots. Limits below 1 are
// raised to 1.
func New(limit int) *Gate {
	if limit < 1 {
		limit = 1
	}

	return &Gate{limit: limit}
}

func (g *Gate) acquire() {
	g.mu.Lock()

	if g.inUse < g.limit {
		g.inUse++
		g.mu.Unlock()

		return
	}

	ready := make(chan struct{})
	g.waiters = append(g.waiters, ready)
	g.mu.Unlock()

	<-ready
}

func (g *Gate) release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.waiters) > 0 {
		// Hand the slot directly to the head of the queue; inUse is
		// unchanged because ownership transfers without going free.
		ready := g.waiters[0]
		g.waiters[0] = nil
		g.waiters = g.waiters[1:]
		close(ready)

		return
	}

	g.inUse--
}

// Do runs fn once a slot is available and returns the slot afterward on
// every path, including a panicking fn.
func (g *Gate) Do(fn func() error) error {
	g.acquire()
	defer g.release()

	return fn()
}

// Run is Do for operations with a typed result.
func Run[T any](g *Gate, fn func() (T, error)) (T, error) {
	var out T

	err := g.Do(func() error {
		var err error
		out, err = fn()

		return err
	})

	return out, err
}

// InUse reports how many slots are currently held.
func (g *Gate) InUse() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.inUse
}

// Waiting reports how many callers are queued for a slot.
func (g *Gate) Waiting() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.waiters)
}

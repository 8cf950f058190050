// Package simulate gives the in-process marketplace backends realistic
// latency and injectable failures.
package simulate

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"
)

// ErrInjected is returned for randomly injected failures.
var ErrInjected = errors.New("simulated backend failure")

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Faults decides which backend calls fail. Queued failures for an
// operation take precedence over the random rate.
type Faults struct {
	mu   sync.Mutex
	rate float64
	rng  *rand.Rand
	next map[string][]error
}

// NewFaults fails roughly rate of all calls. seed makes the sequence
// reproducible.
func NewFaults(rate float64, seed uint64) *Faults {
	return &Faults{
		rate: rate,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		next: make(map[string][]error),
	}
}

// FailNext queues err for the next call to op.
func (f *Faults) FailNext(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next[op] = append(f.next[op], err)
}

// Check returns the failure for this call to op, or nil.
func (f *Faults) Check(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if queued := f.next[op]; len(queued) > 0 {
		err := queued[0]
		f.next[op] = queued[1:]
		return err
	}
	if f.rate > 0 && f.rng.Float64() < f.rate {
		return ErrInjected
	}
	return nil
}

// ABOUTME: Generation-stamped batch accumulator for streaming queries.
// ABOUTME: Rejects batches that arrive after their invocation ended.
package query

import (
	"sync"
)

// Accumulator collects batches delivered for one query invocation at a time.
// Begin starts an invocation and returns its generation; Append only accepts
// batches carrying the current generation while the invocation is open.
// Accumulator is safe for concurrent use, so several routes may feed one
// accumulator in parallel.
type Accumulator[T any] struct {
	mu     sync.Mutex
	gen    uint64
	open   bool
	items  []T
	staled int
}

// Begin discards anything collected so far and opens a new invocation.
func (a *Accumulator[T]) Begin() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen++
	a.open = true
	a.items = nil
	return a.gen
}

// Append adds a batch for generation gen.
func (a *Accumulator[T]) Append(gen uint64, batch []T) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.open || gen != a.gen {
		a.staled++
		return ErrStaleDelivery
	}
	a.items = append(a.items, batch...)
	return nil
}

// Deliver returns a DeliverFunc bound to generation gen.
func (a *Accumulator[T]) Deliver(gen uint64) DeliverFunc[T] {
	return func(batch []T) error {
		return a.Append(gen, batch)
	}
}

// Finish seals generation gen and returns what it collected. Later
// deliveries for gen are discarded. Finishing a superseded generation
// returns nil.
func (a *Accumulator[T]) Finish(gen uint64) []T {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		return nil
	}
	a.open = false
	items := a.items
	a.items = nil
	if items == nil {
		items = []T{}
	}
	return items
}

// Discarded returns how many deliveries were rejected as stale.
func (a *Accumulator[T]) Discarded() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.staled
}

// Collect runs one query invocation through a fresh accumulator and returns
// every delivered item. On failure nothing is returned.
func Collect[T any](run func(deliver DeliverFunc[T]) error) ([]T, error) {
	var acc Accumulator[T]
	gen := acc.Begin()
	err := run(acc.Deliver(gen))
	items := acc.Finish(gen)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Package store keeps client-side caches of tasks, teams and notifications.
package store

import (
	"sync"

	"github.com/yukikurage/teamtask/internal/client"
)

// observers is a set of change callbacks.
type observers struct {
	mu   sync.Mutex
	subs map[uint64]func()
	next uint64
}

// Subscribe registers fn for change notification and returns its cancel func.
func (o *observers) Subscribe(fn func()) func() {
	o.mu.Lock()
	if o.subs == nil {
		o.subs = make(map[uint64]func())
	}
	id := o.next
	o.next++
	o.subs[id] = fn
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
		})
	}
}

func (o *observers) notify() {
	o.mu.Lock()
	subs := make([]func(), 0, len(o.subs))
	for _, fn := range o.subs {
		subs = append(subs, fn)
	}
	o.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// collection is an ordered cache keyed by id. Fetches are sequenced so a
// response older than the last applied one is dropped.
type collection[T any] struct {
	observers

	mu       sync.RWMutex
	items    []T
	meta     client.Meta
	id       func(T) uint64
	inflight int
	err      string
	issued   uint64
	applied  uint64
}

func newCollection[T any](id func(T) uint64) *collection[T] {
	return &collection[T]{id: id}
}

func (c *collection[T]) beginFetch() uint64 {
	c.mu.Lock()
	c.inflight++
	c.issued++
	seq := c.issued
	c.err = ""
	c.mu.Unlock()
	c.notify()
	return seq
}

// endFetch applies a fetch result. It reports whether the result was kept.
// onApply runs under the write lock.
func (c *collection[T]) endFetch(seq uint64, items []T, meta client.Meta, err error, onApply func()) bool {
	c.mu.Lock()
	c.inflight--
	kept := seq > c.applied
	if kept {
		if err != nil {
			c.err = client.Message(err)
		} else {
			c.applied = seq
			c.items = items
			c.meta = meta
			c.err = ""
			if onApply != nil {
				onApply()
			}
		}
	}
	c.mu.Unlock()
	c.notify()
	return kept && err == nil
}

func (c *collection[T]) begin() {
	c.mu.Lock()
	c.inflight++
	c.err = ""
	c.mu.Unlock()
	c.notify()
}

// end finishes a mutation. apply runs under the write lock and only on success.
func (c *collection[T]) end(err error, apply func()) {
	c.mu.Lock()
	c.inflight--
	if err != nil {
		c.err = client.Message(err)
	} else if apply != nil {
		apply()
	}
	c.mu.Unlock()
	c.notify()
}

// The helpers below expect the write lock to be held.

func (c *collection[T]) prepend(item T) {
	c.items = append([]T{item}, c.items...)
}

func (c *collection[T]) replace(item T) bool {
	id := c.id(item)
	for i := range c.items {
		if c.id(c.items[i]) == id {
			c.items[i] = item
			return true
		}
	}
	return false
}

func (c *collection[T]) remove(id uint64) (T, bool) {
	var removed T
	found := false
	out := c.items[:0:0]
	for _, it := range c.items {
		if c.id(it) == id {
			removed, found = it, true
			continue
		}
		out = append(out, it)
	}
	c.items = out
	return removed, found
}

func (c *collection[T]) find(id uint64) int {
	for i := range c.items {
		if c.id(c.items[i]) == id {
			return i
		}
	}
	return -1
}

func (c *collection[T]) snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

func (c *collection[T]) loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inflight > 0
}

func (c *collection[T]) lastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// reject records an error raised before any request was sent.
func (c *collection[T]) reject(err error) error {
	c.mu.Lock()
	c.err = client.Message(err)
	c.mu.Unlock()
	c.notify()
	return err
}

func (c *collection[T]) clearError() {
	c.mu.Lock()
	c.err = ""
	c.mu.Unlock()
	c.notify()
}

func (c *collection[T]) reset() {
	c.mu.Lock()
	c.items = nil
	c.meta = client.Meta{}
	c.err = ""
	c.applied = c.issued
	c.mu.Unlock()
	c.notify()
}

// Package arena is a block allocator with stable slot addresses.
//
// Slots are carved out of fixed-size blocks. A slot never moves while it is
// allocated, so a pointer returned by Alloc stays valid until the matching
// Free. Freed slots are reused before new blocks are created, and a block is
// released once every slot in it has been freed.
package arena

import (
	"errors"
	"sync"

	"go.uber.org/atomic"
)

// ErrExhausted is returned by Alloc when the arena already holds its maximum
// number of live slots.
var ErrExhausted = errors.New("arena exhausted")

// Slot identifies one allocated slot. The zero Slot is invalid.
type Slot[T any] struct {
	b *block[T]
	i int32
}

// Valid reports whether s was returned by Alloc.
func (s Slot[T]) Valid() bool { return s.b != nil }

type block[T any] struct {
	slots []T
	used  []bool
	free  []int32
	live  int
	// position in Arena.partial, -1 when the block has no free slots
	partialIdx int
	released   bool
	// generation of the arena when the block was created
	gen uint64
}

// Arena hands out slots of T. It is safe for concurrent use.
type Arena[T any] struct {
	mu        sync.Mutex
	blockSize int
	maxSlots  int

	cur     *block[T]
	next    int
	partial []*block[T]
	blocks  int
	gen     uint64

	live   atomic.Int64
	allocs atomic.Uint64
}

// New creates an arena whose blocks hold blockSize slots.
// maxSlots bounds the number of live slots; zero means unbounded.
func New[T any](blockSize, maxSlots int) *Arena[T] {
	if blockSize <= 0 {
		panic("arena: block size must be positive")
	}
	if maxSlots < 0 {
		panic("arena: max slots must not be negative")
	}
	return &Arena[T]{
		blockSize: blockSize,
		maxSlots:  maxSlots,
	}
}

// Alloc reserves a zeroed slot and returns its address.
func (a *Arena[T]) Alloc() (*T, Slot[T], error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.maxSlots > 0 && a.live.Load() >= int64(a.maxSlots) {
		return nil, Slot[T]{}, ErrExhausted
	}

	var (
		b *block[T]
		i int32
	)
	if n := len(a.partial); n > 0 {
		b = a.partial[n-1]
		last := len(b.free) - 1
		i = b.free[last]
		b.free = b.free[:last]
		if len(b.free) == 0 {
			a.dropPartial(b)
		}
	} else {
		if a.cur == nil || a.next == a.blockSize {
			a.cur = &block[T]{
				slots:      make([]T, a.blockSize),
				used:       make([]bool, a.blockSize),
				partialIdx: -1,
				gen:        a.gen,
			}
			a.next = 0
			a.blocks++
		}
		b = a.cur
		i = int32(a.next)
		a.next++
	}

	b.used[i] = true
	b.live++
	a.live.Inc()
	a.allocs.Inc()
	return &b.slots[i], Slot[T]{b: b, i: i}, nil
}

// Free returns a slot to the arena. The slot's value is zeroed and its
// address may be handed out again by a later Alloc.
// Freeing a slot twice panics. Freeing a slot allocated before the last Reset
// is a no-op.
func (a *Arena[T]) Free(s Slot[T]) {
	if !s.Valid() {
		panic("arena: free of invalid slot")
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	b := s.b
	if b.gen != a.gen {
		return
	}
	if b.released || !b.used[s.i] {
		panic("arena: double free")
	}
	var zero T
	b.slots[s.i] = zero
	b.used[s.i] = false
	b.live--
	a.live.Dec()

	if b.live == 0 && b != a.cur {
		a.release(b)
		return
	}
	b.free = append(b.free, s.i)
	if b.partialIdx < 0 {
		b.partialIdx = len(a.partial)
		a.partial = append(a.partial, b)
	}
}

// release unlinks a fully free block so the collector can reclaim it once
// no pointer into it remains.
func (a *Arena[T]) release(b *block[T]) {
	if b.partialIdx >= 0 {
		a.dropPartial(b)
	}
	b.released = true
	b.free = nil
	b.slots = nil
	b.used = nil
	a.blocks--
}

func (a *Arena[T]) dropPartial(b *block[T]) {
	idx := b.partialIdx
	last := len(a.partial) - 1
	a.partial[idx] = a.partial[last]
	a.partial[idx].partialIdx = idx
	a.partial[last] = nil
	a.partial = a.partial[:last]
	b.partialIdx = -1
}

// Reset drops every block. Slots handed out earlier are never reused; freeing
// one afterwards has no effect.
func (a *Arena[T]) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, b := range a.partial {
		b.partialIdx = -1
	}
	a.gen++
	a.cur = nil
	a.next = 0
	a.partial = nil
	a.blocks = 0
	a.live.Store(0)
}

// Len is the number of live slots.
func (a *Arena[T]) Len() int { return int(a.live.Load()) }

// Allocations is the number of successful Alloc calls since creation.
func (a *Arena[T]) Allocations() uint64 { return a.allocs.Load() }

// Cap is the live slot limit, zero when unbounded.
func (a *Arena[T]) Cap() int { return a.maxSlots }

// Blocks is the number of blocks currently held.
func (a *Arena[T]) Blocks() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.blocks
}

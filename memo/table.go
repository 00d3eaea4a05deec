package memo

import (
	"sync"

	"github.com/on-the-ground/hashcons/shared/helper"
	"go.uber.org/atomic"
)

type Table[K comparable, O any] struct {
	gens    [2]atomic.Pointer[sync.Map]
	head    atomic.Uint32
	size    atomic.Uint32
	maxSize uint32
	rotate  sync.Mutex
}

func NewTable[K comparable, O any](maxSize uint32) *Table[K, O] {
	if maxSize == 0 {
		panic("maxSize should be greater than 0")
	}
	t := &Table[K, O]{maxSize: maxSize}
	t.gens[0].Store(&sync.Map{})
	t.gens[1].Store(&sync.Map{})
	return t
}

func (t *Table[K, O]) Load(k K) (O, bool) {
	head := t.head.Load()
	if v, ok := load[O](t.gens[head].Load(), k); ok {
		return v, true
	}
	return load[O](t.gens[1-head].Load(), k)
}

func load[O any](m *sync.Map, k any) (O, bool) {
	return helper.GetTypedValueOf2[O](func() (any, bool) {
		return m.Load(k)
	})
}

func (t *Table[K, O]) Store(k K, v O) {
	if t.size.Load() >= t.maxSize {
		t.rotateGenerations()
	}
	t.gens[t.head.Load()].Load().Store(k, v)
	t.size.Inc()
}

// rotateGenerations drops the older generation and makes a fresh map the head.
func (t *Table[K, O]) rotateGenerations() {
	t.rotate.Lock()
	defer t.rotate.Unlock()
	if t.size.Load() < t.maxSize {
		return
	}
	next := 1 - t.head.Load()
	t.gens[next].Store(&sync.Map{})
	t.head.Store(next)
	t.size.Store(0)
}

// LoadOrCompute returns the cached result for k, computing and storing it
// with fn on a miss.
func (t *Table[K, O]) LoadOrCompute(k K, fn func(K) O) O {
	if v, ok := t.Load(k); ok {
		return v
	}
	v := fn(k)
	t.Store(k, v)
	return v
}

// Len is the number of results in the head generation.
func (t *Table[K, O]) Len() int { return int(t.size.Load()) }

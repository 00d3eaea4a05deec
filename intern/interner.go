package intern

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/on-the-ground/hashcons/intern/internal/arena"
	"github.com/on-the-ground/hashcons/shared/helper"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Interner deduplicates values of type V. It is safe for concurrent use.
//
// The table is split into shards selected by fingerprint. A shard's lock is
// held only to look up, publish or remove records; the entry itself is
// allocated outside of it, with concurrent requests for the same value
// waiting on the in-flight record instead of allocating a duplicate.
type Interner[V any] struct {
	ID string

	canon  Canonicalizer[V]
	policy Reclamation
	shards []shard[V]
	store  *arena.Arena[entry[V]]
	logger *zap.Logger

	entries atomic.Int64
	closed  atomic.Bool
	stats   counters

	// allocHook runs before each arena allocation. It is nil outside tests,
	// which set it through export_test.go to hold a population open.
	allocHook func()
}

// nextID issues entry IDs. It is shared by every Interner so that Handles
// from different Interners never compare as equal.
var nextID atomic.Uint64

// New creates an Interner using canon to detect duplicates.
func New[V any](canon Canonicalizer[V], config Config) (*Interner[V], error) {
	if canon == nil {
		panic("intern: nil Canonicalizer")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = config.withDefaults()

	in := &Interner[V]{
		ID:     uuid.New().String(),
		canon:  canon,
		policy: config.Reclamation,
		shards: make([]shard[V], config.Shards),
		store:  arena.New[entry[V]](config.ArenaBlockSize, config.MaxEntries),
		logger: config.Logger,
	}
	perShard := config.InitialCapacity / config.Shards
	for i := range in.shards {
		in.shards[i].init(perShard)
	}

	in.logger.Sugar().Debugf(
		"created interner: id: %v, reclamation: %v, shards: %v, arenaBlockSize: %v, maxEntries: %v",
		in.ID, in.policy, len(in.shards), config.ArenaBlockSize, config.MaxEntries,
	)
	return in, nil
}

// Reclamation reports the policy the Interner was created with.
func (in *Interner[V]) Reclamation() Reclamation { return in.policy }

func (in *Interner[V]) shardFor(h uint64) *shard[V] {
	return &in.shards[helper.IndexByHash(h, len(in.shards))]
}

func (in *Interner[V]) counting() bool { return in.policy != ReclaimNone }

// Intern returns the canonical Handle for v, allocating an entry if no equal
// value is live. Under a counting policy the caller becomes a holder and must
// Release the Handle.
//
// The only failure is ErrExhausted (or ErrClosed after Close); on failure no
// entry has been made visible.
func (in *Interner[V]) Intern(v V) (Handle[V], error) {
	if in.closed.Load() {
		return Handle[V]{}, ErrClosed
	}
	h := in.canon.Fingerprint(v)
	sh := in.shardFor(h)

	sh.mu.Lock()
	if r := sh.find(h, v, in.canon.Equal, &in.stats.comparisons); r != nil {
		if r.e != nil {
			if in.counting() {
				r.e.refs++
			}
			sh.mu.Unlock()
			in.stats.hits.Inc()
			return Handle[V]{e: r.e, id: r.e.id}, nil
		}
		return in.join(sh, r)
	}

	r := &record[V]{candidate: v, done: make(chan struct{})}
	sh.add(h, r)
	sh.mu.Unlock()

	if in.allocHook != nil {
		in.allocHook()
	}
	e, slot, err := in.store.Alloc()

	sh.mu.Lock()
	if err == nil && in.closed.Load() {
		in.store.Free(slot)
		err = ErrClosed
	}
	if err != nil {
		sh.remove(h, r)
		if errors.Is(err, arena.ErrExhausted) {
			err = fmt.Errorf("%w: limit of %d entries reached", ErrExhausted, in.store.Cap())
		}
		r.err = err
		sh.mu.Unlock()
		close(r.done)
		if errors.Is(err, ErrExhausted) {
			in.stats.exhausted.Inc()
			in.logger.Warn("interner exhausted",
				zap.String("id", in.ID),
				zap.String("maxEntries", humanize.Comma(int64(in.store.Cap()))),
				zap.Int64("waiters", r.waiters),
			)
		}
		return Handle[V]{}, err
	}

	e.value = v
	e.hash = h
	e.id = nextID.Inc()
	e.slot = slot
	e.owner = in
	if in.counting() {
		e.refs = 1 + r.waiters
	}
	r.e = e
	var zero V
	r.candidate = zero
	in.entries.Inc()
	sh.mu.Unlock()
	close(r.done)

	in.stats.misses.Inc()
	return Handle[V]{e: e, id: e.id}, nil
}

// join waits for an in-flight allocation of r and adopts its outcome.
// Called with sh.mu held; returns with it released. The publisher counts
// every joined waiter as a holder, so the entry cannot be reclaimed before
// the waiter sees it.
func (in *Interner[V]) join(sh *shard[V], r *record[V]) (Handle[V], error) {
	r.waiters++
	sh.mu.Unlock()
	in.stats.waits.Inc()

	<-r.done
	if r.err != nil {
		return Handle[V]{}, r.err
	}
	in.stats.hits.Inc()
	return Handle[V]{e: r.e, id: r.e.id}, nil
}

// MustIntern is like Intern but panics on failure.
func (in *Interner[V]) MustIntern(v V) Handle[V] {
	h, err := in.Intern(v)
	if err != nil {
		panic(err)
	}
	return h
}

// Lookup returns the canonical Handle for v without allocating. If v is being
// allocated concurrently, Lookup waits for the outcome. Under a counting
// policy a found Handle has been retained for the caller.
func (in *Interner[V]) Lookup(v V) (Handle[V], bool) {
	if in.closed.Load() {
		return Handle[V]{}, false
	}
	h := in.canon.Fingerprint(v)
	sh := in.shardFor(h)

	sh.mu.Lock()
	r := sh.find(h, v, in.canon.Equal, &in.stats.comparisons)
	switch {
	case r == nil:
		sh.mu.Unlock()
		return Handle[V]{}, false
	case r.e == nil:
		handle, err := in.join(sh, r)
		return handle, err == nil
	}
	if in.counting() {
		r.e.refs++
	}
	sh.mu.Unlock()
	return Handle[V]{e: r.e, id: r.e.id}, true
}

func (in *Interner[V]) retain(h Handle[V]) {
	if !in.counting() || in.closed.Load() {
		return
	}
	sh := in.shardFor(h.e.hash)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if h.e.id != h.id {
		panic("intern: retain of reclaimed Handle")
	}
	if h.e.refs <= 0 && in.policy == ReclaimRefCounted {
		panic("intern: retain of Handle with no holders")
	}
	h.e.refs++
}

func (in *Interner[V]) release(h Handle[V]) {
	if !in.counting() {
		panic("intern: Release requires a counting reclamation policy")
	}
	if in.closed.Load() {
		return
	}
	e := h.e
	sh := in.shardFor(e.hash)

	sh.mu.Lock()
	if in.closed.Load() {
		sh.mu.Unlock()
		return
	}
	if e.id != h.id {
		sh.mu.Unlock()
		panic("intern: release of reclaimed Handle")
	}
	if e.refs <= 0 {
		sh.mu.Unlock()
		panic("intern: release of Handle with no holders")
	}
	e.refs--
	if e.refs > 0 || in.policy != ReclaimRefCounted {
		sh.mu.Unlock()
		return
	}
	// The slot is freed before the lock is dropped: a concurrent Intern of
	// the same value must not find the table empty and the arena still full.
	sh.removeEntry(e)
	in.store.Free(e.slot)
	in.entries.Dec()
	sh.mu.Unlock()

	in.stats.reclaimed.Inc()
}

// Sweep reclaims every entry without holders and reports how many were
// removed. Only ReclaimSweep leaves such entries behind; under other
// policies Sweep returns 0.
func (in *Interner[V]) Sweep() int {
	if in.policy != ReclaimSweep || in.closed.Load() {
		return 0
	}
	n := 0
	for i := range in.shards {
		sh := &in.shards[i]
		sh.mu.Lock()
		if in.closed.Load() {
			sh.mu.Unlock()
			break
		}
		for h, bucket := range sh.buckets {
			kept := bucket[:0]
			for _, r := range bucket {
				if r.e != nil && r.e.refs == 0 {
					in.store.Free(r.e.slot)
					in.entries.Dec()
					n++
					continue
				}
				kept = append(kept, r)
			}
			for j := len(kept); j < len(bucket); j++ {
				bucket[j] = nil
			}
			if len(kept) == 0 {
				delete(sh.buckets, h)
			} else {
				sh.buckets[h] = kept
			}
		}
		sh.mu.Unlock()
	}

	in.stats.reclaimed.Add(uint64(n))
	in.logger.Sugar().Debugf("swept interner: id: %v, reclaimed: %v, remaining: %v", in.ID, n, in.entries.Load())
	return n
}

// Range calls fn for every published entry until fn returns false. Under a
// counting policy each Handle is held for the duration of its callback, so fn
// may dereference it even if its other holders release it meanwhile; fn must
// Retain a Handle it keeps after returning.
func (in *Interner[V]) Range(fn func(Handle[V]) bool) {
	if in.closed.Load() {
		return
	}
	for i := range in.shards {
		sh := &in.shards[i]
		sh.mu.Lock()
		handles := make([]Handle[V], 0, len(sh.buckets))
		for _, bucket := range sh.buckets {
			for _, r := range bucket {
				if r.e != nil {
					if in.counting() {
						r.e.refs++
					}
					handles = append(handles, Handle[V]{e: r.e, id: r.e.id})
				}
			}
		}
		sh.mu.Unlock()
		for j, h := range handles {
			if !fn(h) {
				in.releaseAll(handles[j:])
				return
			}
			in.releaseAll(handles[j : j+1])
		}
	}
}

func (in *Interner[V]) releaseAll(handles []Handle[V]) {
	if !in.counting() {
		return
	}
	for _, h := range handles {
		in.release(h)
	}
}

// Len is the number of live distinct values.
func (in *Interner[V]) Len() int { return int(in.entries.Load()) }

// Allocations is the number of entries allocated since creation.
func (in *Interner[V]) Allocations() uint64 { return in.store.Allocations() }

// Stats returns a snapshot of the Interner's counters.
func (in *Interner[V]) Stats() Stats {
	return Stats{
		Entries:     in.Len(),
		Blocks:      in.store.Blocks(),
		Allocations: in.store.Allocations(),
		Hits:        in.stats.hits.Load(),
		Misses:      in.stats.misses.Load(),
		Waits:       in.stats.waits.Load(),
		Comparisons: in.stats.comparisons.Load(),
		Reclaimed:   in.stats.reclaimed.Load(),
		Exhausted:   in.stats.exhausted.Load(),
	}
}

// Close drops every entry. Later calls to Intern fail with ErrClosed and
// Handles issued earlier must not be used. Close is idempotent.
func (in *Interner[V]) Close() {
	if !in.closed.CompareAndSwap(false, true) {
		return
	}
	for i := range in.shards {
		sh := &in.shards[i]
		sh.mu.Lock()
		clear(sh.buckets)
		sh.mu.Unlock()
	}
	entries := in.entries.Swap(0)
	in.store.Reset()
	in.logger.Sugar().Debugf("closed interner: id: %v, entries: %v, allocations: %v", in.ID, entries, in.store.Allocations())
}

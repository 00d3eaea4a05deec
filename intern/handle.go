package intern

import (
	"cmp"
	"fmt"

	"github.com/on-the-ground/hashcons/intern/internal/arena"
	"github.com/on-the-ground/hashcons/shared/helper"
)

// entry is the backing-store record of one distinct value. It lives in an
// arena slot and never moves while published.
type entry[V any] struct {
	value V
	hash  uint64
	// id is unique in the process and never reused; zero marks a free slot.
	id uint64
	// refs is guarded by the lock of the shard that owns hash.
	refs  int64
	slot  arena.Slot[entry[V]]
	owner *Interner[V]
}

// Handle is the canonical reference to an interned value.
//
// Handles compare with == and can be used as map keys; equality, hashing and
// ordering depend only on identity. The zero Handle refers to nothing.
type Handle[V any] struct {
	e  *entry[V]
	id uint64
}

func (h Handle[V]) live() *entry[V] {
	if h.e == nil {
		panic("intern: use of zero Handle")
	}
	if h.e.id != h.id {
		panic("intern: use of reclaimed Handle")
	}
	return h.e
}

// Get returns a pointer to the interned value. The value must not be modified.
func (h Handle[V]) Get() *V { return &h.live().value }

// Value returns a copy of the interned value.
func (h Handle[V]) Value() V { return h.live().value }

// ID is unique among all Handles, across Interners, and increases with
// allocation order. The zero Handle has ID 0.
func (h Handle[V]) ID() uint64 { return h.id }

func (h Handle[V]) IsZero() bool { return h.e == nil }

// Compare orders Handles by ID. It returns 0 exactly when h == o.
func (h Handle[V]) Compare(o Handle[V]) int { return cmp.Compare(h.id, o.id) }

// Hash is derived from the Handle's identity only.
func (h Handle[V]) Hash() uint64 { return helper.Mix64(h.id) }

// HashInto writes the Handle's identity into d, so that values embedding
// Handles fingerprint in constant time per Handle.
func (h Handle[V]) HashInto(d *Digest) { d.AddUint64(h.id) }

func (h Handle[V]) String() string {
	if h.e == nil {
		return "<nil>"
	}
	return fmt.Sprint(h.Value())
}

// Retain registers an additional holder and returns h. It is a no-op under
// ReclaimNone.
func (h Handle[V]) Retain() Handle[V] {
	e := h.live()
	e.owner.retain(h)
	return h
}

// Release drops one holder. Under ReclaimRefCounted the entry is reclaimed
// when the last holder releases it; h must not be used afterwards.
// Release panics under ReclaimNone.
func (h Handle[V]) Release() {
	if h.e == nil {
		panic("intern: release of zero Handle")
	}
	h.e.owner.release(h)
}

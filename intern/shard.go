package intern

import (
	"sync"

	"go.uber.org/atomic"
)

// record is a table slot for one equality class. While populating, e is nil
// and candidate holds the value being allocated; done is closed once the
// record is published or abandoned.
type record[V any] struct {
	candidate V
	e         *entry[V]
	done      chan struct{}
	waiters   int64
	err       error
}

func (r *record[V]) value() V {
	if r.e != nil {
		return r.e.value
	}
	return r.candidate
}

type shard[V any] struct {
	mu      sync.Mutex
	buckets map[uint64][]*record[V]
}

func (s *shard[V]) init(capacity int) {
	s.buckets = make(map[uint64][]*record[V], capacity)
}

// find returns the record equal to v. Must hold s.mu.
func (s *shard[V]) find(h uint64, v V, equal func(a, b V) bool, comparisons *atomic.Uint64) *record[V] {
	for _, r := range s.buckets[h] {
		comparisons.Inc()
		if equal(r.value(), v) {
			return r
		}
	}
	return nil
}

// Must hold s.mu.
func (s *shard[V]) add(h uint64, r *record[V]) {
	s.buckets[h] = append(s.buckets[h], r)
}

// remove unlinks r from bucket h. Must hold s.mu.
func (s *shard[V]) remove(h uint64, r *record[V]) bool {
	bucket := s.buckets[h]
	for i, c := range bucket {
		if c != r {
			continue
		}
		last := len(bucket) - 1
		bucket[i] = bucket[last]
		bucket[last] = nil
		if last == 0 {
			delete(s.buckets, h)
		} else {
			s.buckets[h] = bucket[:last]
		}
		return true
	}
	return false
}

// removeEntry unlinks the record published for e. Must hold s.mu.
func (s *shard[V]) removeEntry(e *entry[V]) bool {
	for _, r := range s.buckets[e.hash] {
		if r.e == e {
			return s.remove(e.hash, r)
		}
	}
	return false
}

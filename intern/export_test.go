package intern

// SetAllocHook installs fn to run before every entry allocation.
func SetAllocHook[V any](in *Interner[V], fn func()) {
	in.allocHook = fn
}

// Holders reports the holder count of h's entry.
func Holders[V any](h Handle[V]) int64 {
	sh := h.e.owner.shardFor(h.e.hash)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return h.e.refs
}

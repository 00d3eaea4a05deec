package intern

import (
	"go.uber.org/atomic"
)

// Stats is a point-in-time snapshot of an Interner's counters.
type Stats struct {
	// Entries is the number of live distinct values.
	Entries int
	// Blocks is the number of arena blocks currently held.
	Blocks int
	// Allocations counts entries ever allocated.
	Allocations uint64
	// Hits counts Intern calls answered with an existing entry,
	// including calls that joined an in-flight allocation.
	Hits uint64
	// Misses counts Intern calls that published a new entry.
	Misses uint64
	// Waits counts calls that joined an in-flight allocation.
	Waits uint64
	// Comparisons counts Canonicalizer.Equal invocations.
	Comparisons uint64
	// Reclaimed counts entries removed by the reclamation policy.
	Reclaimed uint64
	// Exhausted counts Intern calls that failed with ErrExhausted.
	Exhausted uint64
}

type counters struct {
	hits        atomic.Uint64
	misses      atomic.Uint64
	waits       atomic.Uint64
	comparisons atomic.Uint64
	reclaimed   atomic.Uint64
	exhausted   atomic.Uint64
}

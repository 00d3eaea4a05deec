// Package intern provides hash-consing allocators.
//
// An Interner hands out one canonical Handle per distinct value: interning
// two structurally equal values returns the identical Handle, interning two
// distinct values returns distinct Handles. Once values are interned,
// equality, hashing and ordering work on the Handle's identity in constant
// time, regardless of how large the underlying value is.
//
// # Building deep structures
//
// Values that embed Handles of already-interned sub-values only need to
// compare those Handles, not the sub-values themselves. Interning a tree
// bottom-up therefore costs time proportional to each node's fan-out rather
// than to the size of the tree below it.
//
//	type Expr struct {
//	    Op   byte
//	    N    int64
//	    L, R intern.Handle[Expr]
//	}
//
//	in, _ := intern.New(intern.Comparable[Expr](), intern.Config{})
//	two := in.MustIntern(Expr{Op: 'c', N: 2})
//	four := in.MustIntern(Expr{Op: '+', L: two, R: two})
//
// # Reclamation
//
// By default entries live as long as the Interner (ReclaimNone). With
// ReclaimRefCounted every successful Intern, Lookup or Retain adds a holder
// and Release drops one; the entry is reclaimed when the last holder
// releases it. ReclaimSweep keeps the counts but defers removal to Sweep.
//
// Go has no destructors, so copying a Handle value does not count as a new
// holder. Use Retain for a copy that must outlive the original holder.
//
// # Caller contract
//
// A Canonicalizer must be consistent: Equal(a, b) implies
// Fingerprint(a) == Fingerprint(b). Interned values must not be mutated.
// A Handle must not be used after the holder count that kept it alive has
// been released.
package intern

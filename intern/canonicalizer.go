package intern

import (
	"encoding/binary"
	"fmt"
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

// Canonicalizer defines the fingerprint and the equality relation used to
// detect duplicate values.
//
// Equal(a, b) must imply Fingerprint(a) == Fingerprint(b). Both must be pure
// functions of the value's logical content. Fingerprint collisions are fine;
// they are resolved with Equal.
type Canonicalizer[V any] interface {
	Fingerprint(v V) uint64
	Equal(a, b V) bool
}

type comparableCanonicalizer[V comparable] struct {
	seed maphash.Seed
}

// Comparable canonicalizes values with Go's == operator. Handles embedded in
// V compare by identity, which is what makes bottom-up interning cheap.
func Comparable[V comparable]() Canonicalizer[V] {
	return comparableCanonicalizer[V]{seed: maphash.MakeSeed()}
}

func (c comparableCanonicalizer[V]) Fingerprint(v V) uint64 {
	return maphash.Comparable(c.seed, v)
}

func (comparableCanonicalizer[V]) Equal(a, b V) bool { return a == b }

type stringCanonicalizer struct{}

// Strings canonicalizes strings by content.
func Strings() Canonicalizer[string] { return stringCanonicalizer{} }

func (stringCanonicalizer) Fingerprint(s string) uint64 { return xxhash.Sum64String(s) }
func (stringCanonicalizer) Equal(a, b string) bool      { return a == b }

type stringerCanonicalizer[V fmt.Stringer] struct{}

// Stringer canonicalizes values by their String form. It suits types that are
// not comparable but render deterministically.
func Stringer[V fmt.Stringer]() Canonicalizer[V] { return stringerCanonicalizer[V]{} }

func (stringerCanonicalizer[V]) Fingerprint(v V) uint64 { return xxhash.Sum64String(v.String()) }
func (stringerCanonicalizer[V]) Equal(a, b V) bool      { return a.String() == b.String() }

type funcCanonicalizer[V any] struct {
	fingerprint func(V) uint64
	equal       func(a, b V) bool
}

// Funcs builds a Canonicalizer from a fingerprint function and an equality
// predicate.
func Funcs[V any](fingerprint func(V) uint64, equal func(a, b V) bool) Canonicalizer[V] {
	if fingerprint == nil || equal == nil {
		panic("intern: Funcs requires both a fingerprint and an equality function")
	}
	return funcCanonicalizer[V]{fingerprint: fingerprint, equal: equal}
}

func (f funcCanonicalizer[V]) Fingerprint(v V) uint64 { return f.fingerprint(v) }
func (f funcCanonicalizer[V]) Equal(a, b V) bool      { return f.equal(a, b) }

// fieldSep terminates variable-length fields so that ("ab", "c") and
// ("a", "bc") hash differently.
var fieldSep = []byte{255}

// Digest accumulates a fingerprint field by field. It is the usual building
// block for hand-written Canonicalizers:
//
//	func (exprCanon) Fingerprint(e Expr) uint64 {
//	    d := intern.NewDigest()
//	    d.AddUint64(uint64(e.Op))
//	    e.L.HashInto(d)
//	    e.R.HashInto(d)
//	    return d.Sum64()
//	}
type Digest struct {
	d   *xxhash.Digest
	buf [8]byte
}

func NewDigest() *Digest {
	return &Digest{d: xxhash.New()}
}

func (d *Digest) AddString(s string) {
	_, _ = d.d.WriteString(s)
	_, _ = d.d.Write(fieldSep)
}

func (d *Digest) AddBytes(b []byte) {
	_, _ = d.d.Write(b)
	_, _ = d.d.Write(fieldSep)
}

func (d *Digest) AddUint64(u uint64) {
	binary.LittleEndian.PutUint64(d.buf[:], u)
	_, _ = d.d.Write(d.buf[:])
}

func (d *Digest) AddInt64(i int64) { d.AddUint64(uint64(i)) }

func (d *Digest) AddBool(b bool) {
	if b {
		d.AddUint64(1)
	} else {
		d.AddUint64(0)
	}
}

// Sum64 returns the fingerprint of everything written so far.
func (d *Digest) Sum64() uint64 { return d.d.Sum64() }

// Reset clears the digest for reuse.
func (d *Digest) Reset() { d.d.Reset() }

package helper

import (
	"math/bits"
)

// GetTypedValueOf2 asserts the result of a getter function to the expected type T.
// ok is false when the getter reports a miss or the stored value is not a T.
func GetTypedValueOf2[T any](getFn func() (any, bool)) (res T, ok bool) {
	var raw any
	if raw, ok = getFn(); ok {
		res, ok = raw.(T)
	}
	return
}

// IndexByHash maps a 64-bit hash onto one of n partitions.
// The high bits are folded into the low ones first, because callers
// often bucket on the low bits of the same hash.
func IndexByHash(h uint64, n int) int {
	switch {
	case n <= 0:
		panic("number of partitions must be positive")
	case n == 1:
		return 0
	}
	h = Mix64(h)
	if n&(n-1) == 0 {
		return int(h & uint64(n-1))
	}
	return int(h % uint64(n))
}

// Mix64 is the murmur3 64-bit finalizer. It is a bijection, so distinct
// inputs stay distinct.
func Mix64(h uint64) uint64 {
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

// NextPowerOfTwo rounds n up to a power of two. Values below one become one.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

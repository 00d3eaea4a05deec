package helper_test

import (
	"testing"

	"github.com/on-the-ground/hashcons/shared/helper"
	"github.com/stretchr/testify/assert"
)

func TestGetTypedValueOf2(t *testing.T) {
	v, ok := helper.GetTypedValueOf2[int](func() (any, bool) { return 42, true })
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = helper.GetTypedValueOf2[int](func() (any, bool) { return "42", true })
	assert.False(t, ok, "wrong type must not be reported as a hit")

	_, ok = helper.GetTypedValueOf2[int](func() (any, bool) { return nil, false })
	assert.False(t, ok)
}

func TestIndexByHash_InRange(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 8, 64, 100} {
		for h := uint64(0); h < 1000; h++ {
			idx := helper.IndexByHash(h*0x9e3779b97f4a7c15, n)
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, n)
		}
	}
}

func TestIndexByHash_Spreads(t *testing.T) {
	seen := make(map[int]bool)
	for h := uint64(0); h < 256; h++ {
		seen[helper.IndexByHash(h, 8)] = true
	}
	assert.Len(t, seen, 8)
}

func TestIndexByHash_ZeroPanics(t *testing.T) {
	assert.Panics(t, func() { helper.IndexByHash(1, 0) })
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{-3: 1, 0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 64: 64, 65: 128}
	for in, want := range cases {
		assert.Equal(t, want, helper.NextPowerOfTwo(in), "input %d", in)
	}
}

func TestMix64_Bijective(t *testing.T) {
	seen := make(map[uint64]bool)
	for h := uint64(0); h < 4096; h++ {
		m := helper.Mix64(h)
		assert.False(t, seen[m], "collision at %d", h)
		seen[m] = true
	}
	assert.Equal(t, uint64(0), helper.Mix64(0))
}

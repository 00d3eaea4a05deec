package intern_test

import (
	"fmt"
	"testing"

	"github.com/on-the-ground/hashcons/intern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct{ X, Y int }

func TestComparable(t *testing.T) {
	c := intern.Comparable[point]()
	assert.Equal(t, c.Fingerprint(point{1, 2}), c.Fingerprint(point{1, 2}))
	assert.True(t, c.Equal(point{1, 2}, point{1, 2}))
	assert.False(t, c.Equal(point{1, 2}, point{2, 1}))
}

func TestStrings(t *testing.T) {
	c := intern.Strings()
	assert.Equal(t, c.Fingerprint("abc"), c.Fingerprint("abc"))
	assert.NotEqual(t, c.Fingerprint("abc"), c.Fingerprint("abd"))
	assert.True(t, c.Equal("abc", "abc"))
}

// polygon is not comparable; it is canonicalized by its rendering.
type polygon struct {
	points []point
}

func (p polygon) String() string { return fmt.Sprint(p.points) }

func TestStringer(t *testing.T) {
	in, err := intern.New(intern.Stringer[polygon](), intern.Config{})
	require.NoError(t, err)
	defer in.Close()

	a := in.MustIntern(polygon{points: []point{{0, 0}, {1, 1}}})
	b := in.MustIntern(polygon{points: []point{{0, 0}, {1, 1}}})
	c := in.MustIntern(polygon{points: []point{{0, 0}}})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, uint64(2), in.Allocations())
}

func TestFuncs_RequiresBoth(t *testing.T) {
	assert.Panics(t, func() {
		intern.Funcs[int](nil, func(a, b int) bool { return a == b })
	})
	assert.Panics(t, func() {
		intern.Funcs[int](func(int) uint64 { return 0 }, nil)
	})
}

func TestDigest_SeparatesFields(t *testing.T) {
	sum := func(parts ...string) uint64 {
		d := intern.NewDigest()
		for _, p := range parts {
			d.AddString(p)
		}
		return d.Sum64()
	}
	assert.NotEqual(t, sum("ab", "c"), sum("a", "bc"))
	assert.Equal(t, sum("ab", "c"), sum("ab", "c"))

	d := intern.NewDigest()
	d.AddInt64(-1)
	d.AddBool(true)
	d.AddBytes([]byte("x"))
	first := d.Sum64()
	d.Reset()
	d.AddInt64(-1)
	d.AddBool(true)
	d.AddBytes([]byte("x"))
	assert.Equal(t, first, d.Sum64())
}

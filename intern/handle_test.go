package intern_test

import (
	"slices"
	"testing"

	"github.com/on-the-ground/hashcons/intern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle_IdentitySemantics(t *testing.T) {
	in, err := intern.New(intern.Strings(), intern.Config{})
	require.NoError(t, err)
	defer in.Close()

	a := in.MustIntern("alpha")
	b := in.MustIntern("beta")
	a2 := in.MustIntern("alpha")

	assert.Equal(t, a.ID(), a2.ID())
	assert.Equal(t, a.Hash(), a2.Hash())
	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.Less(t, a.ID(), b.ID(), "IDs follow allocation order")
	assert.Equal(t, 0, a.Compare(a2))
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))

	// usable as a key in further associative structures
	counts := map[intern.Handle[string]]int{}
	counts[a]++
	counts[a2]++
	counts[b]++
	assert.Equal(t, 2, counts[a])
	assert.Len(t, counts, 2)

	sorted := []intern.Handle[string]{b, a}
	slices.SortFunc(sorted, intern.Handle[string].Compare)
	assert.Equal(t, []intern.Handle[string]{a, b}, sorted)

	assert.Equal(t, "alpha", a.String())
	assert.Equal(t, "alpha", *a.Get())
}

func TestHandle_Zero(t *testing.T) {
	var h intern.Handle[string]
	assert.True(t, h.IsZero())
	assert.Equal(t, uint64(0), h.ID())
	assert.Equal(t, "<nil>", h.String())
	assert.Panics(t, func() { h.Get() })
	assert.Panics(t, func() { h.Retain() })
}

func TestHandle_RetainIsNoopWithoutCounting(t *testing.T) {
	in, err := intern.New(intern.Strings(), intern.Config{})
	require.NoError(t, err)
	defer in.Close()

	h := in.MustIntern("x")
	assert.Equal(t, h, h.Retain())
	assert.Equal(t, int64(0), intern.Holders(h))
}

func TestHandle_HashIntoUsesIdentity(t *testing.T) {
	in, err := intern.New(intern.Strings(), intern.Config{})
	require.NoError(t, err)
	defer in.Close()

	sum := func(h intern.Handle[string]) uint64 {
		d := intern.NewDigest()
		h.HashInto(d)
		return d.Sum64()
	}
	assert.Equal(t, sum(in.MustIntern("x")), sum(in.MustIntern("x")))
	assert.NotEqual(t, sum(in.MustIntern("x")), sum(in.MustIntern("y")))
}

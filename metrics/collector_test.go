package metrics_test

import (
	"strings"
	"testing"

	"github.com/on-the-ground/hashcons/intern"
	"github.com/on-the-ground/hashcons/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	in, err := intern.New(intern.Strings(), intern.Config{MaxEntries: 2})
	require.NoError(t, err)
	defer in.Close()

	in.MustIntern("a")
	in.MustIntern("a")
	in.MustIntern("b")
	_, err = in.Intern("c")
	require.ErrorIs(t, err, intern.ErrExhausted)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(metrics.NewCollector("words", in)))

	err = testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP hashcons_interner_allocations_total Entries allocated.
# TYPE hashcons_interner_allocations_total counter
hashcons_interner_allocations_total{interner="words"} 2
# HELP hashcons_interner_entries Number of live interned values.
# TYPE hashcons_interner_entries gauge
hashcons_interner_entries{interner="words"} 2
# HELP hashcons_interner_exhausted_total Intern calls that failed because the arena was full.
# TYPE hashcons_interner_exhausted_total counter
hashcons_interner_exhausted_total{interner="words"} 1
# HELP hashcons_interner_hits_total Intern calls answered with an existing entry.
# TYPE hashcons_interner_hits_total counter
hashcons_interner_hits_total{interner="words"} 1
`),
		"hashcons_interner_allocations_total",
		"hashcons_interner_entries",
		"hashcons_interner_exhausted_total",
		"hashcons_interner_hits_total",
	)
	assert.NoError(t, err)

	assert.Equal(t, 9, testutil.CollectAndCount(metrics.NewCollector("words", in)))
}

package hybrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/blast/core"
	"github.com/hupe1980/blast/index"
	"github.com/hupe1980/blast/testutil"
	"github.com/hupe1980/blast/vectorstore"
)

func newTestIndex(t *testing.T, vectors [][]float32, optFns ...func(o *Options)) *Hybrid {
	t.Helper()

	store := testutil.FillStore(vectors)
	h, err := New(store, optFns...)
	require.NoError(t, err)

	for i := range vectors {
		require.NoError(t, h.Insert(core.VectorID(i)))
	}
	return h
}

func TestNew(t *testing.T) {
	t.Run("NilStore", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorIs(t, err, index.ErrNilStore)
	})

	t.Run("InvalidOptions", func(t *testing.T) {
		store := vectorstore.NewMemory(2)

		cases := []struct {
			name string
			fn   func(o *Options)
		}{
			{"BucketCapacity", func(o *Options) { o.BucketCapacity = 1 }},
			{"RoutingFanout", func(o *Options) { o.RoutingFanout = 1 }},
			{"RoutingFanoutHigh", func(o *Options) { o.RoutingFanout = 17 }},
			{"NeighborDegree", func(o *Options) { o.NeighborDegree = 0 }},
			{"NeighborHops", func(o *Options) { o.NeighborHops = -1 }},
			{"WindowSize", func(o *Options) { o.WindowSize = -1 }},
			{"HeatThreshold", func(o *Options) { o.HeatThreshold = 0 }},
			{"RepairInterval", func(o *Options) { o.RepairInterval = 0 }},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := New(store, tc.fn)
				var inv *index.ErrInvalidOption
				assert.ErrorAs(t, err, &inv)
			})
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		h, err := New(vectorstore.NewMemory(2))
		require.NoError(t, err)
		assert.Equal(t, 0, h.Len())
		assert.NoError(t, h.Validate())
	})
}

func TestInsertErrors(t *testing.T) {
	store := vectorstore.NewMemory(2)
	require.NoError(t, store.SetVector(0, []float32{1, 0}))

	h, err := New(store)
	require.NoError(t, err)

	t.Run("VectorNotFound", func(t *testing.T) {
		var nf *index.ErrVectorNotFound
		require.ErrorAs(t, h.Insert(5), &nf)
		assert.Equal(t, core.VectorID(5), nf.ID)
		assert.Equal(t, 0, h.Len())
	})

	t.Run("Duplicate", func(t *testing.T) {
		require.NoError(t, h.Insert(0))

		var dup *index.ErrDuplicateID
		require.ErrorAs(t, h.Insert(0), &dup)
		assert.Equal(t, core.VectorID(0), dup.ID)
		assert.Equal(t, 1, h.Len())
		assert.NoError(t, h.Validate())
	})
}

// Ids survive the uint32 round-trip through bitmaps and heap items even at
// the top of the range.
func TestMaxVectorID(t *testing.T) {
	store := vectorstore.NewMemory(2)
	require.NoError(t, store.SetVector(core.MaxVectorID, []float32{1, 0}))

	h, err := New(store)
	require.NoError(t, err)
	require.NoError(t, h.Insert(core.MaxVectorID))

	results, err := h.KNNSearch([]float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.MaxVectorID, results[0].ID)
	assert.Equal(t, float32(0), results[0].Distance)
}

func TestSearchErrors(t *testing.T) {
	h, err := New(vectorstore.NewMemory(2))
	require.NoError(t, err)

	_, err = h.KNNSearch([]float32{0, 0}, 0)
	assert.ErrorIs(t, err, index.ErrInvalidK)

	_, err = h.KNNSearch([]float32{0, 0}, -3)
	assert.ErrorIs(t, err, index.ErrInvalidK)

	var dm *index.ErrDimensionMismatch
	_, err = h.KNNSearch([]float32{0, 0, 0}, 1)
	assert.ErrorAs(t, err, &dm)

	results, err := h.KNNSearch([]float32{0, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

// Five fixed 2-D vectors in one overflowing bucket: the nearest neighbor of
// (0.9, 0.1) is (1, 0) at distance ~0.1414, then (1, 1).
func TestSmallFixedDataset(t *testing.T) {
	vectors := [][]float32{{1, 0}, {0, 1}, {1, 1}, {-1, 0}, {0, -1}}
	h := newTestIndex(t, vectors, func(o *Options) {
		o.BucketCapacity = 4
	})

	results, err := h.KNNSearch([]float32{0.9, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, core.VectorID(0), results[0].ID)
	assert.InDelta(t, 0.1414, results[0].Distance, 1e-3)
	assert.Equal(t, core.VectorID(2), results[1].ID)

	assert.NoError(t, h.Validate())
}

// 200 random vectors with a small capacity must reorganize at least once,
// and queries keep returning exactly k previously inserted vectors.
func TestReorganizationUnderLoad(t *testing.T) {
	rng := testutil.NewRNG(7)
	vectors := testutil.RandomVectors(rng, 200, 4)
	h := newTestIndex(t, vectors, func(o *Options) {
		o.BucketCapacity = 16
	})

	stats := h.Stats()
	assert.Greater(t, stats.Buckets, 1)
	assert.Greater(t, stats.Splits, uint64(0))
	assert.NoError(t, h.Validate())

	q := testutil.RandomVectors(rng, 1, 4)[0]
	results, err := h.KNNSearch(q, 10)
	require.NoError(t, err)
	require.Len(t, results, 10)
	for _, r := range results {
		assert.Less(t, uint32(r.ID), uint32(200))
	}
}

// Window linking creates graph edges at insert time, before any repair ran.
func TestWindowLinkingBootstrapsGraph(t *testing.T) {
	rng := testutil.NewRNG(11)
	vectors := testutil.RandomVectors(rng, 50, 4)
	h := newTestIndex(t, vectors, func(o *Options) {
		o.WindowSize = 4
		// Keep the repair queue untouched so only window links exist.
		o.RepairInterval = 1 << 30
	})

	edges := 0
	for _, e := range h.Entries() {
		edges += len(e.Neighbors) + len(e.Incoming)
	}
	assert.Greater(t, edges, 0)
}

func TestWindowLinkingIsBidirectional(t *testing.T) {
	vectors := [][]float32{{0, 0}, {1, 0}, {0, 1}}
	h := newTestIndex(t, vectors, func(o *Options) {
		o.WindowSize = 4
		o.RepairInterval = 1 << 30
	})

	entries := h.Entries()
	require.Len(t, entries, 3)

	// Every pair is within the window, so the graph is complete.
	for _, e := range entries {
		assert.Len(t, e.Neighbors, 2)
		assert.Len(t, e.Incoming, 2)
		for i := 1; i < len(e.Neighbors); i++ {
			assert.LessOrEqual(t, e.Neighbors[i-1].Distance, e.Neighbors[i].Distance)
		}
	}
}

func TestStatsAndDiagnostics(t *testing.T) {
	rng := testutil.NewRNG(3)
	vectors := testutil.RandomVectors(rng, 100, 4)
	h := newTestIndex(t, vectors, func(o *Options) {
		o.BucketCapacity = 8
		o.RepairInterval = 1
	})

	stats := h.Stats()
	assert.Equal(t, 100, stats.Size)
	assert.Greater(t, stats.Buckets, 1)
	assert.Greater(t, stats.RoutingNodes, 0)
	assert.Greater(t, stats.RetiredNodes, 0)
	assert.GreaterOrEqual(t, stats.MaxDepth, 2)
	assert.Greater(t, stats.GraphEdges, 0)
	assert.Greater(t, stats.Repairs, uint64(0))

	total := 0
	for _, b := range h.Buckets() {
		assert.NotEmpty(t, b.Members)
		total += len(b.Members)
	}
	assert.Equal(t, 100, total)

	entries := h.Entries()
	require.Len(t, entries, 100)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, uint32(entries[i-1].ID), uint32(entries[i].ID))
	}
}

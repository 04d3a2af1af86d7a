package hybrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/blast/core"
	"github.com/hupe1980/blast/testutil"
)

// Structural invariants hold after every single insert, with queries mixed
// in to stir heat and lateral expansion.
func TestValidateUnderContinuousChange(t *testing.T) {
	rng := testutil.NewRNG(31)
	vectors := testutil.RandomVectors(rng, 300, 8)
	queries := testutil.RandomVectors(rng, 30, 8)

	store := testutil.FillStore(vectors)
	h, err := New(store, func(o *Options) {
		o.BucketCapacity = 16
		o.HeatThreshold = 32
		o.RepairInterval = 4
	})
	require.NoError(t, err)

	for i := range vectors {
		require.NoError(t, h.Insert(core.VectorID(i)))
		require.NoError(t, h.Validate(), "after insert %d", i)

		if i%10 == 9 {
			_, err := h.KNNSearch(queries[i/10], 5)
			require.NoError(t, err)
			require.NoError(t, h.Validate(), "after query at %d", i)
		}
	}
}

// Every outgoing list respects the degree cap and stays sorted by distance,
// through window linking, splits, and repairs alike.
func TestNeighborDegreeBound(t *testing.T) {
	rng := testutil.NewRNG(37)
	vectors := testutil.RandomVectors(rng, 200, 8)
	h := newTestIndex(t, vectors, func(o *Options) {
		o.BucketCapacity = 16
		o.NeighborDegree = 4
		o.WindowSize = 6
		o.RepairInterval = 2
	})

	for _, e := range h.Entries() {
		assert.LessOrEqual(t, len(e.Neighbors), 4)
		for i := 1; i < len(e.Neighbors); i++ {
			prev, cur := e.Neighbors[i-1], e.Neighbors[i]
			less := prev.Distance < cur.Distance ||
				(prev.Distance == cur.Distance && prev.ID < cur.ID)
			assert.True(t, less, "entry %d neighbors out of order", e.ID)
		}
	}
}

// A bucket past capacity is always waiting in the queue: overflow may
// persist between drains but never goes untracked.
func TestOverfullBucketIsQueued(t *testing.T) {
	rng := testutil.NewRNG(41)
	vectors := testutil.RandomVectors(rng, 300, 4)

	store := testutil.FillStore(vectors)
	h, err := New(store, func(o *Options) {
		o.BucketCapacity = 8
		o.RepairInterval = 8
	})
	require.NoError(t, err)

	for i := range vectors {
		require.NoError(t, h.Insert(core.VectorID(i)))

		overfull := false
		for _, b := range h.Buckets() {
			if len(b.Members) > 8 {
				overfull = true
				break
			}
		}
		if overfull {
			assert.Greater(t, h.Stats().PendingRepairs, 0, "after insert %d", i)
		}
	}
}

// Drains are strictly rationed: one queued node per RepairInterval inserts,
// so a long backlog shrinks predictably.
func TestDrainIsRationed(t *testing.T) {
	rng := testutil.NewRNG(43)
	vectors := testutil.RandomVectors(rng, 64, 4)

	store := testutil.FillStore(vectors)
	h, err := New(store, func(o *Options) {
		o.BucketCapacity = 128
		o.RepairInterval = 1 << 30 // never drain on its own
	})
	require.NoError(t, err)

	for i := range vectors {
		require.NoError(t, h.Insert(core.VectorID(i)))
	}
	require.Equal(t, uint64(0), h.Stats().Repairs)

	h.enqueueRepair(h.root)
	h.enqueueRepair(h.root) // queued guard: second enqueue is a no-op
	require.Equal(t, 1, h.Stats().PendingRepairs)

	h.drainOne()
	assert.Equal(t, uint64(1), h.Stats().Repairs)
	assert.Equal(t, 0, h.Stats().PendingRepairs)

	h.drainOne() // empty queue: nothing to do
	assert.Equal(t, uint64(1), h.Stats().Repairs)
}

// Repairing a bucket refreshes member edges toward their true nearest
// neighbors, even when window linking initially wired distant vectors.
func TestRepairImprovesNeighbors(t *testing.T) {
	// Two tight clusters inserted interleaved, so windows link across them.
	vectors := [][]float32{
		{0, 0}, {10, 10},
		{0.1, 0}, {10.1, 10},
		{0, 0.1}, {10, 10.1},
		{0.1, 0.1}, {10.1, 10.1},
	}
	store := testutil.FillStore(vectors)
	h, err := New(store, func(o *Options) {
		o.BucketCapacity = 128
		o.NeighborDegree = 2
		o.WindowSize = 2
		o.NeighborHops = 3
		o.RepairInterval = 1 << 30
	})
	require.NoError(t, err)
	for i := range vectors {
		require.NoError(t, h.Insert(core.VectorID(i)))
	}

	// Converge the graph with a few repair rounds.
	for i := 0; i < 3; i++ {
		h.enqueueRepair(h.root)
		h.drainOne()
	}

	for _, e := range h.Entries() {
		sameCluster := func(a, b core.VectorID) bool { return a%2 == b%2 }
		for _, nb := range e.Neighbors {
			assert.True(t, sameCluster(e.ID, nb.ID),
				"entry %d kept cross-cluster edge to %d", e.ID, nb.ID)
		}
	}
}

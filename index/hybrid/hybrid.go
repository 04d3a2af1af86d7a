// Package hybrid implements an approximate-nearest-neighbor index that
// combines a bounded-capacity partition tree with a per-vector proximity
// graph.
//
// Vectors live in capacity-bounded buckets under a tree of routing nodes.
// Every node carries a conservative sphere (centroid plus a radius upper
// bound) that search uses as an admissible pruning bound. A bounded-degree
// neighbor graph between vectors recovers the recall lost to imperfect
// partitioning by letting search move laterally between nearby vectors that
// ended up in different subtrees.
//
// The structure is maintained lazily: inserts only expand bounds and link a
// small window of recent neighbors, while a repair queue recomputes
// centroids, radii and graph edges one node at a time, drained after every
// N inserts. Overflowing or query-hot nodes are reorganized by a two-way
// farthest-pair split.
//
// The index is insert-only and designed for single-threaded use; callers
// must serialize access.
package hybrid

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/blast/core"
	"github.com/hupe1980/blast/distance"
	"github.com/hupe1980/blast/index"
	"github.com/hupe1980/blast/vectorstore"
)

// Compile-time check to ensure Hybrid satisfies the Index interface.
var _ index.Index = (*Hybrid)(nil)

// Options contains the construction-time configuration of the index.
// All fields are immutable for the index's lifetime.
type Options struct {
	// BucketCapacity is the maximum member count of a bucket before it is
	// scheduled for a split. 64-256 is the useful range for real datasets;
	// anything >= 2 is accepted.
	BucketCapacity int

	// RoutingFanout is the maximum child count of a routing node (2-16).
	RoutingFanout int

	// NeighborDegree bounds the outgoing edges per vector.
	NeighborDegree int

	// NeighborHops is the walk depth used when repair refreshes a vector's
	// neighbor edges.
	NeighborHops int

	// WindowSize is the number of most recently inserted bucket members a
	// new vector is linked to on insert.
	WindowSize int

	// HeatThreshold is the query-visit count past which a node is
	// reorganized even while under capacity.
	HeatThreshold uint32

	// RepairInterval is the number of inserts between repair-queue drain
	// steps. Each drain step processes exactly one queued node, bounding
	// the maintenance work amortized into any single Insert.
	RepairInterval int

	// Metric selects the distance metric. It must obey the triangle
	// inequality for the pruning bound to be sound; cosine is served by L2
	// over pre-normalized vectors.
	Metric distance.Metric
}

// DefaultOptions contains the default configuration options for the index.
var DefaultOptions = Options{
	BucketCapacity: 128,
	RoutingFanout:  16,
	NeighborDegree: 8,
	NeighborHops:   2,
	WindowSize:     4,
	HeatThreshold:  64,
	RepairInterval: 8,
	Metric:         distance.MetricL2,
}

// Hybrid is the hybrid partition-tree / proximity-graph index.
// It is not safe for concurrent use.
type Hybrid struct {
	opts   Options
	store  vectorstore.Store
	distFn distance.Func

	nodes   []node
	root    nodeRef
	entries map[core.VectorID]*vectorEntry

	// repairQueue holds nodes awaiting maintenance, in FIFO order.
	repairQueue []nodeRef

	inserts uint64
	size    int

	splits  uint64
	repairs uint64
}

// New creates a new index over the given store.
func New(store vectorstore.Store, optFns ...func(o *Options)) (*Hybrid, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if store == nil {
		return nil, index.ErrNilStore
	}
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	distFn, err := distance.Provider(opts.Metric)
	if err != nil {
		return nil, err
	}

	h := &Hybrid{
		opts:    opts,
		store:   store,
		distFn:  distFn,
		entries: make(map[core.VectorID]*vectorEntry),
	}
	h.root = h.alloc(node{kind: kindBucket, parent: nilNode})

	return h, nil
}

func validateOptions(opts Options) error {
	switch {
	case opts.BucketCapacity < 2:
		return &index.ErrInvalidOption{Name: "BucketCapacity", Value: opts.BucketCapacity}
	case opts.RoutingFanout < 2 || opts.RoutingFanout > 16:
		return &index.ErrInvalidOption{Name: "RoutingFanout", Value: opts.RoutingFanout}
	case opts.NeighborDegree < 1:
		return &index.ErrInvalidOption{Name: "NeighborDegree", Value: opts.NeighborDegree}
	case opts.NeighborHops < 0:
		return &index.ErrInvalidOption{Name: "NeighborHops", Value: opts.NeighborHops}
	case opts.WindowSize < 0:
		return &index.ErrInvalidOption{Name: "WindowSize", Value: opts.WindowSize}
	case opts.HeatThreshold < 1:
		return &index.ErrInvalidOption{Name: "HeatThreshold", Value: int(opts.HeatThreshold)}
	case opts.RepairInterval < 1:
		return &index.ErrInvalidOption{Name: "RepairInterval", Value: opts.RepairInterval}
	}
	return nil
}

// Len returns the number of indexed vectors.
func (h *Hybrid) Len() int {
	return h.size
}

// Insert adds a vector already present in the store to the index.
//
// The vector is routed greedily to the nearest bucket, linked to the last
// few vectors inserted there, and the bucket's geometric bound is expanded
// conservatively. Every RepairInterval-th insert additionally drains one
// node from the repair queue. Inserting an id twice fails with
// ErrDuplicateID; an id unknown to the store fails with ErrVectorNotFound.
// In both cases the index is left unchanged.
func (h *Hybrid) Insert(id core.VectorID) error {
	v, ok := h.store.GetVector(id)
	if !ok {
		return &index.ErrVectorNotFound{ID: id}
	}
	if _, dup := h.entries[id]; dup {
		return &index.ErrDuplicateID{ID: id}
	}

	b := h.routeToBucket(v)
	h.addToBucket(b, id, v)

	h.inserts++
	if h.inserts%uint64(h.opts.RepairInterval) == 0 {
		h.drainOne()
	}

	return nil
}

// routeToBucket descends from the root to a leaf, picking the child with the
// nearest centroid at every routing node. Ties go to the lower child index.
func (h *Hybrid) routeToBucket(v []float32) nodeRef {
	n := h.root
	for h.nodes[n].kind == kindRouting {
		children := h.nodes[n].children
		if len(children) == 0 {
			panic("hybrid: routing node without children")
		}
		best := children[0]
		bestDist := h.distFn(v, h.nodes[best].centroid)
		for _, c := range children[1:] {
			if d := h.distFn(v, h.nodes[c].centroid); d < bestDist {
				best, bestDist = c, d
			}
		}
		n = best
	}
	return n
}

// addToBucket performs the structural part of an insert: bound expansion,
// member registration, descendant counting, window linking and the overflow
// check.
func (h *Hybrid) addToBucket(b nodeRef, id core.VectorID, v []float32) {
	nd := &h.nodes[b]
	if nd.centroid == nil {
		nd.centroid = slices.Clone(v)
		nd.radius = 0
	} else if d := h.distFn(nd.centroid, v); d > nd.radius {
		// Expand only; the radius never shrinks outside repair.
		nd.radius = d
		h.propagateContainment(b)
	}

	window := nd.members
	if w := h.opts.WindowSize; len(window) > w {
		window = window[len(window)-w:]
	}

	nd.members = append(nd.members, id)
	for n := b; n != nilNode; n = h.nodes[n].parent {
		h.nodes[n].descendants++
	}

	h.entries[id] = &vectorEntry{id: id, bucket: b, in: roaring.New()}
	h.size++

	for _, prev := range window {
		h.linkPair(id, prev)
	}

	if needsReorg(h.reorgInputs(b)) {
		h.enqueueRepair(b)
	}
}

// propagateContainment walks upward from child, expanding any ancestor
// sphere that no longer contains the child sphere. Expanded ancestors are
// queued for repair. Propagation stops at the first ancestor whose bound
// already contains the child.
func (h *Hybrid) propagateContainment(child nodeRef) {
	for {
		p := h.nodes[child].parent
		if p == nilNode {
			return
		}
		need := h.distFn(h.nodes[p].centroid, h.nodes[child].centroid) + h.nodes[child].radius
		if need <= h.nodes[p].radius {
			return
		}
		h.nodes[p].radius = need
		h.enqueueRepair(p)
		child = p
	}
}

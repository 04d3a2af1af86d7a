package hybrid

import (
	"github.com/hupe1980/blast/core"
)

// nodeRef is an index into the node arena. Parent/child relationships are
// stored as indices rather than pointers so the cyclic hierarchy needs no
// special lifetime handling and nodes stay value-typed in one slice.
type nodeRef int32

// nilNode marks an absent reference (the root's parent, retired slots).
const nilNode nodeRef = -1

type nodeKind uint8

const (
	// kindBucket is a leaf holding vectors and their local graph edges.
	kindBucket nodeKind = iota

	// kindRouting is an internal node aggregating child regions for pruning.
	kindRouting

	// kindRetired marks an arena slot whose node was replaced by a split.
	// Slots are never reused, keeping nodeRefs stable for queued repairs.
	kindRetired
)

// node carries the fields shared by buckets and routing nodes. Exactly one
// of members/children is populated, depending on kind.
type node struct {
	kind   nodeKind
	parent nodeRef

	// centroid is a representative point of the node's descendants. It may
	// be stale between repairs; radius compensates by never under-estimating
	// the distance from centroid to any descendant vector.
	centroid []float32
	radius   float32

	// descendants is the exact count of vectors reachable under this node.
	descendants int

	// queued guards against duplicate entries in the repair queue.
	queued bool

	// heat counts query visits and drives proactive reorganization.
	heat uint32

	// members keeps bucket vectors in insertion order, which window linking
	// depends on.
	members  []core.VectorID
	children []nodeRef
}

// alloc appends a node to the arena and returns its reference. Callers must
// not hold &h.nodes[i] pointers across a call.
func (h *Hybrid) alloc(n node) nodeRef {
	h.nodes = append(h.nodes, n)
	return nodeRef(len(h.nodes) - 1)
}

// retire detaches a node that was replaced by a split. The slot stays in the
// arena; a queued repair for it becomes a no-op.
func (h *Hybrid) retire(n nodeRef) {
	nd := &h.nodes[n]
	nd.kind = kindRetired
	nd.parent = nilNode
	nd.centroid = nil
	nd.members = nil
	nd.children = nil
	nd.heat = 0
}

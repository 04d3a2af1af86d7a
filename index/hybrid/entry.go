package hybrid

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/blast/core"
)

// neighbor is a directed graph edge with its cached distance.
type neighbor struct {
	id   core.VectorID
	dist float32
}

// vectorEntry is the per-vector bookkeeping: the containing bucket
// (back-reference, non-owning), the usage counter and the local proximity
// graph edges. Entries are created on Insert and never destroyed.
type vectorEntry struct {
	id     core.VectorID
	bucket nodeRef
	heat   uint32

	// out is sorted ascending by (dist, id) and capped at the configured
	// degree. Edges may cross bucket boundaries after a split.
	out []neighbor

	// in is the unbounded set of vectors holding an edge to this one.
	in *roaring.Bitmap
}

// addNeighbor inserts a directed edge e.id -> nid, keeping out sorted and
// bounded. The worst edge is dropped when the list overflows. Reverse
// bookkeeping in the in-sets is kept consistent.
func (h *Hybrid) addNeighbor(e *vectorEntry, nid core.VectorID, d float32) {
	if nid == e.id {
		return
	}
	for _, nb := range e.out {
		if nb.id == nid {
			return
		}
	}

	pos := sort.Search(len(e.out), func(i int) bool {
		nb := e.out[i]
		return nb.dist > d || (nb.dist == d && nb.id > nid)
	})
	if pos >= h.opts.NeighborDegree {
		return
	}

	e.out = append(e.out, neighbor{})
	copy(e.out[pos+1:], e.out[pos:])
	e.out[pos] = neighbor{id: nid, dist: d}
	h.entries[nid].in.Add(uint32(e.id))

	if len(e.out) > h.opts.NeighborDegree {
		dropped := e.out[len(e.out)-1]
		e.out = e.out[:len(e.out)-1]
		h.entries[dropped.id].in.Remove(uint32(e.id))
	}
}

// linkPair creates the bidirectional bootstrap edges used by window linking.
func (h *Hybrid) linkPair(a, b core.VectorID) {
	if a == b {
		return
	}
	va := h.mustVector(a)
	vb := h.mustVector(b)
	d := h.distFn(va, vb)
	h.addNeighbor(h.entries[a], b, d)
	h.addNeighbor(h.entries[b], a, d)
}

// mustVector fetches a vector that the index has already accepted. The store
// contract makes vectors immutable, so a miss means structural corruption.
func (h *Hybrid) mustVector(id core.VectorID) []float32 {
	v, ok := h.store.GetVector(id)
	if !ok {
		panic("hybrid: indexed vector missing from store")
	}
	return v
}

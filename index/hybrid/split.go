package hybrid

import (
	"github.com/viterin/vek/vek32"

	"github.com/hupe1980/blast/core"
	"github.com/hupe1980/blast/distance"
)

// split reorganizes an overflowing or overheated node into two siblings.
// A node with fewer than two distinct members is left alone with its heat
// cleared, so a degenerate region cannot re-trigger itself.
func (h *Hybrid) split(n nodeRef) {
	switch h.nodes[n].kind {
	case kindBucket:
		h.splitBucket(n)
	case kindRouting:
		h.splitRouting(n)
	}
}

func (h *Hybrid) splitBucket(n nodeRef) {
	members := h.nodes[n].members
	points := make([][]float32, len(members))
	for i, id := range members {
		points[i] = h.mustVector(id)
	}

	left, right, ok := twoWayPartition(points, h.distFn)
	if !ok {
		h.nodes[n].heat = 0
		return
	}

	parent := h.nodes[n].parent
	lb := h.newBucketFrom(members, points, left)
	rb := h.newBucketFrom(members, points, right)

	// Graph edges travel with their vectors: entries reference ids, not
	// buckets, so edges now crossing the new boundary survive untouched
	// until the next repair refines them.

	h.retire(n)
	h.rehome(n, parent, lb, rb)

	h.splits++
	h.enqueueRepair(lb)
	h.enqueueRepair(rb)
}

func (h *Hybrid) splitRouting(n nodeRef) {
	children := h.nodes[n].children
	points := make([][]float32, len(children))
	for i, c := range children {
		points[i] = h.nodes[c].centroid
	}

	left, right, ok := twoWayPartition(points, h.distFn)
	if !ok {
		h.nodes[n].heat = 0
		return
	}

	parent := h.nodes[n].parent
	ln := h.newRoutingFrom(children, left)
	rn := h.newRoutingFrom(children, right)

	h.retire(n)
	h.rehome(n, parent, ln, rn)

	h.splits++
	h.enqueueRepair(ln)
	h.enqueueRepair(rn)
}

// newBucketFrom materializes a bucket holding the selected members, in their
// original insertion order, with an exact centroid and radius.
func (h *Hybrid) newBucketFrom(members []core.VectorID, points [][]float32, idx []int) nodeRef {
	sub := make([]core.VectorID, len(idx))
	subPoints := make([][]float32, len(idx))
	for i, j := range idx {
		sub[i] = members[j]
		subPoints[i] = points[j]
	}

	centroid := meanVectors(subPoints)
	var radius float32
	for _, p := range subPoints {
		if d := h.distFn(centroid, p); d > radius {
			radius = d
		}
	}

	ref := h.alloc(node{
		kind:        kindBucket,
		parent:      nilNode,
		centroid:    centroid,
		radius:      radius,
		descendants: len(sub),
		members:     sub,
	})
	for _, id := range sub {
		h.entries[id].bucket = ref
	}
	return ref
}

// newRoutingFrom materializes a routing node owning the selected children.
func (h *Hybrid) newRoutingFrom(children []nodeRef, idx []int) nodeRef {
	sub := make([]nodeRef, len(idx))
	for i, j := range idx {
		sub[i] = children[j]
	}

	centroid, radius, total := h.aggregateChildren(sub)
	ref := h.alloc(node{
		kind:        kindRouting,
		parent:      nilNode,
		centroid:    centroid,
		radius:      radius,
		descendants: total,
		children:    sub,
	})
	for _, c := range sub {
		h.nodes[c].parent = ref
	}
	return ref
}

// rehome attaches the two split products where the old node used to be.
// A split root grows the tree upward under a fresh routing root; otherwise
// the pair replaces the old node in its parent, and the parent itself is
// split recursively if its fanout overflows.
func (h *Hybrid) rehome(old nodeRef, parent, a, b nodeRef) {
	if parent == nilNode {
		centroid, radius, total := h.aggregateChildren([]nodeRef{a, b})
		root := h.alloc(node{
			kind:        kindRouting,
			parent:      nilNode,
			centroid:    centroid,
			radius:      radius,
			descendants: total,
			children:    []nodeRef{a, b},
		})
		h.nodes[a].parent = root
		h.nodes[b].parent = root
		h.root = root
		h.enqueueRepair(root)
		return
	}

	children := h.nodes[parent].children
	at := -1
	for i, c := range children {
		if c == old {
			at = i
			break
		}
	}
	if at < 0 {
		panic("hybrid: split node missing from its parent")
	}

	children = append(children, nilNode)
	copy(children[at+2:], children[at+1:])
	children[at], children[at+1] = a, b
	h.nodes[parent].children = children
	h.nodes[a].parent = parent
	h.nodes[b].parent = parent

	h.propagateContainment(a)
	h.propagateContainment(b)
	h.enqueueRepair(parent)

	if len(children) > h.opts.RoutingFanout {
		h.splitRouting(parent)
	}
}

// aggregateChildren derives a routing node's sphere from its children: the
// centroid is the descendant-weighted mean of child centroids, the radius
// the maximum of dist(centroid, child) + child.radius, which keeps the bound
// conservative over every descendant vector.
func (h *Hybrid) aggregateChildren(children []nodeRef) (centroid []float32, radius float32, total int) {
	dim := h.store.Dimension()
	centroid = make([]float32, dim)
	for _, c := range children {
		nd := &h.nodes[c]
		w := float32(nd.descendants)
		for i, x := range nd.centroid {
			centroid[i] += w * x
		}
		total += nd.descendants
	}
	if total > 0 {
		vek32.MulNumber_Inplace(centroid, 1/float32(total))
	}
	for _, c := range children {
		nd := &h.nodes[c]
		if d := h.distFn(centroid, nd.centroid) + nd.radius; d > radius {
			radius = d
		}
	}
	return centroid, radius, total
}

// twoWayPartition splits points into two groups by their nearest of two
// farthest-pair seeds: the point farthest from the mean and the point
// farthest from that one. Ties assign to the first seed, in index order, so
// the partition is deterministic. ok is false when the points cannot be
// usefully split (fewer than two distinct points).
func twoWayPartition(points [][]float32, distFn distance.Func) (left, right []int, ok bool) {
	if len(points) < 2 {
		return nil, nil, false
	}

	centroid := meanVectors(points)

	seedA := 0
	var bestA float32 = -1
	for i, p := range points {
		if d := distFn(centroid, p); d > bestA {
			seedA, bestA = i, d
		}
	}

	seedB := -1
	var bestB float32 = -1
	for i, p := range points {
		if i == seedA {
			continue
		}
		if d := distFn(points[seedA], p); d > bestB {
			seedB, bestB = i, d
		}
	}
	if seedB < 0 || bestB == 0 {
		// All points coincide; splitting cannot separate them.
		return nil, nil, false
	}

	for i, p := range points {
		da := distFn(points[seedA], p)
		db := distFn(points[seedB], p)
		if da <= db {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right, true
}

// meanVectors computes the arithmetic mean of the given points.
func meanVectors(points [][]float32) []float32 {
	mean := make([]float32, len(points[0]))
	for _, p := range points {
		vek32.Add_Inplace(mean, p)
	}
	vek32.MulNumber_Inplace(mean, 1/float32(len(points)))
	return mean
}

package hybrid

import (
	"sort"

	"github.com/hupe1980/blast/core"
)

// enqueueRepair schedules a node for maintenance. The queued guard keeps a
// node from occupying more than one queue slot.
func (h *Hybrid) enqueueRepair(n nodeRef) {
	if h.nodes[n].queued {
		return
	}
	h.nodes[n].queued = true
	h.repairQueue = append(h.repairQueue, n)
}

// drainOne processes exactly one queued node, skipping slots retired by
// splits since they were enqueued. Called synchronously from Insert; there
// is no background maintenance.
func (h *Hybrid) drainOne() {
	for len(h.repairQueue) > 0 {
		n := h.repairQueue[0]
		h.repairQueue = h.repairQueue[1:]
		h.nodes[n].queued = false
		if h.nodes[n].kind == kindRetired {
			continue
		}
		h.maintain(n)
		return
	}
}

// maintain reorganizes the node if the policy demands it, otherwise repairs
// its bounds and graph edges.
func (h *Hybrid) maintain(n nodeRef) {
	if needsReorg(h.reorgInputs(n)) {
		h.split(n)
		return
	}
	h.repairNode(n)
}

// repairNode recomputes the node's centroid and radius from ground truth,
// refreshes bucket-local graph edges, and re-validates containment in the
// parent sphere. Heat decays by half on repair; a split resets it fully.
func (h *Hybrid) repairNode(n nodeRef) {
	switch h.nodes[n].kind {
	case kindBucket:
		h.repairBucket(n)
	case kindRouting:
		h.repairRouting(n)
	}
	h.nodes[n].heat /= 2
	h.repairs++
}

func (h *Hybrid) repairBucket(n nodeRef) {
	members := h.nodes[n].members
	if len(members) == 0 {
		h.nodes[n].radius = 0
		return
	}

	points := make([][]float32, len(members))
	for i, id := range members {
		points[i] = h.mustVector(id)
	}

	centroid := meanVectors(points)
	var radius float32
	for _, p := range points {
		if d := h.distFn(centroid, p); d > radius {
			radius = d
		}
	}
	h.nodes[n].centroid = centroid
	h.nodes[n].radius = radius

	for _, id := range members {
		h.refreshNeighbors(id)
	}

	h.propagateContainment(n)
}

func (h *Hybrid) repairRouting(n nodeRef) {
	children := h.nodes[n].children
	if len(children) == 0 {
		panic("hybrid: routing node without children")
	}

	centroid, radius, total := h.aggregateChildren(children)
	if total != h.nodes[n].descendants {
		// The incremental counters and the children disagree; the repair
		// protocol cannot recover from structural corruption.
		panic("hybrid: descendant count mismatch")
	}
	h.nodes[n].centroid = centroid
	h.nodes[n].radius = radius

	h.propagateContainment(n)
}

// refreshNeighbors rebuilds a vector's outgoing edge list from the best
// candidates reachable by a bounded walk over its current neighborhood:
// existing outgoing edges, incoming edges, and up to NeighborHops levels of
// their outgoing edges. Selection uses exact recomputed distances. Reverse
// links are offered opportunistically while the distances are at hand.
func (h *Hybrid) refreshNeighbors(id core.VectorID) {
	e := h.entries[id]
	v := h.mustVector(id)

	dists := make(map[core.VectorID]float32, len(e.out)*h.opts.NeighborDegree)
	var frontier []core.VectorID

	consider := func(c core.VectorID) {
		if c == id {
			return
		}
		if _, seen := dists[c]; seen {
			return
		}
		dists[c] = h.distFn(v, h.mustVector(c))
		frontier = append(frontier, c)
	}

	for _, nb := range e.out {
		consider(nb.id)
	}
	e.in.Iterate(func(x uint32) bool {
		consider(core.VectorID(x))
		return true
	})

	// frontier grows while we scan it; level tracks the hop boundary.
	for hop, level := 1, len(frontier); hop < h.opts.NeighborHops; hop++ {
		scan := frontier[:level]
		for _, c := range scan {
			for _, nb := range h.entries[c].out {
				consider(nb.id)
			}
		}
		if len(frontier) == level {
			break
		}
		level = len(frontier)
	}

	candidates := make([]neighbor, 0, len(dists))
	for c, d := range dists {
		candidates = append(candidates, neighbor{id: c, dist: d})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].id < candidates[j].id
	})
	if len(candidates) > h.opts.NeighborDegree {
		candidates = candidates[:h.opts.NeighborDegree]
	}

	// Swap in the refreshed list, keeping the reverse in-sets consistent.
	kept := make(map[core.VectorID]bool, len(candidates))
	for _, nb := range candidates {
		kept[nb.id] = true
	}
	for _, nb := range e.out {
		if !kept[nb.id] {
			h.entries[nb.id].in.Remove(uint32(id))
		}
	}
	e.out = candidates
	for _, nb := range candidates {
		h.entries[nb.id].in.Add(uint32(id))
		h.addNeighbor(h.entries[nb.id], id, nb.dist)
	}
}

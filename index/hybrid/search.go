package hybrid

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/blast/core"
	"github.com/hupe1980/blast/index"
	"github.com/hupe1980/blast/internal/queue"
)

// KNNSearch returns approximately the k nearest vectors to q, sorted
// ascending by distance with ties broken by ascending id.
//
// Traversal keeps a frontier of candidate nodes ordered by the admissible
// lower bound dist(q, centroid) - radius. Routing children whose bound
// cannot beat the current k-th best are pruned; bucket members are evaluated
// exactly and then expanded laterally through the neighbor graph, with a
// shared visited set deduplicating vectors reached by both paths. Evaluated
// vectors and their buckets accumulate heat, the signal behind proactive
// reorganization.
//
// This is best-effort approximation: recall depends on the configured
// capacity, degree and hop depth, not on a guarantee of the algorithm.
func (h *Hybrid) KNNSearch(q []float32, k int) ([]index.SearchResult, error) {
	if k <= 0 {
		return nil, index.ErrInvalidK
	}
	if len(q) != h.store.Dimension() {
		return nil, &index.ErrDimensionMismatch{Expected: h.store.Dimension(), Actual: len(q)}
	}
	if h.size == 0 {
		return []index.SearchResult{}, nil
	}

	frontier := queue.NewMin()
	results := queue.NewMax()
	visited := roaring.New()

	frontier.Push(queue.Item{Ref: uint32(h.root), Distance: h.lowerBound(q, h.root)})

	for frontier.Len() > 0 {
		item, _ := frontier.Pop()
		if results.Len() == k {
			if worst, _ := results.Top(); item.Distance > worst.Distance {
				// The frontier is bound-ordered: everything left is at
				// least this far away.
				break
			}
		}

		n := nodeRef(item.Ref)
		switch h.nodes[n].kind {
		case kindRouting:
			for _, c := range h.nodes[n].children {
				lb := h.lowerBound(q, c)
				if results.Len() == k {
					if worst, _ := results.Top(); lb > worst.Distance {
						continue
					}
				}
				frontier.Push(queue.Item{Ref: uint32(c), Distance: lb})
			}
		case kindBucket:
			h.scanBucket(n, q, k, results, visited)
		case kindRetired:
			panic("hybrid: retired node reachable from root")
		}
	}

	out := make([]index.SearchResult, results.Len())
	for i := results.Len() - 1; i >= 0; i-- {
		item, _ := results.Pop()
		out[i] = index.SearchResult{ID: core.VectorID(item.Ref), Distance: item.Distance}
	}
	return out, nil
}

// lowerBound is the admissible bound on the distance from q to any vector
// under n, clamped at zero.
func (h *Hybrid) lowerBound(q []float32, n nodeRef) float32 {
	nd := &h.nodes[n]
	if nd.centroid == nil {
		return 0
	}
	lb := h.distFn(q, nd.centroid) - nd.radius
	if lb < 0 {
		lb = 0
	}
	return lb
}

// scanBucket evaluates every unvisited member of the bucket, then walks the
// neighbor graph outward. Every newly evaluated bucket member is expanded;
// lateral discoveries are expanded further only while they keep improving
// the top-k, which bounds the walk without a separate budget.
func (h *Hybrid) scanBucket(n nodeRef, q []float32, k int, results *queue.Heap, visited *roaring.Bitmap) {
	var expand []core.VectorID

	for _, id := range h.nodes[n].members {
		if visited.Contains(uint32(id)) {
			continue
		}
		h.evaluate(id, q, k, results, visited)
		expand = append(expand, id)
	}

	for len(expand) > 0 {
		id := expand[len(expand)-1]
		expand = expand[:len(expand)-1]
		for _, nb := range h.entries[id].out {
			if visited.Contains(uint32(nb.id)) {
				continue
			}
			if h.evaluate(nb.id, q, k, results, visited) {
				expand = append(expand, nb.id)
			}
		}
	}
}

// evaluate computes the exact distance from q to id, feeds the top-k heap
// and the heat counters, and reports whether the vector entered the top-k.
func (h *Hybrid) evaluate(id core.VectorID, q []float32, k int, results *queue.Heap, visited *roaring.Bitmap) bool {
	visited.Add(uint32(id))

	d := h.distFn(q, h.mustVector(id))

	e := h.entries[id]
	e.heat++
	h.nodes[e.bucket].heat++
	if needsReorg(h.reorgInputs(e.bucket)) {
		h.enqueueRepair(e.bucket)
	}

	item := queue.Item{Ref: uint32(id), Distance: d}
	if results.Len() < k {
		results.Push(item)
		return true
	}
	worst, _ := results.Top()
	if d < worst.Distance || (d == worst.Distance && item.Ref < worst.Ref) {
		results.Pop()
		results.Push(item)
		return true
	}
	return false
}

package hybrid

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/hupe1980/blast/core"
)

// Stats is a point-in-time snapshot of index shape and maintenance counters.
type Stats struct {
	Size           int    // indexed vectors
	Buckets        int    // live leaf nodes
	RoutingNodes   int    // live internal nodes
	RetiredNodes   int    // arena slots consumed by past splits
	MaxDepth       int    // root-to-leaf depth (root alone = 1)
	GraphEdges     int    // outgoing neighbor edges across all vectors
	PendingRepairs int    // queued, non-retired nodes
	Splits         uint64 // completed reorganizations
	Repairs        uint64 // completed repair steps
}

// Stats returns a snapshot of the index structure.
func (h *Hybrid) Stats() Stats {
	s := Stats{
		Size:    h.size,
		Splits:  h.splits,
		Repairs: h.repairs,
	}
	for i := range h.nodes {
		switch h.nodes[i].kind {
		case kindBucket:
			s.Buckets++
		case kindRouting:
			s.RoutingNodes++
		case kindRetired:
			s.RetiredNodes++
		}
	}
	for _, n := range h.repairQueue {
		if h.nodes[n].kind != kindRetired {
			s.PendingRepairs++
		}
	}
	for _, e := range h.entries {
		s.GraphEdges += len(e.out)
	}
	s.MaxDepth = h.depthBelow(h.root)
	return s
}

func (h *Hybrid) depthBelow(n nodeRef) int {
	if h.nodes[n].kind != kindRouting {
		return 1
	}
	max := 0
	for _, c := range h.nodes[n].children {
		if d := h.depthBelow(c); d > max {
			max = d
		}
	}
	return max + 1
}

// BucketInfo describes one live bucket, for testing and observability.
type BucketInfo struct {
	Members  []core.VectorID
	Centroid []float32
	Radius   float32
	Heat     uint32
}

// Buckets enumerates the live buckets in arena order. The returned slices
// are copies; mutating them does not affect the index.
func (h *Hybrid) Buckets() []BucketInfo {
	var out []BucketInfo
	for i := range h.nodes {
		nd := &h.nodes[i]
		if nd.kind != kindBucket {
			continue
		}
		out = append(out, BucketInfo{
			Members:  slices.Clone(nd.members),
			Centroid: slices.Clone(nd.centroid),
			Radius:   nd.radius,
			Heat:     nd.heat,
		})
	}
	return out
}

// Neighbor is one directed graph edge as seen by the diagnostic surface.
type Neighbor struct {
	ID       core.VectorID
	Distance float32
}

// EntryInfo describes one vector entry, for testing and observability.
type EntryInfo struct {
	ID        core.VectorID
	Heat      uint32
	Neighbors []Neighbor      // outgoing, ascending by distance
	Incoming  []core.VectorID // ascending by id
}

// Entries enumerates all vector entries, ascending by id.
func (h *Hybrid) Entries() []EntryInfo {
	out := make([]EntryInfo, 0, len(h.entries))
	for _, e := range h.entries {
		info := EntryInfo{ID: e.id, Heat: e.heat}
		for _, nb := range e.out {
			info.Neighbors = append(info.Neighbors, Neighbor{ID: nb.id, Distance: nb.dist})
		}
		e.in.Iterate(func(x uint32) bool {
			info.Incoming = append(info.Incoming, core.VectorID(x))
			return true
		})
		out = append(out, info)
	}
	slices.SortFunc(out, func(a, b EntryInfo) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Validate walks the whole structure and checks every documented invariant:
// mutually consistent and acyclic parent links, exact descendant counts,
// exactly one bucket per vector, conservative radii over every descendant
// vector, and the neighbor out-degree bound. It exists for tests and
// debugging; operations panic instead when they trip over corruption.
func (h *Hybrid) Validate() error {
	if h.nodes[h.root].parent != nilNode {
		return fmt.Errorf("root has a parent")
	}

	seenNodes := make(map[nodeRef]bool)
	owner := make(map[core.VectorID]nodeRef)

	var walk func(n nodeRef) (int, error)
	walk = func(n nodeRef) (int, error) {
		if seenNodes[n] {
			return 0, fmt.Errorf("node %d reachable twice", n)
		}
		seenNodes[n] = true
		nd := &h.nodes[n]

		switch nd.kind {
		case kindBucket:
			for _, id := range nd.members {
				if prev, dup := owner[id]; dup {
					return 0, fmt.Errorf("vector %d in buckets %d and %d", id, prev, n)
				}
				owner[id] = n
				e, ok := h.entries[id]
				if !ok {
					return 0, fmt.Errorf("vector %d has no entry", id)
				}
				if e.bucket != n {
					return 0, fmt.Errorf("vector %d back-reference %d != bucket %d", id, e.bucket, n)
				}
			}
			if nd.descendants != len(nd.members) {
				return 0, fmt.Errorf("bucket %d descendants %d != members %d", n, nd.descendants, len(nd.members))
			}
			return len(nd.members), nil

		case kindRouting:
			if len(nd.children) == 0 {
				return 0, fmt.Errorf("routing node %d has no children", n)
			}
			total := 0
			for _, c := range nd.children {
				if h.nodes[c].parent != n {
					return 0, fmt.Errorf("child %d parent %d != %d", c, h.nodes[c].parent, n)
				}
				sub, err := walk(c)
				if err != nil {
					return 0, err
				}
				total += sub
			}
			if nd.descendants != total {
				return 0, fmt.Errorf("routing node %d descendants %d != %d", n, nd.descendants, total)
			}
			return total, nil

		default:
			return 0, fmt.Errorf("retired node %d reachable from root", n)
		}
	}

	total, err := walk(h.root)
	if err != nil {
		return err
	}
	if total != h.size {
		return fmt.Errorf("reachable vectors %d != size %d", total, h.size)
	}

	// Radius conservativeness, for every vector against every ancestor.
	const slack = 1e-4
	for id, e := range h.entries {
		v := h.mustVector(id)
		for n := e.bucket; n != nilNode; n = h.nodes[n].parent {
			nd := &h.nodes[n]
			if d := h.distFn(nd.centroid, v); d > nd.radius*(1+slack)+slack {
				return fmt.Errorf("vector %d at %f outside node %d radius %f", id, d, n, nd.radius)
			}
		}
		if len(e.out) > h.opts.NeighborDegree {
			return fmt.Errorf("vector %d out-degree %d exceeds %d", id, len(e.out), h.opts.NeighborDegree)
		}
	}

	return nil
}

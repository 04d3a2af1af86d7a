package hybrid

// reorgInputs captures the node state consulted by the reorganization
// policy: current occupancy against the hard limit, and accumulated query
// heat against the proactive limit.
type reorgInputs struct {
	size      int
	limit     int
	heat      uint32
	heatLimit uint32
}

// needsReorg decides whether a node must be reorganized. Occupancy overflow
// is the hard trigger; heat crossing its limit reorganizes hot regions even
// while under capacity, keeping local search effective under skewed query
// distributions.
//
// The policy is a pure function so it can be tuned and tested independently
// of the traversal and maintenance code that feeds it.
func needsReorg(in reorgInputs) bool {
	return in.size > in.limit || in.heat > in.heatLimit
}

// reorgInputs assembles the policy inputs for a node.
func (h *Hybrid) reorgInputs(n nodeRef) reorgInputs {
	nd := &h.nodes[n]
	size, limit := len(nd.members), h.opts.BucketCapacity
	if nd.kind == kindRouting {
		size, limit = len(nd.children), h.opts.RoutingFanout
	}
	return reorgInputs{
		size:      size,
		limit:     limit,
		heat:      nd.heat,
		heatLimit: h.opts.HeatThreshold,
	}
}

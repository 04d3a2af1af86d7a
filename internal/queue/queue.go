// Package queue provides the value-based binary heaps used on the search
// hot path: a min-heap for the candidate frontier and a bounded max-heap
// for the running top-k.
package queue

// Item is a heap element: a reference (node index or vector id) with its
// priority. Value-based storage keeps the heaps allocation-free per push.
type Item struct {
	Ref      uint32
	Distance float32
}

// Heap is a binary heap of Items. Ties on Distance are broken by Ref so
// that search results are deterministic: in a min-heap the smaller Ref
// wins, in a max-heap the larger Ref is considered worse.
type Heap struct {
	max   bool
	items []Item
}

// NewMin creates a min-heap.
func NewMin() *Heap {
	return &Heap{}
}

// NewMax creates a max-heap.
func NewMax() *Heap {
	return &Heap{max: true}
}

// Len returns the number of items in the heap.
func (h *Heap) Len() int {
	return len(h.items)
}

// Top returns the root element without removing it.
func (h *Heap) Top() (Item, bool) {
	if len(h.items) == 0 {
		return Item{}, false
	}
	return h.items[0], true
}

// Push inserts an item while maintaining the heap invariant.
func (h *Heap) Push(item Item) {
	h.items = append(h.items, item)
	h.siftUp(len(h.items) - 1)
}

// Pop removes and returns the root element.
func (h *Heap) Pop() (Item, bool) {
	n := len(h.items)
	if n == 0 {
		return Item{}, false
	}
	root := h.items[0]
	last := h.items[n-1]
	h.items[n-1] = Item{}
	h.items = h.items[:n-1]
	if n-1 > 0 {
		h.items[0] = last
		h.siftDown(0)
	}
	return root, true
}

func (h *Heap) less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if h.max {
		if a.Distance != b.Distance {
			return a.Distance > b.Distance
		}
		return a.Ref > b.Ref
	}
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Ref < b.Ref
}

func (h *Heap) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !h.less(i, p) {
			return
		}
		h.items[i], h.items[p] = h.items[p], h.items[i]
		i = p
	}
}

func (h *Heap) siftDown(i int) {
	n := len(h.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && h.less(r, l) {
			best = r
		}
		if !h.less(best, i) {
			return
		}
		h.items[i], h.items[best] = h.items[best], h.items[i]
		i = best
	}
}

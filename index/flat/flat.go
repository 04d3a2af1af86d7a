// Package flat provides an exact brute-force index over a vector store.
//
// It scans every indexed vector per search and is the recall baseline the
// approximate hybrid index is measured against. Use it directly for small
// datasets where exact results matter more than query latency.
package flat

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/blast/core"
	"github.com/hupe1980/blast/distance"
	"github.com/hupe1980/blast/index"
	"github.com/hupe1980/blast/internal/queue"
	"github.com/hupe1980/blast/vectorstore"
)

// Compile-time check to ensure Flat satisfies the Index interface.
var _ index.Index = (*Flat)(nil)

// Options contains configuration options for the flat index.
type Options struct {
	// Metric selects the distance metric.
	Metric distance.Metric
}

// DefaultOptions contains the default configuration options for the flat index.
var DefaultOptions = Options{
	Metric: distance.MetricL2,
}

// Flat is an exact, insert-only index. It is not safe for concurrent use.
type Flat struct {
	store  vectorstore.Store
	distFn distance.Func
	ids    []core.VectorID
	seen   *roaring.Bitmap
	opts   Options
}

// New creates a new flat index over the given store.
func New(store vectorstore.Store, optFns ...func(o *Options)) (*Flat, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if store == nil {
		return nil, index.ErrNilStore
	}

	distFn, err := distance.Provider(opts.Metric)
	if err != nil {
		return nil, err
	}

	return &Flat{
		store:  store,
		distFn: distFn,
		seen:   roaring.New(),
		opts:   opts,
	}, nil
}

// Len returns the number of indexed vectors.
func (f *Flat) Len() int {
	return len(f.ids)
}

// Insert adds a vector already present in the store to the index.
func (f *Flat) Insert(id core.VectorID) error {
	if _, ok := f.store.GetVector(id); !ok {
		return &index.ErrVectorNotFound{ID: id}
	}
	if f.seen.Contains(uint32(id)) {
		return &index.ErrDuplicateID{ID: id}
	}

	f.seen.Add(uint32(id))
	f.ids = append(f.ids, id)

	return nil
}

// KNNSearch returns the exact k nearest vectors to q, sorted ascending by
// distance with ties broken by ascending id.
func (f *Flat) KNNSearch(q []float32, k int) ([]index.SearchResult, error) {
	if k <= 0 {
		return nil, index.ErrInvalidK
	}
	if len(q) != f.store.Dimension() {
		return nil, &index.ErrDimensionMismatch{Expected: f.store.Dimension(), Actual: len(q)}
	}

	top := queue.NewMax()

	for _, id := range f.ids {
		v, ok := f.store.GetVector(id)
		if !ok {
			continue
		}
		item := queue.Item{Ref: uint32(id), Distance: f.distFn(q, v)}

		if top.Len() < k {
			top.Push(item)
			continue
		}
		if worst, _ := top.Top(); item.Distance < worst.Distance ||
			(item.Distance == worst.Distance && item.Ref < worst.Ref) {
			top.Pop()
			top.Push(item)
		}
	}

	results := make([]index.SearchResult, top.Len())
	for i := top.Len() - 1; i >= 0; i-- {
		item, _ := top.Pop()
		results[i] = index.SearchResult{ID: core.VectorID(item.Ref), Distance: item.Distance}
	}

	return results, nil
}

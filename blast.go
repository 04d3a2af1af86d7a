package blast

import (
	"time"

	"github.com/hupe1980/blast/core"
	"github.com/hupe1980/blast/index"
	"github.com/hupe1980/blast/index/flat"
	"github.com/hupe1980/blast/index/hybrid"
	"github.com/hupe1980/blast/vectorstore"
)

// Blast is the top-level handle: an index over an external vector store,
// plus logging and metrics. It is not safe for concurrent use; callers
// must serialize Insert and Query.
type Blast struct {
	idx   index.Index
	store vectorstore.Store

	// hyb is set unless the exact baseline was selected; the diagnostic
	// surface is only meaningful for the hybrid index.
	hyb *hybrid.Hybrid

	logger  *Logger
	metrics MetricsCollector
}

// New creates a new index over the given store.
func New(store vectorstore.Store, optFns ...Option) (*Blast, error) {
	opts := options{
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	b := &Blast{
		store:   store,
		logger:  opts.logger,
		metrics: opts.metrics,
	}

	if opts.exact {
		idx, err := flat.New(store, func(o *flat.Options) {
			o.Metric = opts.metric
		})
		if err != nil {
			return nil, err
		}
		b.idx = idx
		return b, nil
	}

	hyb, err := hybrid.New(store, opts.indexOpts...)
	if err != nil {
		return nil, err
	}
	b.idx = hyb
	b.hyb = hyb

	return b, nil
}

// Insert adds a vector already present in the store to the index.
// Unknown ids fail with ErrNotFound, repeated ids with ErrDuplicate; in
// both cases the index is left unchanged.
func (b *Blast) Insert(id core.VectorID) error {
	start := time.Now()
	err := translateError(b.idx.Insert(id))
	b.metrics.RecordInsert(time.Since(start), err)
	b.logger.LogInsert(id, err)
	return err
}

// Query returns approximately the k nearest vectors to q, sorted ascending
// by distance. The result has min(k, Len()) entries. k <= 0 fails with
// ErrInvalidK.
func (b *Blast) Query(q []float32, k int) ([]index.SearchResult, error) {
	start := time.Now()
	results, err := b.idx.KNNSearch(q, k)
	err = translateError(err)
	b.metrics.RecordQuery(k, time.Since(start), err)
	b.logger.LogQuery(k, len(results), err)
	return results, err
}

// Len returns the number of indexed vectors.
func (b *Blast) Len() int {
	return b.idx.Len()
}

// Stats returns a snapshot of index shape and maintenance counters.
// With the exact baseline active only Size is populated.
func (b *Blast) Stats() hybrid.Stats {
	if b.hyb == nil {
		return hybrid.Stats{Size: b.idx.Len()}
	}
	return b.hyb.Stats()
}

// Buckets enumerates the live buckets. Read-only diagnostic surface;
// empty with the exact baseline active.
func (b *Blast) Buckets() []hybrid.BucketInfo {
	if b.hyb == nil {
		return nil
	}
	return b.hyb.Buckets()
}

// Entries enumerates all vector entries with their heat and neighbor
// lists. Read-only diagnostic surface; empty with the exact baseline
// active.
func (b *Blast) Entries() []hybrid.EntryInfo {
	if b.hyb == nil {
		return nil
	}
	return b.hyb.Entries()
}

package blast

import (
	"github.com/hupe1980/blast/distance"
	"github.com/hupe1980/blast/index/hybrid"
)

type options struct {
	logger    *Logger
	metrics   MetricsCollector
	indexOpts []func(o *hybrid.Options)
	metric    distance.Metric
	exact     bool
}

// Option configures constructor behavior.
type Option func(*options)

// WithLogger configures structured logging. If nil is passed, logging is
// disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures operational metrics collection.
// If nil is passed, metrics are disabled.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithIndexOptions forwards raw tuning options to the underlying index.
// Use this for knobs without a dedicated Option.
func WithIndexOptions(fns ...func(o *hybrid.Options)) Option {
	return func(o *options) {
		o.indexOpts = append(o.indexOpts, fns...)
	}
}

// WithMetric selects the distance metric, L2 by default. Cosine expects
// vectors that were L2-normalized before entering the store.
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		o.metric = m
		o.indexOpts = append(o.indexOpts, func(ho *hybrid.Options) {
			ho.Metric = m
		})
	}
}

// WithExactSearch replaces the approximate hybrid index with the exact
// brute-force baseline. Queries scan every vector; use it for small
// datasets or to measure recall. Index tuning options are ignored and the
// diagnostic surface is empty in this mode.
func WithExactSearch() Option {
	return func(o *options) {
		o.exact = true
	}
}

// WithBucketCapacity bounds the member count of a leaf bucket.
func WithBucketCapacity(capacity int) Option {
	return WithIndexOptions(func(o *hybrid.Options) {
		o.BucketCapacity = capacity
	})
}

// WithNeighborDegree bounds the outgoing neighbor edges per vector.
func WithNeighborDegree(degree int) Option {
	return WithIndexOptions(func(o *hybrid.Options) {
		o.NeighborDegree = degree
	})
}

// WithWindowSize sets how many recently inserted bucket members a new
// vector is linked to on insert.
func WithWindowSize(w int) Option {
	return WithIndexOptions(func(o *hybrid.Options) {
		o.WindowSize = w
	})
}

// WithHeatThreshold sets the query-visit count past which a node is
// reorganized even while under capacity.
func WithHeatThreshold(threshold uint32) Option {
	return WithIndexOptions(func(o *hybrid.Options) {
		o.HeatThreshold = threshold
	})
}

// WithRepairInterval sets the number of inserts between repair-queue drain
// steps.
func WithRepairInterval(n int) Option {
	return WithIndexOptions(func(o *hybrid.Options) {
		o.RepairInterval = n
	})
}

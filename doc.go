// Package blast provides an embedded, in-memory approximate-nearest-neighbor
// index for Go.
//
// Blast combines a bounded-capacity partition tree with a per-vector
// proximity graph. Inserts are cheap and incremental; a synchronous repair
// queue keeps geometric bounds and graph edges close to ground truth without
// background threads, and query heat reorganizes hot regions proactively.
//
// Vectors are owned by an external store and referenced by id only:
//
//	store := vectorstore.NewMemory(4)
//	for i, v := range vectors {
//	    _ = store.SetVector(core.VectorID(i), v)
//	}
//
//	db, err := blast.New(store,
//	    blast.WithBucketCapacity(64),
//	    blast.WithHeatThreshold(32),
//	)
//	if err != nil {
//	    panic(err)
//	}
//
//	for i := range vectors {
//	    _ = db.Insert(core.VectorID(i))
//	}
//
//	results, err := db.Query(query, 10)
//
// The index is insert-only and single-threaded by design: callers must
// serialize Insert and Query on one instance. For exact search over small
// datasets, use index/flat directly.
package blast

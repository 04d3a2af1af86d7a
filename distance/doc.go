// Package distance provides the vector distance kernels used by the indexes.
//
// The kernels delegate to viterin/vek, which dispatches to SIMD
// implementations (AVX2 on x86-64, NEON on ARM64) when available and falls
// back to portable Go otherwise.
//
// The partition-tree pruning bound requires a metric that obeys the triangle
// inequality, so both supported metrics are served by true Euclidean
// distance: cosine search expects vectors that were L2-normalized before
// they entered the store.
package distance

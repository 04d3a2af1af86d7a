package core

// VectorID is the caller-assigned identifier of a vector in the vector store.
// It is strictly 32-bit so it can live in roaring bitmaps and value-based
// heaps without boxing. The index never allocates IDs itself.
type VectorID uint32

// MaxVectorID is the maximum possible value for a VectorID.
const MaxVectorID = ^VectorID(0)

// Package index provides interfaces and types shared by the vector search indexes.
package index

import (
	"errors"
	"fmt"

	"github.com/hupe1980/blast/core"
)

var (
	// ErrInvalidK is returned when a search is requested with k <= 0.
	ErrInvalidK = errors.New("k must be positive")

	// ErrNilStore is returned when an index is constructed without a vector store.
	ErrNilStore = errors.New("vector store must not be nil")
)

// ErrVectorNotFound is returned when an inserted id has no vector in the store.
type ErrVectorNotFound struct {
	ID core.VectorID
}

func (e *ErrVectorNotFound) Error() string {
	return fmt.Sprintf("vector not found: %d", e.ID)
}

// ErrDuplicateID is returned when an id is inserted twice.
type ErrDuplicateID struct {
	ID core.VectorID
}

func (e *ErrDuplicateID) Error() string {
	return fmt.Sprintf("duplicate id: %d", e.ID)
}

// ErrDimensionMismatch is returned when a query vector does not match the
// store dimension.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrInvalidOption is returned when a configuration option is out of range.
type ErrInvalidOption struct {
	Name  string
	Value int
}

func (e *ErrInvalidOption) Error() string {
	return fmt.Sprintf("invalid option %s: %d", e.Name, e.Value)
}

// SearchResult represents a single search result.
type SearchResult struct {
	// ID is the identifier of the result vector.
	ID core.VectorID

	// Distance is the distance between the query vector and the result vector.
	Distance float32
}

// Index represents an insert-only index over an external vector store.
type Index interface {
	// Insert adds a vector already present in the store to the index.
	Insert(id core.VectorID) error

	// KNNSearch returns the (approximately) k nearest vectors to q,
	// sorted ascending by distance. The result has min(k, Len()) entries.
	KNNSearch(q []float32, k int) ([]SearchResult, error)

	// Len returns the number of indexed vectors.
	Len() int
}

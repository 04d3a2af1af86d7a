package vectorstore

import (
	"errors"

	"github.com/hupe1980/blast/core"
)

var (
	// ErrWrongDimension is returned when a vector doesn't match the store dimension.
	ErrWrongDimension = errors.New("wrong vector dimension")

	// ErrImmutable is returned when a caller tries to overwrite an existing vector.
	ErrImmutable = errors.New("vector contents are immutable")
)

// Store is the read side of vector storage.
//
// Implementations must treat the configured dimension as authoritative.
// Callers should assume returned slices may alias internal memory unless the
// implementation documents otherwise.
type Store interface {
	Dimension() int
	GetVector(id core.VectorID) ([]float32, bool)
}

// MutableStore is a Store that accepts new vectors. Existing vectors can
// never be overwritten or removed.
type MutableStore interface {
	Store
	SetVector(id core.VectorID, v []float32) error
}

package vectorstore

import (
	"github.com/hupe1980/blast/core"
)

// Compile-time check to ensure Memory satisfies MutableStore.
var _ MutableStore = (*Memory)(nil)

// Memory is an in-memory vector store with a columnar (SOA) layout:
// all vectors live in one contiguous float32 slice, indexed by row.
// Contiguous storage keeps distance kernels cache-friendly and avoids
// one slice header allocation per vector.
//
// Memory is not safe for concurrent use.
type Memory struct {
	dim  int
	data []float32
	rows map[core.VectorID]int
}

// NewMemory creates a new in-memory store for vectors of the given dimension.
func NewMemory(dimension int) *Memory {
	return &Memory{
		dim:  dimension,
		rows: make(map[core.VectorID]int),
	}
}

// Dimension returns the fixed vector dimensionality of the store.
func (m *Memory) Dimension() int {
	return m.dim
}

// Len returns the number of stored vectors.
func (m *Memory) Len() int {
	return len(m.rows)
}

// GetVector returns the vector for id. The returned slice aliases internal
// memory and must not be modified.
func (m *Memory) GetVector(id core.VectorID) ([]float32, bool) {
	row, ok := m.rows[id]
	if !ok {
		return nil, false
	}
	off := row * m.dim
	return m.data[off : off+m.dim : off+m.dim], true
}

// SetVector stores a copy of v under id. Overwriting an existing id fails
// with ErrImmutable.
func (m *Memory) SetVector(id core.VectorID, v []float32) error {
	if len(v) != m.dim {
		return ErrWrongDimension
	}
	if _, ok := m.rows[id]; ok {
		return ErrImmutable
	}
	m.rows[id] = len(m.data) / m.dim
	m.data = append(m.data, v...)
	return nil
}

package distance

import (
	"fmt"
	"math"
	"slices"

	"github.com/viterin/vek/vek32"
)

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	// MetricL2 is the Euclidean distance.
	MetricL2 Metric = iota

	// MetricCosine is cosine distance over L2-normalized vectors.
	// Stored vectors and queries must be normalized by the caller;
	// see NormalizeL2InPlace.
	MetricCosine
)

func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "L2"
	case MetricCosine:
		return "Cosine"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Func is a function type for distance calculation.
// Implementations assume the slices have the same length.
type Func func(a, b []float32) float32

// Dot calculates the dot product of two vectors.
func Dot(a, b []float32) float32 {
	return vek32.Dot(a, b)
}

// L2 calculates the Euclidean distance between two vectors.
// L2 obeys the triangle inequality, which the index pruning bound relies on.
func L2(a, b []float32) float32 {
	return vek32.Distance(a, b)
}

// SquaredL2 calculates the squared Euclidean distance between two vectors.
func SquaredL2(a, b []float32) float32 {
	d := vek32.Distance(a, b)
	return d * d
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false if v has zero L2 norm.
func NormalizeL2InPlace(v []float32) bool {
	if len(v) == 0 {
		return false
	}
	norm2 := vek32.Dot(v, v)
	if norm2 == 0 {
		return false
	}
	inv := 1 / float32(math.Sqrt(float64(norm2)))
	vek32.MulNumber_Inplace(v, inv)
	return true
}

// NormalizeL2Copy returns a normalized copy of src.
// Returns false if src has zero L2 norm.
func NormalizeL2Copy(src []float32) ([]float32, bool) {
	dst := slices.Clone(src)
	if !NormalizeL2InPlace(dst) {
		return nil, false
	}
	return dst, true
}

// Provider returns the distance function for the given metric.
//
// Both metrics resolve to Euclidean distance: cosine is implemented via
// L2 over normalized vectors, matching common vector-store behavior and
// keeping the pruning bound admissible.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricL2, MetricCosine:
		return L2, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

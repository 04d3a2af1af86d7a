// Package testutil provides deterministic fixtures and ground-truth helpers
// for index tests and benchmarks.
package testutil

import (
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/blast/core"
	"github.com/hupe1980/blast/distance"
	"github.com/hupe1980/blast/index"
	"github.com/hupe1980/blast/vectorstore"
)

// RNG encapsulates a seeded random number generator. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Float32 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// RandomVectors generates n random vectors of the given dimension with
// components in [-1, 1).
func RandomVectors(rng *RNG, n, dim int) [][]float32 {
	vectors := make([][]float32, n)
	for i := range vectors {
		v := make([]float32, dim)
		for j := range v {
			v[j] = rng.Float32()*2 - 1
		}
		vectors[i] = v
	}
	return vectors
}

// FillStore stores vectors under ids 0..n-1 and returns the store.
func FillStore(vectors [][]float32) *vectorstore.Memory {
	store := vectorstore.NewMemory(len(vectors[0]))
	for i, v := range vectors {
		if err := store.SetVector(core.VectorID(i), v); err != nil {
			panic(err)
		}
	}
	return store
}

// GroundTruth computes the exact top-k (by L2 distance, ties by ascending
// id) for every query against vectors stored under ids 0..n-1. Queries are
// evaluated in parallel.
func GroundTruth(vectors, queries [][]float32, k int) [][]index.SearchResult {
	truth := make([][]index.SearchResult, len(queries))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for qi, q := range queries {
		qi, q := qi, q
		g.Go(func() error {
			results := make([]index.SearchResult, 0, len(vectors))
			for i, v := range vectors {
				results = append(results, index.SearchResult{
					ID:       core.VectorID(i),
					Distance: distance.L2(q, v),
				})
			}
			sort.Slice(results, func(a, b int) bool {
				if results[a].Distance != results[b].Distance {
					return results[a].Distance < results[b].Distance
				}
				return results[a].ID < results[b].ID
			})
			if len(results) > k {
				results = results[:k]
			}
			truth[qi] = results
			return nil
		})
	}

	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()

	return truth
}

// Recall returns the fraction of ids in want that also appear in got.
func Recall(got, want []index.SearchResult) float64 {
	if len(want) == 0 {
		return 1
	}
	ids := make(map[core.VectorID]bool, len(got))
	for _, r := range got {
		ids[r.ID] = true
	}
	hits := 0
	for _, r := range want {
		if ids[r.ID] {
			hits++
		}
	}
	return float64(hits) / float64(len(want))
}

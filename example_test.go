package blast_test

import (
	"fmt"
	"log"

	"github.com/hupe1980/blast"
	"github.com/hupe1980/blast/core"
	"github.com/hupe1980/blast/vectorstore"
)

func Example() {
	store := vectorstore.NewMemory(2)
	vectors := [][]float32{
		{1, 0},
		{0, 1},
		{1, 1},
		{-1, 0},
	}
	for i, v := range vectors {
		if err := store.SetVector(core.VectorID(i), v); err != nil {
			log.Fatal(err)
		}
	}

	idx, err := blast.New(store)
	if err != nil {
		log.Fatal(err)
	}

	for i := range vectors {
		if err := idx.Insert(core.VectorID(i)); err != nil {
			log.Fatal(err)
		}
	}

	results, err := idx.Query([]float32{0.9, 0.1}, 2)
	if err != nil {
		log.Fatal(err)
	}

	for _, r := range results {
		fmt.Printf("id=%d distance=%.4f\n", r.ID, r.Distance)
	}
	// Output:
	// id=0 distance=0.1414
	// id=2 distance=0.9055
}

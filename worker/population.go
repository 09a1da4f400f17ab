package worker

import (
	"math/rand/v2"

	"github.com/snow-ghost/jigsaw/core"
)

// RandomPopulation returns size uniformly shuffled arrangements of dims.
func RandomPopulation(size int, dims core.Dims, rng *rand.Rand) []*core.Chromosome {
	n := dims.Area()
	population := make([]*core.Chromosome, size)
	for i := range population {
		cells := make([]core.PieceID, n)
		for j, p := range rng.Perm(n) {
			cells[j] = core.PieceID(p)
		}
		c, err := core.NewChromosome(dims, cells)
		if err != nil {
			// a permutation of 0..n-1 always forms a valid chromosome
			panic(err)
		}
		population[i] = c
	}
	return population
}

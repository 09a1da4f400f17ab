// Package selection picks parents in proportion to their fitness.
package selection

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/snow-ghost/jigsaw/core"
)

var ErrEmptyPopulation = errors.New("selection: no fitness scores")

// Roulette samples population indices with probability proportional to 1/cost.
//
// Chromosomes with zero cost have no finite weight; they are left out of proportional
// sampling because the solver already carries them forward as elites. When every
// chromosome costs zero, sampling is uniform over all of them.
type Roulette struct {
	indices    []int
	cumulative []float64
	total      float64
}

// NewRoulette prepares a wheel from scores. Costs must be non-negative numbers.
func NewRoulette(scores []core.FitnessScore) (*Roulette, error) {
	if len(scores) == 0 {
		return nil, ErrEmptyPopulation
	}

	r := &Roulette{
		indices:    make([]int, 0, len(scores)),
		cumulative: make([]float64, 0, len(scores)),
	}
	for _, s := range scores {
		if math.IsNaN(s.Cost) || math.IsInf(s.Cost, 0) || s.Cost < 0 {
			return nil, fmt.Errorf("selection: invalid cost %v for index %d", s.Cost, s.Index)
		}
		if s.Cost == 0 {
			continue
		}
		r.total += 1 / s.Cost
		r.indices = append(r.indices, s.Index)
		r.cumulative = append(r.cumulative, r.total)
	}

	if len(r.indices) == 0 {
		for i, s := range scores {
			r.indices = append(r.indices, s.Index)
			r.cumulative = append(r.cumulative, float64(i+1))
		}
		r.total = float64(len(scores))
	}

	return r, nil
}

// Pick draws one population index.
func (r *Roulette) Pick(rng *rand.Rand) int {
	target := rng.Float64() * r.total
	for i, c := range r.cumulative {
		if c >= target {
			return r.indices[i]
		}
	}
	// rounding can leave target a hair above the last cumulative weight
	return r.indices[len(r.indices)-1]
}

// PickPair draws two independent indices; both may be the same.
func (r *Roulette) PickPair(rng *rand.Rand) (int, int) {
	return r.Pick(rng), r.Pick(rng)
}

// Len returns the number of indices that can be drawn.
func (r *Roulette) Len() int { return len(r.indices) }

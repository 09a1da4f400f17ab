package selection

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/snow-ghost/jigsaw/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouletteInverseCostRatio(t *testing.T) {
	r, err := NewRoulette([]core.FitnessScore{{Index: 0, Cost: 1}, {Index: 1, Cost: 3}})
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(2024, 7))
	counts := make(map[int]int)
	const draws = 200000
	for i := 0; i < draws; i++ {
		counts[r.Pick(rng)]++
	}

	require.Positive(t, counts[1])
	ratio := float64(counts[0]) / float64(counts[1])
	assert.InDelta(t, 3.0, ratio, 0.1)
	assert.Equal(t, draws, counts[0]+counts[1])
}

func TestRouletteReturnsPopulationIndices(t *testing.T) {
	scores := []core.FitnessScore{{Index: 7, Cost: 2}, {Index: 3, Cost: 5}, {Index: 9, Cost: 1}}
	r, err := NewRoulette(scores)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(1, 1))
	for i := 0; i < 1000; i++ {
		a, b := r.PickPair(rng)
		assert.Contains(t, []int{7, 3, 9}, a)
		assert.Contains(t, []int{7, 3, 9}, b)
	}
}

func TestRouletteSkipsZeroCost(t *testing.T) {
	r, err := NewRoulette([]core.FitnessScore{{Index: 0, Cost: 0}, {Index: 1, Cost: 4}, {Index: 2, Cost: 4}})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	rng := rand.New(rand.NewPCG(9, 9))
	for i := 0; i < 1000; i++ {
		assert.NotEqual(t, 0, r.Pick(rng))
	}
}

func TestRouletteAllZeroCostIsUniform(t *testing.T) {
	r, err := NewRoulette([]core.FitnessScore{{Index: 0, Cost: 0}, {Index: 1, Cost: 0}})
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(4, 4))
	counts := make(map[int]int)
	for i := 0; i < 20000; i++ {
		counts[r.Pick(rng)]++
	}
	assert.InDelta(t, 1.0, float64(counts[0])/float64(counts[1]), 0.1)
}

func TestRouletteRejectsBadInput(t *testing.T) {
	_, err := NewRoulette(nil)
	assert.ErrorIs(t, err, ErrEmptyPopulation)

	for _, cost := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := NewRoulette([]core.FitnessScore{{Index: 0, Cost: cost}})
		assert.Error(t, err, "cost %v", cost)
	}
}

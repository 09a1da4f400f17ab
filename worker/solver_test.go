package worker

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/snow-ghost/jigsaw/core"
	"github.com/snow-ghost/jigsaw/testkit"
	"github.com/snow-ghost/jigsaw/worker/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	c := DefaultConfig()
	c.PopulationSize = 50
	c.Generations = 10
	c.Parallelism = 4
	c.Seed = 1234
	return c
}

func TestSolveTwoByTwo(t *testing.T) {
	p := testkit.GradientPuzzle(core.Dims{Rows: 2, Cols: 2}, 4, 0)
	tel := telemetry.NewNopTelemetry()

	s, err := NewSolver(context.Background(), p.Pieces, p.Dims, testConfig(), WithTelemetry(tel))
	require.NoError(t, err)

	res, err := s.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]core.PieceID{{0, 1}, {2, 3}}, res.Best.Grid())
	assert.Equal(t, 10, res.Generations)
	assert.Len(t, res.History, 10)
	assert.Equal(t, uint64(1234), res.Seed)

	want, err := s.Fitness().Cost(p.Solution)
	require.NoError(t, err)
	assert.Equal(t, want, res.Cost)

	assert.Equal(t, int64(10), tel.Generation.Value())
	assert.Equal(t, "done", tel.Status.Value())
}

func TestSolveTwoByTwoAcrossSeeds(t *testing.T) {
	p := testkit.GradientPuzzle(core.Dims{Rows: 2, Cols: 2}, 4, 0)

	for seed := uint64(1); seed <= 25; seed++ {
		cfg := testConfig()
		cfg.PopulationSize = 20
		cfg.Generations = 5
		cfg.Seed = seed

		s, err := NewSolver(context.Background(), p.Pieces, p.Dims, cfg)
		require.NoError(t, err)
		res, err := s.Solve(context.Background())
		require.NoError(t, err)
		assert.True(t, res.Best.Equal(p.Solution), "seed %d: got %v", seed, res.Best.Grid())
	}
}

func TestSolveSinglePiece(t *testing.T) {
	p := testkit.GradientPuzzle(core.Dims{Rows: 1, Cols: 1}, 3, 0)
	s, err := NewSolver(context.Background(), p.Pieces, p.Dims, testConfig())
	require.NoError(t, err)

	res, err := s.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]core.PieceID{{0}}, res.Best.Grid())
	assert.Zero(t, res.Cost)
	assert.Zero(t, res.Generations)
	assert.Empty(t, res.History)
}

func TestSolveIsDeterministicForSeed(t *testing.T) {
	p := testkit.GradientPuzzle(core.Dims{Rows: 3, Cols: 3}, 4, 5)
	cfg := testConfig()
	cfg.Generations = 4
	cfg.PopulationSize = 30

	run := func() Result {
		s, err := NewSolver(context.Background(), p.Pieces, p.Dims, cfg)
		require.NoError(t, err)
		res, err := s.Solve(context.Background())
		require.NoError(t, err)
		return res
	}

	first, second := run(), run()
	assert.True(t, first.Best.Equal(second.Best))
	assert.Equal(t, first.Cost, second.Cost)
	require.Len(t, second.History, len(first.History))
	for i := range first.History {
		assert.Equal(t, first.History[i].BestCost, second.History[i].BestCost)
		assert.Equal(t, first.History[i].MeanCost, second.History[i].MeanCost)
		assert.Equal(t, first.History[i].Attempts, second.History[i].Attempts)
	}
}

func TestElitesAreCarriedForward(t *testing.T) {
	p := testkit.GradientPuzzle(core.Dims{Rows: 3, Cols: 4}, 3, 9)
	cfg := testConfig()
	cfg.Generations = 3
	cfg.EliteCount = 1
	s, err := NewSolver(context.Background(), p.Pieces, p.Dims, cfg)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(3, 3))
	population := RandomPopulation(20, p.Dims, rng)
	population[7] = p.Solution

	res, err := s.SolveFrom(context.Background(), population)
	require.NoError(t, err)
	assert.True(t, res.Best.Equal(p.Solution))

	for i := 1; i < len(res.History); i++ {
		assert.LessOrEqual(t, res.History[i].BestCost, res.History[i-1].BestCost)
	}
}

func TestZeroCostSurvivesWithoutElites(t *testing.T) {
	// the shared edge matches only in the order 0|1
	pieces := make([]core.Piece, 2)
	for i := range pieces {
		pieces[i] = core.Piece{ID: core.PieceID(i), Raster: core.NewRaster(2, 1)}
	}
	pieces[0].Raster.Set(0, 0, 255, 0, 0)
	pieces[0].Raster.Set(1, 0, 0, 255, 0)
	pieces[1].Raster.Set(0, 0, 0, 255, 0)
	pieces[1].Raster.Set(1, 0, 0, 0, 255)

	perfect := grid(t, [][]core.PieceID{{0, 1}})
	swapped := grid(t, [][]core.PieceID{{1, 0}})

	for seed := uint64(1); seed <= 50; seed++ {
		cfg := testConfig()
		cfg.PopulationSize = 3
		cfg.EliteCount = 0
		cfg.Generations = 1
		cfg.Seed = seed

		s, err := NewSolver(context.Background(), pieces, core.Dims{Rows: 1, Cols: 2}, cfg)
		require.NoError(t, err)
		res, err := s.SolveFrom(context.Background(), []*core.Chromosome{perfect, swapped, swapped.Clone()})
		require.NoError(t, err)

		assert.Zero(t, res.Cost, "seed %d", seed)
		assert.True(t, res.Best.Equal(perfect), "seed %d", seed)
		require.Len(t, res.History, 1)
		assert.Equal(t, 2, res.History[0].Attempts, "only the non-perfect slots are bred")
	}
}

func TestAttemptCapFallsBackToParent(t *testing.T) {
	p := testkit.GradientPuzzle(core.Dims{Rows: 4, Cols: 4}, 3, 2)
	cfg := testConfig()
	cfg.CompatibilityK = 1
	cfg.MaxAssemblyAttempts = 1
	cfg.PopulationSize = 20
	cfg.Generations = 2
	s, err := NewSolver(context.Background(), p.Pieces, p.Dims, cfg)
	require.NoError(t, err)

	res, err := s.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, res.History, 2)
	for _, st := range res.History {
		// one attempt per offspring slot; every failure becomes a cloned parent
		assert.Equal(t, cfg.PopulationSize-cfg.EliteCount, st.Attempts)
		assert.Equal(t, st.Failures, st.Exhausted)
	}
	assert.Equal(t, p.Dims, res.Best.Dims())
}

func TestStopOnZeroCost(t *testing.T) {
	// identical flat pieces make every arrangement cost zero
	pieces := make([]core.Piece, 4)
	for i := range pieces {
		pieces[i] = core.Piece{ID: core.PieceID(i), Raster: core.NewRaster(2, 2)}
	}
	cfg := testConfig()
	cfg.StopOnZeroCost = true

	s, err := NewSolver(context.Background(), pieces, core.Dims{Rows: 2, Cols: 2}, cfg)
	require.NoError(t, err)
	res, err := s.Solve(context.Background())
	require.NoError(t, err)
	assert.True(t, res.StoppedEarly)
	assert.Zero(t, res.Cost)
	assert.Zero(t, res.Generations)
	assert.Len(t, res.History, 1)
}

func TestSolverPreconditions(t *testing.T) {
	p := testkit.GradientPuzzle(core.Dims{Rows: 2, Cols: 2}, 3, 0)

	_, err := NewSolver(context.Background(), nil, p.Dims, nil)
	assert.ErrorIs(t, err, core.ErrEmptyUniverse)

	_, err = NewSolver(context.Background(), p.Pieces, core.Dims{Rows: 3, Cols: 3}, nil)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)

	_, err = NewSolver(context.Background(), p.Pieces, core.Dims{Rows: 0, Cols: 4}, nil)
	assert.ErrorIs(t, err, core.ErrZeroArea)

	bad := DefaultConfig()
	bad.EliteCount = -1
	_, err = NewSolver(context.Background(), p.Pieces, p.Dims, bad)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	s, err := NewSolver(context.Background(), p.Pieces, p.Dims, testConfig())
	require.NoError(t, err)

	_, err = s.SolveFrom(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSolution)

	wrong, err := core.NewChromosome(core.Dims{Rows: 1, Cols: 4}, []core.PieceID{0, 1, 2, 3})
	require.NoError(t, err)
	_, err = s.SolveFrom(context.Background(), []*core.Chromosome{wrong})
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestSolveHonoursCancellation(t *testing.T) {
	p := testkit.GradientPuzzle(core.Dims{Rows: 3, Cols: 3}, 3, 4)
	s, err := NewSolver(context.Background(), p.Pieces, p.Dims, testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Solve(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func grid(t *testing.T, rows [][]core.PieceID) *core.Chromosome {
	t.Helper()
	c, err := core.ChromosomeFromGrid(rows)
	require.NoError(t, err)
	return c
}

func TestRandomPopulation(t *testing.T) {
	dims := core.Dims{Rows: 3, Cols: 2}
	population := RandomPopulation(25, dims, rand.New(rand.NewPCG(8, 8)))
	require.Len(t, population, 25)

	distinct := make(map[uint64]bool)
	for _, c := range population {
		assert.Equal(t, dims, c.Dims())
		distinct[c.Fingerprint()] = true
	}
	assert.Greater(t, len(distinct), 1)
}

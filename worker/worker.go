package worker

import (
	"context"
	"errors"

	"github.com/snow-ghost/jigsaw/core"
)

// ErrNoSolution is returned when a run ends without any chromosome to report.
var ErrNoSolution = errors.New("no solution: empty population")

// Worker is the contract the CLI and tests drive a solver through
type Worker interface {
	// Solve evolves a random initial population
	Solve(ctx context.Context) (Result, error)

	// SolveFrom evolves the given initial population
	SolveFrom(ctx context.Context, population []*core.Chromosome) (Result, error)
}

// Result is the outcome of a run
type Result struct {
	Best         *core.Chromosome
	Cost         float64
	Generations  int // completed breeding generations
	StoppedEarly bool
	Seed         uint64
	History      []core.GenerationStats
}

var _ Worker = (*Solver)(nil)

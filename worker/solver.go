package worker

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/snow-ghost/jigsaw/adjacency"
	"github.com/snow-ghost/jigsaw/core"
	"github.com/snow-ghost/jigsaw/pkg/cache"
	"github.com/snow-ghost/jigsaw/pkg/limiter"
	"github.com/snow-ghost/jigsaw/worker/crossover"
	"github.com/snow-ghost/jigsaw/worker/selection"
	"github.com/snow-ghost/jigsaw/worker/telemetry"
)

// Solver evolves arrangements of a fixed piece set towards the lowest total edge
// dissimilarity. The index and matrices are built once; a Solver runs one Solve at a time.
type Solver struct {
	cfg         Config
	dims        core.Dims
	pieces      []core.Piece
	parallelism int

	index     *adjacency.Index
	fitness   *core.FitnessEvaluator
	telemetry *telemetry.Telemetry

	seed uint64
	rng  *rand.Rand
}

// Option configures a Solver.
type Option func(*Solver)

// WithTelemetry reports progress through t instead of a no-op sink.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(s *Solver) { s.telemetry = t }
}

// NewSolver validates the inputs and builds the compatibility index and the fitness
// matrices. A nil cfg means DefaultConfig.
func NewSolver(ctx context.Context, pieces []core.Piece, dims core.Dims, cfg *Config, opts ...Option) (*Solver, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := core.ValidateUniverse(pieces, dims); err != nil {
		return nil, err
	}

	s := &Solver{
		cfg:         *cfg,
		dims:        dims,
		pieces:      pieces,
		parallelism: cfg.Parallelism,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.telemetry == nil {
		s.telemetry = telemetry.NewNopTelemetry()
	}
	if s.parallelism < 1 {
		s.parallelism = runtime.GOMAXPROCS(0)
	}

	s.seed = cfg.Seed
	if s.seed == 0 {
		s.seed = rand.Uint64()
	}
	s.rng = rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))

	err := s.phase(ctx, "index", func(ctx context.Context) error {
		idx, err := adjacency.Build(ctx, pieces, adjacency.Options{K: cfg.CompatibilityK, Parallelism: s.parallelism})
		s.index = idx
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build compatibility index: %w", err)
	}

	err = s.phase(ctx, "fitness", func(ctx context.Context) error {
		fopts := []core.FitnessOption{core.WithParallelism(s.parallelism)}
		if cfg.FitnessCacheSize > 0 {
			c, err := cache.NewCostCache(&cache.CacheConfig{MaxSize: cfg.FitnessCacheSize})
			if err != nil {
				return err
			}
			fopts = append(fopts, core.WithCostCache(c))
		}
		f, err := core.NewFitnessEvaluator(ctx, pieces, fopts...)
		s.fitness = f
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build fitness matrices: %w", err)
	}

	return s, nil
}

func (s *Solver) phase(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	pctx, span := s.telemetry.StartPhase(ctx, name)
	err := fn(pctx)
	s.telemetry.PhaseDone(pctx, span, name, time.Since(start), err)
	return err
}

// Index returns the compatibility index.
func (s *Solver) Index() *adjacency.Index { return s.index }

// Fitness returns the fitness evaluator.
func (s *Solver) Fitness() *core.FitnessEvaluator { return s.fitness }

// Seed returns the seed driving this solver's random choices.
func (s *Solver) Seed() uint64 { return s.seed }

// Solve evolves a population of uniformly random arrangements.
func (s *Solver) Solve(ctx context.Context) (Result, error) {
	return s.SolveFrom(ctx, RandomPopulation(s.cfg.PopulationSize, s.dims, s.rng))
}

// SolveFrom evolves population for the configured number of generations and returns
// the cheapest arrangement of the final population.
func (s *Solver) SolveFrom(ctx context.Context, population []*core.Chromosome) (Result, error) {
	if len(population) == 0 {
		return Result{}, ErrNoSolution
	}
	for i, c := range population {
		if c == nil || c.Dims() != s.dims {
			return Result{}, fmt.Errorf("%w: chromosome %d does not match %s", core.ErrDimensionMismatch, i, s.dims)
		}
	}

	if s.dims.Area() == 1 {
		return Result{Best: population[0].Clone(), Cost: 0, Seed: s.seed}, nil
	}

	start := time.Now()
	runID := uuid.NewString()
	ctx, span := s.telemetry.RunStarted(ctx, runID, s.dims, len(population), s.cfg.Generations)

	res, err := s.evolve(ctx, population)
	res.Seed = s.seed
	s.telemetry.RunFinished(ctx, span, res.Generations, res.Cost, time.Since(start), res.StoppedEarly, err)
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func (s *Solver) evolve(ctx context.Context, population []*core.Chromosome) (Result, error) {
	var res Result

	for gen := 1; gen <= s.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		gctx, span := s.telemetry.StartGeneration(ctx, gen)
		next, stats, done, err := s.generation(gctx, gen, population)
		if err != nil {
			s.telemetry.GenerationFailed(span, err)
			return res, err
		}
		s.telemetry.GenerationDone(gctx, span, stats)
		res.History = append(res.History, stats)

		if done {
			res.StoppedEarly = true
			break
		}
		population = next
		res.Generations = gen
	}

	scores, err := s.fitness.EvaluateGeneration(ctx, population)
	if err != nil {
		return res, err
	}
	ranked := rank(scores)
	if len(ranked) == 0 {
		return res, ErrNoSolution
	}
	res.Best = population[ranked[0].Index]
	res.Cost = ranked[0].Cost
	return res, nil
}

// generation scores population and breeds its successor. done reports that a zero-cost
// arrangement was found and StopOnZeroCost is set; next is nil then.
func (s *Solver) generation(ctx context.Context, gen int, population []*core.Chromosome) (next []*core.Chromosome, stats core.GenerationStats, done bool, err error) {
	start := time.Now()
	stats.Generation = gen

	scores, err := s.fitness.EvaluateGeneration(ctx, population)
	if err != nil {
		return nil, stats, false, err
	}
	ranked := rank(scores)
	stats.BestCost = ranked[0].Cost
	stats.WorstCost = ranked[len(ranked)-1].Cost
	for _, sc := range scores {
		stats.MeanCost += sc.Cost
	}
	stats.MeanCost /= float64(len(scores))

	if s.cfg.StopOnZeroCost && stats.BestCost == 0 {
		s.finishStats(&stats, start)
		return nil, stats, true, nil
	}

	size := len(population)
	next = make([]*core.Chromosome, size)
	elites := min(s.cfg.EliteCount, size)
	// zero-cost arrangements are elite regardless of EliteCount
	for elites < size && ranked[elites].Cost == 0 {
		elites++
	}
	for i := 0; i < elites; i++ {
		next[i] = population[ranked[i].Index]
	}

	wheel, err := selection.NewRoulette(scores)
	if err != nil {
		return nil, stats, false, err
	}

	// seeds are drawn up front so the outcome does not depend on scheduling
	seeds := make([][2]uint64, size)
	for slot := elites; slot < size; slot++ {
		seeds[slot] = [2]uint64{s.rng.Uint64(), s.rng.Uint64()}
	}

	var attempts, failures, exhausted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for slot := elites; slot < size; slot++ {
		g.Go(func() error {
			child, n, fellBack, err := s.breed(gctx, gen, slot, population, scores, wheel, seeds[slot])
			attempts.Add(int64(n))
			if err != nil {
				return err
			}
			if fellBack {
				exhausted.Add(1)
				failures.Add(int64(n))
			} else {
				failures.Add(int64(n - 1))
			}
			next[slot] = child
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, false, err
	}

	stats.Attempts = int(attempts.Load())
	stats.Failures = int(failures.Load())
	stats.Exhausted = int(exhausted.Load())
	s.finishStats(&stats, start)
	return next, stats, false, nil
}

// breed fills one offspring slot. Each attempt draws fresh parents and a fresh root.
// When an attempt cap is configured and reached, the fitter of the last selected
// parents is cloned into the slot.
func (s *Solver) breed(ctx context.Context, gen, slot int, population []*core.Chromosome, scores []core.FitnessScore, wheel *selection.Roulette, seed [2]uint64) (*core.Chromosome, int, bool, error) {
	rng := rand.New(rand.NewPCG(seed[0], seed[1]))
	rm := limiter.NewRetryManager(&limiter.RetryConfig{
		MaxAttempts:    s.cfg.MaxAssemblyAttempts,
		ReportEvery:    1000,
		ReportInterval: s.cfg.ReportInterval,
	}, func(attempt int) {
		s.telemetry.AttemptFailed(ctx, gen, slot, attempt)
	})

	var first, second int
	child, n, err := limiter.Retry(ctx, rm, func(int) (*core.Chromosome, bool) {
		first, second = wheel.PickPair(rng)
		return crossover.New(population[first], population[second], s.index, rng).Assemble()
	})
	switch {
	case err == nil:
		return child, n, false, nil
	case errors.Is(err, limiter.ErrAttemptsExhausted):
		fitter := first
		if scores[second].Cost < scores[first].Cost {
			fitter = second
		}
		s.telemetry.SlotExhausted(ctx, gen, slot, n)
		return population[fitter].Clone(), n, true, nil
	default:
		return nil, n, false, err
	}
}

func (s *Solver) finishStats(stats *core.GenerationStats, start time.Time) {
	if cs, ok := s.fitness.CacheStats(); ok {
		stats.CacheHits = cs.Hits
		stats.CacheMisses = cs.Misses
	}
	stats.Duration = time.Since(start)
}

// rank orders scores by ascending cost, ties broken by population index.
func rank(scores []core.FitnessScore) []core.FitnessScore {
	ranked := slices.Clone(scores)
	slices.SortFunc(ranked, func(a, b core.FitnessScore) int {
		if c := cmp.Compare(a.Cost, b.Cost); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return ranked
}

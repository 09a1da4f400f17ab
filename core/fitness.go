package core

import (
	"context"
	"math"
	"runtime"

	"github.com/snow-ghost/jigsaw/pkg/cache"
	"golang.org/x/sync/errgroup"
)

// FitnessEvaluator scores arrangements against full pairwise dissimilarity matrices
// for the Right and Down directions. It is read-only after construction.
type FitnessEvaluator struct {
	n           int
	right       []float64 // right[a*n+b]: b placed right of a
	down        []float64 // down[a*n+b]: b placed below a
	parallelism int
	cache       *cache.CostCache
}

// FitnessOption configures a FitnessEvaluator.
type FitnessOption func(*FitnessEvaluator)

// WithParallelism bounds the number of concurrent workers. Values below 1 mean GOMAXPROCS.
func WithParallelism(n int) FitnessOption {
	return func(f *FitnessEvaluator) { f.parallelism = n }
}

// WithCostCache memoizes costs by chromosome fingerprint.
func WithCostCache(c *cache.CostCache) FitnessOption {
	return func(f *FitnessEvaluator) { f.cache = c }
}

// NewFitnessEvaluator computes both matrices for every ordered pair of distinct pieces.
// Self pairs are left missing.
func NewFitnessEvaluator(ctx context.Context, pieces []Piece, opts ...FitnessOption) (*FitnessEvaluator, error) {
	if err := ValidatePieces(pieces); err != nil {
		return nil, err
	}

	n := len(pieces)
	f := &FitnessEvaluator{
		n:     n,
		right: make([]float64, n*n),
		down:  make([]float64, n*n),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.parallelism < 1 {
		f.parallelism = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.parallelism)
	for a := range pieces {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row := a * n
			for b := range pieces {
				if a == b {
					f.right[row+b] = math.NaN()
					f.down[row+b] = math.NaN()
					continue
				}
				f.right[row+b] = Dissimilarity(pieces[a].Raster, pieces[b].Raster, Right)
				f.down[row+b] = Dissimilarity(pieces[a].Raster, pieces[b].Raster, Down)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return f, nil
}

// Len returns the size of the piece universe.
func (f *FitnessEvaluator) Len() int { return f.n }

// Lookup returns the stored dissimilarity of b next to a in direction d. Up and Left
// are answered from the Down and Right matrices with the pair swapped.
func (f *FitnessEvaluator) Lookup(a, b PieceID, d Direction) (float64, bool) {
	switch d {
	case Right:
		return f.lookup(f.right, a, b)
	case Down:
		return f.lookup(f.down, a, b)
	case Left:
		return f.lookup(f.right, b, a)
	case Up:
		return f.lookup(f.down, b, a)
	}
	return 0, false
}

func (f *FitnessEvaluator) lookup(m []float64, a, b PieceID) (float64, bool) {
	if a < 0 || b < 0 || int(a) >= f.n || int(b) >= f.n {
		return 0, false
	}
	v := m[int(a)*f.n+int(b)]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Cost sums the Right dissimilarity of every horizontal neighbour pair and the Down
// dissimilarity of every vertical neighbour pair. A missing entry yields an *InvariantError.
func (f *FitnessEvaluator) Cost(c *Chromosome) (float64, error) {
	var key cache.CostKey
	if f.cache != nil {
		key = cache.CostKey(c.Fingerprint())
		if cost, ok := f.cache.Get(key); ok {
			return cost, nil
		}
	}

	rows, cols := c.Rows(), c.Cols()
	var horizontal, vertical float64
	for r := 0; r < rows; r++ {
		for col := 0; col+1 < cols; col++ {
			a, b := c.At(r, col), c.At(r, col+1)
			v, ok := f.lookup(f.right, a, b)
			if !ok {
				return 0, &InvariantError{Op: "fitness", First: a, Second: b, Direction: Right}
			}
			horizontal += v
		}
	}
	for r := 0; r+1 < rows; r++ {
		for col := 0; col < cols; col++ {
			a, b := c.At(r, col), c.At(r+1, col)
			v, ok := f.lookup(f.down, a, b)
			if !ok {
				return 0, &InvariantError{Op: "fitness", First: a, Second: b, Direction: Down}
			}
			vertical += v
		}
	}

	cost := horizontal + vertical
	if f.cache != nil {
		f.cache.Add(key, cost)
	}
	return cost, nil
}

// EvaluateGeneration scores every chromosome concurrently. Results are in population order.
func (f *FitnessEvaluator) EvaluateGeneration(ctx context.Context, population []*Chromosome) ([]FitnessScore, error) {
	scores := make([]FitnessScore, len(population))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.parallelism)
	for i, c := range population {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cost, err := f.Cost(c)
			if err != nil {
				return err
			}
			scores[i] = FitnessScore{Index: i, Cost: cost}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return scores, nil
}

// CacheStats reports cost cache statistics, or false when no cache is configured.
func (f *FitnessEvaluator) CacheStats() (cache.CacheStats, bool) {
	if f.cache == nil {
		return cache.CacheStats{}, false
	}
	return f.cache.Stats(), true
}

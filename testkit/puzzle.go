package testkit

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/snow-ghost/jigsaw/core"
)

// Puzzle is a synthetic puzzle with a known solved arrangement.
type Puzzle struct {
	Dims     core.Dims
	Pieces   []core.Piece
	Solution *core.Chromosome
}

// GradientPuzzle cuts a two-axis colour gradient into dims pieces of size x size pixels.
// Red grows with x and green with y, so every piece's true neighbour is its unique best
// match in each direction and the solved arrangement is the unique minimum-cost one.
// A non-zero seed permutes piece ids; seed 0 keeps ids in solved row-major order.
func GradientPuzzle(dims core.Dims, size int, seed uint64) *Puzzle {
	width, height := dims.Cols*size, dims.Rows*size
	sx, sy := channelStep(width), channelStep(height)

	n := dims.Area()
	ids := make([]core.PieceID, n)
	for i := range ids {
		ids[i] = core.PieceID(i)
	}
	if seed != 0 {
		rng := rand.New(rand.NewPCG(seed, seed))
		rng.Shuffle(n, func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	}

	pieces := make([]core.Piece, n)
	for cell, id := range ids {
		row, col := cell/dims.Cols, cell%dims.Cols
		raster := core.NewRaster(size, size)
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				gx, gy := col*size+x, row*size+y
				raster.Set(x, y, uint8(math.Round(float64(gx)*sx)), uint8(math.Round(float64(gy)*sy)), 0)
			}
		}
		pieces[id] = core.Piece{ID: id, Name: pieceName(row, col), Raster: raster}
	}

	solution, err := core.NewChromosome(dims, ids)
	if err != nil {
		panic(err)
	}
	return &Puzzle{Dims: dims, Pieces: pieces, Solution: solution}
}

// Shuffled returns a uniformly random arrangement of dims.
func Shuffled(dims core.Dims, rng *rand.Rand) *core.Chromosome {
	cells := make([]core.PieceID, dims.Area())
	for i := range cells {
		cells[i] = core.PieceID(i)
	}
	rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })
	c, err := core.NewChromosome(dims, cells)
	if err != nil {
		panic(err)
	}
	return c
}

func channelStep(extent int) float64 {
	if extent <= 1 {
		return 0
	}
	return 240 / float64(extent-1)
}

func pieceName(row, col int) string {
	return fmt.Sprintf("r%dc%d", row, col)
}

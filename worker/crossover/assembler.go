// Package crossover builds offspring arrangements by growing a kernel of placed pieces
// outward from a random root, guided by both parents and the compatibility index.
package crossover

import (
	"math/rand/v2"

	"github.com/snow-ghost/jigsaw/core"
)

// Stats describes the last Assemble call.
type Stats struct {
	Placed      int
	Stale       int    // popped candidates whose slot was already filled
	Regenerated int    // popped candidates whose piece was already used elsewhere
	ByClass     [3]int // placements per class: agreed, buddy, ranked
}

// Assembler grows one child from two parents. It holds per-attempt mutable state and
// must not be shared between goroutines; run independent instances instead.
type Assembler struct {
	dims    core.Dims
	parent1 *core.Chromosome
	parent2 *core.Chromosome
	compat  core.Compatibility
	rng     *rand.Rand

	placed   []bool
	at       []coord
	count    int
	occupied map[coord]core.PieceID
	minRow   int
	maxRow   int
	minCol   int
	maxCol   int
	frontier frontier
	stats    Stats
}

// New returns an assembler for parent1 x parent2. Both parents must cover the same
// piece universe as compat.
func New(parent1, parent2 *core.Chromosome, compat core.Compatibility, rng *rand.Rand) *Assembler {
	n := parent1.Dims().Area()
	return &Assembler{
		dims:     parent1.Dims(),
		parent1:  parent1,
		parent2:  parent2,
		compat:   compat,
		rng:      rng,
		placed:   make([]bool, n),
		at:       make([]coord, n),
		occupied: make(map[coord]core.PieceID, n),
	}
}

// Assemble builds a child, or reports false when some region of the target footprint
// could not be filled. Every call starts from scratch with a new random root.
func (a *Assembler) Assemble() (*core.Chromosome, bool) {
	if a.parent2.Dims() != a.dims {
		return nil, false
	}
	a.reset()

	root := a.parent1.At(a.rng.IntN(a.dims.Rows), a.rng.IntN(a.dims.Cols))
	a.place(root, coord{})

	for a.frontier.Len() > 0 {
		c := a.frontier.pop()
		if _, taken := a.occupied[c.pos]; taken {
			a.stats.Stale++
			continue
		}
		if a.placed[c.piece] {
			a.stats.Regenerated++
			a.propose(c.anchor, c.dir, c.pos)
			continue
		}
		a.stats.ByClass[c.class]++
		a.place(c.piece, c.pos)
	}

	if a.count != a.dims.Area() {
		return nil, false
	}
	return a.render()
}

// Stats reports counters for the last Assemble call.
func (a *Assembler) Stats() Stats { return a.stats }

func (a *Assembler) reset() {
	clear(a.placed)
	clear(a.occupied)
	a.count = 0
	a.minRow, a.maxRow, a.minCol, a.maxCol = 0, 0, 0, 0
	a.frontier.reset()
	a.stats = Stats{}
}

// place commits piece p at pos and opens a slot on every free side that still fits
// the target footprint.
func (a *Assembler) place(p core.PieceID, pos coord) {
	a.placed[p] = true
	a.at[p] = pos
	a.count++
	a.occupied[pos] = p
	a.stats.Placed++

	if a.count == a.dims.Area() {
		return
	}

	dirs := core.Directions
	a.rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
	for _, d := range dirs {
		dr, dc := d.Offset()
		slot := coord{row: pos.row + dr, col: pos.col + dc}
		if _, taken := a.occupied[slot]; taken || !a.fits(slot) {
			continue
		}
		a.expand(slot)
		a.propose(p, d, slot)
	}
}

// fits reports whether the bounding box grown to include slot stays within the target
// rows and columns. The root sits at the origin, so min <= 0 <= max always holds.
func (a *Assembler) fits(slot coord) bool {
	rows := abs(min(a.minRow, slot.row)) + abs(max(a.maxRow, slot.row))
	cols := abs(min(a.minCol, slot.col)) + abs(max(a.maxCol, slot.col))
	return rows < a.dims.Rows && cols < a.dims.Cols
}

func (a *Assembler) expand(slot coord) {
	a.minRow = min(a.minRow, slot.row)
	a.maxRow = max(a.maxRow, slot.row)
	a.minCol = min(a.minCol, slot.col)
	a.maxCol = max(a.maxCol, slot.col)
}

// propose pushes the best available candidate for the slot next to anchor in
// direction d: a piece both parents agree on, else a best buddy that a parent already
// places there, else the first unused entry of the compatibility list. Nothing is
// pushed when every option is used up.
func (a *Assembler) propose(anchor core.PieceID, d core.Direction, slot coord) {
	if p, ok := a.agreed(anchor, d); ok && !a.placed[p] {
		a.frontier.push(candidate{piece: p, pos: slot, anchor: anchor, dir: d, class: mutuallyAgreed})
		return
	}

	if buddy, ok := a.compat.BestBuddy(anchor, d); ok && !a.placed[buddy] && a.parentsPlace(anchor, d, buddy) {
		a.frontier.push(candidate{piece: buddy, pos: slot, anchor: anchor, dir: d, class: bestBuddy})
		return
	}

	for _, m := range a.compat.RankedNeighbors(anchor, d) {
		if !a.placed[m.Piece] {
			a.frontier.push(candidate{piece: m.Piece, pos: slot, anchor: anchor, dir: d, class: ranked, score: m.Score})
			return
		}
	}
}

func (a *Assembler) agreed(anchor core.PieceID, d core.Direction) (core.PieceID, bool) {
	first, ok := a.parent1.Neighbor(anchor, d)
	if !ok {
		return core.NoPiece, false
	}
	second, ok := a.parent2.Neighbor(anchor, d)
	if !ok || first != second {
		return core.NoPiece, false
	}
	return first, true
}

func (a *Assembler) parentsPlace(anchor core.PieceID, d core.Direction, buddy core.PieceID) bool {
	if p, ok := a.parent1.Neighbor(anchor, d); ok && p == buddy {
		return true
	}
	p, ok := a.parent2.Neighbor(anchor, d)
	return ok && p == buddy
}

func (a *Assembler) render() (*core.Chromosome, bool) {
	rows, cols := a.maxRow-a.minRow+1, a.maxCol-a.minCol+1
	if rows != a.dims.Rows || cols != a.dims.Cols {
		return nil, false
	}

	cells := make([]core.PieceID, a.dims.Area())
	for p, pos := range a.at {
		cells[(pos.row-a.minRow)*cols+(pos.col-a.minCol)] = core.PieceID(p)
	}
	child, err := core.NewChromosome(a.dims, cells)
	if err != nil {
		return nil, false
	}
	return child, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package crossover

import (
	"container/heap"

	"github.com/snow-ghost/jigsaw/core"
)

// class ranks how a candidate was proposed. Lower classes always pop first,
// whatever their score.
type class uint8

const (
	mutuallyAgreed class = iota
	bestBuddy
	ranked
)

func (c class) String() string {
	switch c {
	case mutuallyAgreed:
		return "agreed"
	case bestBuddy:
		return "buddy"
	default:
		return "ranked"
	}
}

type coord struct {
	row, col int
}

// candidate proposes piece for the open slot at pos, next to anchor in direction dir.
type candidate struct {
	piece  core.PieceID
	pos    coord
	anchor core.PieceID
	dir    core.Direction
	class  class
	score  float64
	seq    uint64
}

func (c candidate) less(o candidate) bool {
	if c.class != o.class {
		return c.class < o.class
	}
	if c.score != o.score {
		return c.score < o.score
	}
	return c.seq < o.seq
}

// frontier is a min-heap of candidates.
type frontier struct {
	items []candidate
	seq   uint64
}

func (f *frontier) Len() int           { return len(f.items) }
func (f *frontier) Less(i, j int) bool { return f.items[i].less(f.items[j]) }
func (f *frontier) Swap(i, j int)      { f.items[i], f.items[j] = f.items[j], f.items[i] }
func (f *frontier) Push(x any)         { f.items = append(f.items, x.(candidate)) }

func (f *frontier) Pop() any {
	old := f.items
	n := len(old)
	item := old[n-1]
	f.items = old[:n-1]
	return item
}

func (f *frontier) push(c candidate) {
	c.seq = f.seq
	f.seq++
	heap.Push(f, c)
}

func (f *frontier) pop() candidate {
	return heap.Pop(f).(candidate)
}

func (f *frontier) reset() {
	f.items = f.items[:0]
	f.seq = 0
}

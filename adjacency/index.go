// Package adjacency learns which pieces fit together from their edge dissimilarities.
package adjacency

import (
	"cmp"
	"context"
	"fmt"
	"runtime"
	"slices"

	"github.com/snow-ghost/jigsaw/core"
	"golang.org/x/sync/errgroup"
)

// DefaultK is the default compatibility list length.
const DefaultK = 100

// Options configures Build.
type Options struct {
	// K truncates every compatibility list to the K best matches.
	K int
	// Parallelism bounds concurrent workers; values below 1 mean GOMAXPROCS.
	Parallelism int
}

// BuddyPair records that A and B are each other's top match, B sitting in Direction from A.
type BuddyPair struct {
	A         core.PieceID
	B         core.PieceID
	Direction core.Direction
}

// Index holds ranked compatibility lists and the best-buddy relation.
// It is immutable after Build and safe for concurrent readers.
type Index struct {
	k       int
	lists   [][4][]core.Match
	buddies [][4]core.PieceID
}

// Build scores every piece against every other piece in all four directions.
func Build(ctx context.Context, pieces []core.Piece, opts Options) (*Index, error) {
	if err := core.ValidatePieces(pieces); err != nil {
		return nil, err
	}
	if opts.K < 1 {
		return nil, fmt.Errorf("adjacency: compatibility list length must be positive, got %d", opts.K)
	}
	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	n := len(pieces)
	idx := &Index{
		k:       opts.K,
		lists:   make([][4][]core.Match, n),
		buddies: make([][4]core.PieceID, n),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for p := range pieces {
		for _, d := range core.Directions {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				idx.lists[p][d] = rank(pieces, p, d, opts.K)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// lists are frozen from here on
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for p := range pieces {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for _, d := range core.Directions {
				idx.buddies[p][d] = idx.mutualTop(core.PieceID(p), d)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return idx, nil
}

func rank(pieces []core.Piece, p int, d core.Direction, k int) []core.Match {
	matches := make([]core.Match, 0, len(pieces)-1)
	for q := range pieces {
		if q == p {
			continue
		}
		matches = append(matches, core.Match{
			Score: core.Dissimilarity(pieces[p].Raster, pieces[q].Raster, d),
			Piece: core.PieceID(q),
		})
	}
	slices.SortFunc(matches, func(a, b core.Match) int {
		if c := cmp.Compare(a.Score, b.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Piece, b.Piece)
	})
	if len(matches) > k {
		matches = slices.Clip(matches[:k])
	}
	return matches
}

func (idx *Index) mutualTop(p core.PieceID, d core.Direction) core.PieceID {
	list := idx.lists[p][d]
	if len(list) == 0 {
		return core.NoPiece
	}
	q := list[0].Piece
	back := idx.lists[q][d.Inverse()]
	if len(back) == 0 || back[0].Piece != p {
		return core.NoPiece
	}
	return q
}

// K returns the configured list length.
func (idx *Index) K() int { return idx.k }

// Len returns the number of pieces indexed.
func (idx *Index) Len() int { return len(idx.lists) }

// BestBuddy returns p's best buddy in direction d, if any. It panics on an unknown piece.
func (idx *Index) BestBuddy(p core.PieceID, d core.Direction) (core.PieceID, bool) {
	idx.check(p, d)
	q := idx.buddies[p][d]
	return q, q != core.NoPiece
}

// RankedNeighbors returns p's compatibility list in direction d, best first.
// The slice is shared and must not be modified. It panics on an unknown piece.
func (idx *Index) RankedNeighbors(p core.PieceID, d core.Direction) []core.Match {
	idx.check(p, d)
	return idx.lists[p][d]
}

// BestBuddies lists every best-buddy pair; each mutual pair appears once per side.
func (idx *Index) BestBuddies() []BuddyPair {
	var pairs []BuddyPair
	for p := range idx.buddies {
		for _, d := range core.Directions {
			if q := idx.buddies[p][d]; q != core.NoPiece {
				pairs = append(pairs, BuddyPair{A: core.PieceID(p), B: q, Direction: d})
			}
		}
	}
	return pairs
}

func (idx *Index) check(p core.PieceID, d core.Direction) {
	if p < 0 || int(p) >= len(idx.lists) {
		panic(fmt.Sprintf("adjacency: unknown piece %d", p))
	}
	if !d.Valid() {
		panic(fmt.Sprintf("adjacency: invalid direction %d", d))
	}
}

var _ core.Compatibility = (*Index)(nil)

package core

import (
	"context"
	"time"
)

// Compatibility answers adjacency questions learned from the piece set.
type Compatibility interface {
	// BestBuddy returns the piece that mutually prefers p in direction d.
	BestBuddy(p PieceID, d Direction) (PieceID, bool)
	// RankedNeighbors returns p's best matches in direction d, most compatible first.
	RankedNeighbors(p PieceID, d Direction) []Match
}

// Evaluator scores arrangements.
type Evaluator interface {
	Cost(c *Chromosome) (float64, error)
	EvaluateGeneration(ctx context.Context, population []*Chromosome) ([]FitnessScore, error)
}

// PieceSource supplies uniform pieces, e.g. decoded from image files.
type PieceSource interface {
	Pieces() ([]Piece, error)
}

// GenerationStats summarizes one generation of the evolution loop.
type GenerationStats struct {
	Generation  int
	BestCost    float64
	MeanCost    float64
	WorstCost   float64
	Attempts    int // assembly attempts, successful or not
	Failures    int // attempts that could not complete a child
	Exhausted   int // slots filled by cloning a parent after the attempt cap
	CacheHits   int64
	CacheMisses int64
	Duration    time.Duration
}

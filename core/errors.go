package core

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyUniverse     = errors.New("piece universe is empty")
	ErrZeroArea          = errors.New("grid has zero area")
	ErrDimensionMismatch = errors.New("grid area does not match piece count")
	ErrNonUniformPieces  = errors.New("pieces differ in size")
	ErrInvalidPieceID    = errors.New("piece ids must be dense and ordered")
	ErrInvalidChromosome = errors.New("chromosome is not a bijection over the piece universe")
)

// InvariantError reports a broken construction invariant, such as a dissimilarity
// entry missing for a pair that a chromosome places side by side. It is not recoverable.
type InvariantError struct {
	Op        string
	First     PieceID
	Second    PieceID
	Direction Direction
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: no %s dissimilarity for pieces %d and %d", e.Op, e.Direction, e.First, e.Second)
}

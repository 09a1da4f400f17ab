package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromosome(t *testing.T) {
	c, err := NewChromosome(Dims{Rows: 2, Cols: 3}, []PieceID{5, 4, 3, 2, 1, 0})
	require.NoError(t, err)

	assert.Equal(t, 2, c.Rows())
	assert.Equal(t, 3, c.Cols())
	assert.Equal(t, PieceID(3), c.At(0, 2))
	assert.Equal(t, [][]PieceID{{5, 4, 3}, {2, 1, 0}}, c.Grid())

	row, col, ok := c.Position(1)
	require.True(t, ok)
	assert.Equal(t, 1, row)
	assert.Equal(t, 1, col)
}

func TestNewChromosomeRejectsInvalidCells(t *testing.T) {
	tests := []struct {
		name  string
		dims  Dims
		cells []PieceID
		want  error
	}{
		{"zero area", Dims{Rows: 0, Cols: 2}, nil, ErrZeroArea},
		{"short", Dims{Rows: 2, Cols: 2}, []PieceID{0, 1, 2}, ErrInvalidChromosome},
		{"duplicate", Dims{Rows: 2, Cols: 2}, []PieceID{0, 1, 1, 3}, ErrInvalidChromosome},
		{"out of range", Dims{Rows: 2, Cols: 2}, []PieceID{0, 1, 2, 4}, ErrInvalidChromosome},
		{"negative", Dims{Rows: 1, Cols: 2}, []PieceID{0, NoPiece}, ErrInvalidChromosome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChromosome(tt.dims, tt.cells)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestChromosomeFromGridRagged(t *testing.T) {
	_, err := ChromosomeFromGrid([][]PieceID{{0, 1}, {2}})
	assert.ErrorIs(t, err, ErrInvalidChromosome)

	_, err = ChromosomeFromGrid(nil)
	assert.ErrorIs(t, err, ErrZeroArea)
}

func TestChromosomeNeighbor(t *testing.T) {
	c, err := ChromosomeFromGrid([][]PieceID{{0, 1}, {2, 3}})
	require.NoError(t, err)

	tests := []struct {
		piece PieceID
		dir   Direction
		want  PieceID
		ok    bool
	}{
		{0, Right, 1, true},
		{0, Down, 2, true},
		{0, Up, NoPiece, false},
		{0, Left, NoPiece, false},
		{3, Up, 1, true},
		{3, Left, 2, true},
		{3, Right, NoPiece, false},
		{7, Right, NoPiece, false},
	}

	for _, tt := range tests {
		got, ok := c.Neighbor(tt.piece, tt.dir)
		assert.Equal(t, tt.ok, ok, "piece %d %s", tt.piece, tt.dir)
		assert.Equal(t, tt.want, got, "piece %d %s", tt.piece, tt.dir)
	}
}

func TestChromosomeCloneAndFingerprint(t *testing.T) {
	c, err := ChromosomeFromGrid([][]PieceID{{0, 1}, {2, 3}})
	require.NoError(t, err)

	clone := c.Clone()
	assert.True(t, c.Equal(clone))
	assert.Equal(t, c.Fingerprint(), clone.Fingerprint())

	other, err := ChromosomeFromGrid([][]PieceID{{1, 0}, {2, 3}})
	require.NoError(t, err)
	assert.False(t, c.Equal(other))
	assert.NotEqual(t, c.Fingerprint(), other.Fingerprint())

	// same cells, different shape
	wide, err := NewChromosome(Dims{Rows: 1, Cols: 4}, []PieceID{0, 1, 2, 3})
	require.NoError(t, err)
	assert.False(t, c.Equal(wide))
	assert.NotEqual(t, c.Fingerprint(), wide.Fingerprint())
}

func TestDirectionInverse(t *testing.T) {
	for _, d := range Directions {
		assert.True(t, d.Valid())
		assert.NotEqual(t, d, d.Inverse())
		assert.Equal(t, d, d.Inverse().Inverse())

		dr, dc := d.Offset()
		ir, ic := d.Inverse().Offset()
		assert.Equal(t, 0, dr+ir)
		assert.Equal(t, 0, dc+ic)
	}
	assert.False(t, Direction(9).Valid())
	assert.Panics(t, func() { Direction(9).Inverse() })
}

func TestValidateUniverse(t *testing.T) {
	piece := func(id PieceID, w, h int) Piece {
		return Piece{ID: id, Raster: NewRaster(w, h)}
	}
	uniform := []Piece{piece(0, 2, 2), piece(1, 2, 2)}

	tests := []struct {
		name   string
		pieces []Piece
		dims   Dims
		want   error
	}{
		{"ok", uniform, Dims{Rows: 1, Cols: 2}, nil},
		{"empty", nil, Dims{Rows: 1, Cols: 1}, ErrEmptyUniverse},
		{"zero area", uniform, Dims{Rows: 0, Cols: 2}, ErrZeroArea},
		{"mismatch", uniform, Dims{Rows: 2, Cols: 2}, ErrDimensionMismatch},
		{"non uniform", []Piece{piece(0, 2, 2), piece(1, 3, 2)}, Dims{Rows: 2, Cols: 1}, ErrNonUniformPieces},
		{"sparse ids", []Piece{piece(0, 2, 2), piece(2, 2, 2)}, Dims{Rows: 2, Cols: 1}, ErrInvalidPieceID},
		{"empty raster", []Piece{piece(0, 0, 0)}, Dims{Rows: 1, Cols: 1}, ErrNonUniformPieces},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUniverse(tt.pieces, tt.dims)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

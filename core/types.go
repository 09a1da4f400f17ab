package core

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// PieceID identifies a piece. IDs are dense: a universe of n pieces uses 0..n-1.
type PieceID int

// NoPiece marks an empty cell or a missing neighbour.
const NoPiece PieceID = -1

// Raster holds RGB samples row-major, three bytes per pixel.
type Raster struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRaster allocates a black raster of the given size.
func NewRaster(width, height int) Raster {
	return Raster{Width: width, Height: height, Pix: make([]uint8, width*height*3)}
}

// At returns the RGB sample at (x, y).
func (r Raster) At(x, y int) (uint8, uint8, uint8) {
	i := (y*r.Width + x) * 3
	return r.Pix[i], r.Pix[i+1], r.Pix[i+2]
}

// Set writes the RGB sample at (x, y).
func (r Raster) Set(x, y int, red, green, blue uint8) {
	i := (y*r.Width + x) * 3
	r.Pix[i], r.Pix[i+1], r.Pix[i+2] = red, green, blue
}

// Piece is one image fragment. Pieces are immutable once handed to the solver.
type Piece struct {
	ID     PieceID
	Name   string // source label, e.g. file name
	Raster Raster
}

// Dims is the target grid size.
type Dims struct {
	Rows int
	Cols int
}

// Area returns Rows*Cols.
func (d Dims) Area() int { return d.Rows * d.Cols }

func (d Dims) String() string { return fmt.Sprintf("%dx%d", d.Rows, d.Cols) }

// Match is one entry of a compatibility list.
type Match struct {
	Score float64
	Piece PieceID
}

// FitnessScore pairs a population index with its cost. Lower is better.
type FitnessScore struct {
	Index int
	Cost  float64
}

// Chromosome is a complete arrangement of every piece into a rows x cols grid.
type Chromosome struct {
	dims      Dims
	cells     []PieceID
	positions []int // piece id -> cell index
}

// NewChromosome builds a chromosome from row-major cells. The cells must hold every
// id in 0..rows*cols-1 exactly once.
func NewChromosome(dims Dims, cells []PieceID) (*Chromosome, error) {
	if dims.Rows <= 0 || dims.Cols <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrZeroArea, dims)
	}
	n := dims.Area()
	if len(cells) != n {
		return nil, fmt.Errorf("%w: %d cells for a %s grid", ErrInvalidChromosome, len(cells), dims)
	}

	positions := make([]int, n)
	for i := range positions {
		positions[i] = -1
	}
	for i, id := range cells {
		if id < 0 || int(id) >= n {
			return nil, fmt.Errorf("%w: piece %d outside 0..%d", ErrInvalidChromosome, id, n-1)
		}
		if positions[id] != -1 {
			return nil, fmt.Errorf("%w: piece %d placed twice", ErrInvalidChromosome, id)
		}
		positions[id] = i
	}

	c := make([]PieceID, n)
	copy(c, cells)
	return &Chromosome{dims: dims, cells: c, positions: positions}, nil
}

// ChromosomeFromGrid builds a chromosome from a rectangular grid of rows.
func ChromosomeFromGrid(grid [][]PieceID) (*Chromosome, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrZeroArea)
	}
	dims := Dims{Rows: len(grid), Cols: len(grid[0])}
	cells := make([]PieceID, 0, dims.Area())
	for r, row := range grid {
		if len(row) != dims.Cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidChromosome, r, len(row), dims.Cols)
		}
		cells = append(cells, row...)
	}
	return NewChromosome(dims, cells)
}

func (c *Chromosome) Dims() Dims { return c.dims }
func (c *Chromosome) Rows() int  { return c.dims.Rows }
func (c *Chromosome) Cols() int  { return c.dims.Cols }

// At returns the piece at (row, col).
func (c *Chromosome) At(row, col int) PieceID {
	return c.cells[row*c.dims.Cols+col]
}

// Position returns the cell holding id.
func (c *Chromosome) Position(id PieceID) (row, col int, ok bool) {
	if id < 0 || int(id) >= len(c.positions) {
		return 0, 0, false
	}
	i := c.positions[id]
	return i / c.dims.Cols, i % c.dims.Cols, true
}

// Neighbor returns the piece adjacent to id in direction d, or false at the grid border.
func (c *Chromosome) Neighbor(id PieceID, d Direction) (PieceID, bool) {
	row, col, ok := c.Position(id)
	if !ok {
		return NoPiece, false
	}
	dr, dc := d.Offset()
	row, col = row+dr, col+dc
	if row < 0 || row >= c.dims.Rows || col < 0 || col >= c.dims.Cols {
		return NoPiece, false
	}
	return c.At(row, col), true
}

// Cells returns a copy of the row-major cells.
func (c *Chromosome) Cells() []PieceID {
	out := make([]PieceID, len(c.cells))
	copy(out, c.cells)
	return out
}

// Grid returns the arrangement as rows of piece ids.
func (c *Chromosome) Grid() [][]PieceID {
	grid := make([][]PieceID, c.dims.Rows)
	for r := range grid {
		grid[r] = make([]PieceID, c.dims.Cols)
		copy(grid[r], c.cells[r*c.dims.Cols:(r+1)*c.dims.Cols])
	}
	return grid
}

// Clone returns an independent copy.
func (c *Chromosome) Clone() *Chromosome {
	cells := make([]PieceID, len(c.cells))
	copy(cells, c.cells)
	positions := make([]int, len(c.positions))
	copy(positions, c.positions)
	return &Chromosome{dims: c.dims, cells: cells, positions: positions}
}

// Equal reports whether both chromosomes hold the same arrangement.
func (c *Chromosome) Equal(other *Chromosome) bool {
	if other == nil || c.dims != other.dims {
		return false
	}
	for i := range c.cells {
		if c.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Fingerprint hashes the arrangement; equal arrangements share a fingerprint.
func (c *Chromosome) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], uint32(c.dims.Rows))
	binary.LittleEndian.PutUint32(buf[4:], uint32(c.dims.Cols))
	_, _ = d.Write(buf[:])
	for _, id := range c.cells {
		binary.LittleEndian.PutUint32(buf[:4], uint32(id))
		_, _ = d.Write(buf[:4])
	}
	return d.Sum64()
}

func (c *Chromosome) String() string {
	return fmt.Sprint(c.Grid())
}

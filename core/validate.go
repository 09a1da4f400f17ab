package core

import "fmt"

// ValidateUniverse checks that pieces can be arranged into dims: the set is non-empty,
// ids are 0..n-1 in order, every raster has the same non-empty size, and the grid
// area equals the piece count.
func ValidateUniverse(pieces []Piece, dims Dims) error {
	if len(pieces) == 0 {
		return ErrEmptyUniverse
	}
	if dims.Rows <= 0 || dims.Cols <= 0 {
		return fmt.Errorf("%w: %s", ErrZeroArea, dims)
	}
	if dims.Area() != len(pieces) {
		return fmt.Errorf("%w: %s grid holds %d cells, got %d pieces", ErrDimensionMismatch, dims, dims.Area(), len(pieces))
	}
	return ValidatePieces(pieces)
}

// ValidatePieces checks id density and raster uniformity.
func ValidatePieces(pieces []Piece) error {
	if len(pieces) == 0 {
		return ErrEmptyUniverse
	}
	w, h := pieces[0].Raster.Width, pieces[0].Raster.Height
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: piece %d is %dx%d", ErrNonUniformPieces, pieces[0].ID, w, h)
	}
	for i, p := range pieces {
		if p.ID != PieceID(i) {
			return fmt.Errorf("%w: position %d holds id %d", ErrInvalidPieceID, i, p.ID)
		}
		if p.Raster.Width != w || p.Raster.Height != h {
			return fmt.Errorf("%w: piece %d is %dx%d, want %dx%d", ErrNonUniformPieces, p.ID, p.Raster.Width, p.Raster.Height, w, h)
		}
		if len(p.Raster.Pix) != w*h*3 {
			return fmt.Errorf("%w: piece %d has %d samples, want %d", ErrNonUniformPieces, p.ID, len(p.Raster.Pix), w*h*3)
		}
	}
	return nil
}

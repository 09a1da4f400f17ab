package imageio

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/snow-ghost/jigsaw/core"
)

// Compose renders the arrangement c by tiling the piece rasters.
func Compose(c *core.Chromosome, pieces []core.Piece) (*image.RGBA, error) {
	if err := core.ValidatePieces(pieces); err != nil {
		return nil, err
	}
	if c.Dims().Area() != len(pieces) {
		return nil, fmt.Errorf("%w: arrangement %s for %d pieces", core.ErrDimensionMismatch, c.Dims(), len(pieces))
	}

	w, h := pieces[0].Raster.Width, pieces[0].Raster.Height
	img := image.NewRGBA(image.Rect(0, 0, c.Cols()*w, c.Rows()*h))
	for row := 0; row < c.Rows(); row++ {
		for col := 0; col < c.Cols(); col++ {
			tile := image.Rect(col*w, row*h, (col+1)*w, (row+1)*h)
			draw.Draw(img, tile, FromRaster(pieces[c.At(row, col)].Raster), image.Point{}, draw.Src)
		}
	}
	return img, nil
}

// FromRaster converts a raster to an opaque image.
func FromRaster(r core.Raster) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			red, green, blue := r.At(x, y)
			o := img.PixOffset(x, y)
			img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = red, green, blue, 0xff
		}
	}
	return img
}

// SavePNG writes img to path, creating parent directories.
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

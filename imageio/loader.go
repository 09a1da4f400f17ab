// Package imageio converts between image files and the solver's piece rasters.
package imageio

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/snow-ghost/jigsaw/core"
)

// ErrNoPieces is returned when a directory holds no usable piece images.
var ErrNoPieces = errors.New("no usable piece images")

var extensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp"}

// LoadDir decodes every image in dir, in file name order. Images with a side of a
// single pixel are skipped. The remaining images are resized with nearest-neighbour
// sampling to the average width and height, so all pieces share one size.
func LoadDir(dir string) ([]core.Piece, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read pieces directory %s: %w", dir, err)
	}

	type decoded struct {
		name string
		img  image.Image
	}
	var images []decoded
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(extensions, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		img, err := DecodeFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		b := img.Bounds()
		if b.Dx() <= 1 || b.Dy() <= 1 {
			continue
		}
		images = append(images, decoded{name: e.Name(), img: img})
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPieces, dir)
	}

	var totalW, totalH int
	for _, d := range images {
		totalW += d.img.Bounds().Dx()
		totalH += d.img.Bounds().Dy()
	}
	width, height := totalW/len(images), totalH/len(images)

	pieces := make([]core.Piece, len(images))
	for i, d := range images {
		pieces[i] = core.Piece{
			ID:     core.PieceID(i),
			Name:   d.name,
			Raster: ToRaster(d.img, width, height),
		}
	}
	return pieces, nil
}

// DecodeFile decodes a single image file in any registered format.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// DecodeConfigFile reads only the header of an image file.
func DecodeConfigFile(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, fmt.Errorf("failed to decode image header %s: %w", path, err)
	}
	return cfg, nil
}

// ToRaster scales img to width x height and drops the alpha channel.
func ToRaster(img image.Image, width, height int) core.Raster {
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	if img.Bounds().Dx() == width && img.Bounds().Dy() == height {
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	} else {
		draw.NearestNeighbor.Scale(rgba, rgba.Bounds(), img, img.Bounds(), draw.Src, nil)
	}

	r := core.NewRaster(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			o := rgba.PixOffset(x, y)
			r.Set(x, y, rgba.Pix[o], rgba.Pix[o+1], rgba.Pix[o+2])
		}
	}
	return r
}

// InferDims estimates the grid from the original image size and the piece size,
// rounding each ratio to the nearest integer.
func InferDims(imageWidth, imageHeight, pieceWidth, pieceHeight int) (core.Dims, error) {
	if pieceWidth <= 0 || pieceHeight <= 0 {
		return core.Dims{}, fmt.Errorf("%w: piece size %dx%d", core.ErrZeroArea, pieceWidth, pieceHeight)
	}
	dims := core.Dims{
		Rows: roundDiv(imageHeight, pieceHeight),
		Cols: roundDiv(imageWidth, pieceWidth),
	}
	if dims.Area() == 0 {
		return core.Dims{}, fmt.Errorf("%w: image %dx%d is smaller than half a piece", core.ErrZeroArea, imageWidth, imageHeight)
	}
	return dims, nil
}

func roundDiv(a, b int) int {
	return (2*a + b) / (2 * b)
}

// DirSource loads pieces from a directory on demand.
type DirSource struct {
	Dir string
}

// Pieces implements core.PieceSource.
func (s DirSource) Pieces() ([]core.Piece, error) {
	return LoadDir(s.Dir)
}

var _ core.PieceSource = DirSource{}

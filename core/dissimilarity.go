package core

import "math"

// Dissimilarity scores how badly b fits next to a in direction d: the Euclidean
// distance between the touching edges, over the R, G and B channels.
// Both rasters must have the same size.
func Dissimilarity(a, b Raster, d Direction) float64 {
	var sum float64
	switch d {
	case Right:
		for y := 0; y < a.Height; y++ {
			sum += sampleDistance(a, a.Width-1, y, b, 0, y)
		}
	case Left:
		for y := 0; y < a.Height; y++ {
			sum += sampleDistance(a, 0, y, b, b.Width-1, y)
		}
	case Down:
		for x := 0; x < a.Width; x++ {
			sum += sampleDistance(a, x, a.Height-1, b, x, 0)
		}
	case Up:
		for x := 0; x < a.Width; x++ {
			sum += sampleDistance(a, x, 0, b, x, b.Height-1)
		}
	default:
		panic("core: invalid direction " + d.String())
	}
	return math.Sqrt(sum)
}

// sampleDistance returns the squared RGB distance between two samples.
func sampleDistance(a Raster, ax, ay int, b Raster, bx, by int) float64 {
	ar, ag, ab := a.At(ax, ay)
	br, bg, bb := b.At(bx, by)
	dr := float64(ar) - float64(br)
	dg := float64(ag) - float64(bg)
	db := float64(ab) - float64(bb)
	return dr*dr + dg*dg + db*db
}

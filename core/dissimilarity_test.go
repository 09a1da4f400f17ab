package core

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fill(r Raster, red, green, blue uint8) Raster {
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			r.Set(x, y, red, green, blue)
		}
	}
	return r
}

func randomRaster(rng *rand.Rand, w, h int) Raster {
	r := NewRaster(w, h)
	for i := range r.Pix {
		r.Pix[i] = uint8(rng.IntN(256))
	}
	return r
}

func TestDissimilarityEdges(t *testing.T) {
	a := fill(NewRaster(2, 2), 10, 20, 30)
	b := fill(NewRaster(2, 2), 0, 0, 0)
	b.Set(0, 0, 13, 24, 30)
	b.Set(0, 1, 13, 24, 30)

	// a's right column against b's left column: two rows of 3²+4²
	assert.InDelta(t, math.Sqrt(50), Dissimilarity(a, b, Right), 1e-12)
	// b's left column against a's right column
	assert.InDelta(t, math.Sqrt(50), Dissimilarity(b, a, Left), 1e-12)
	// a's right column against b's black right column
	assert.InDelta(t, math.Sqrt(2*(100+400+900)), Dissimilarity(b, a, Right), 1e-12)
}

func TestDissimilarityVertical(t *testing.T) {
	a := fill(NewRaster(3, 2), 0, 0, 0)
	b := fill(NewRaster(3, 2), 0, 0, 0)
	for x := 0; x < 3; x++ {
		a.Set(x, 1, 1, 1, 1) // bottom row
		b.Set(x, 0, 3, 3, 3) // top row
	}

	assert.InDelta(t, math.Sqrt(3*12), Dissimilarity(a, b, Down), 1e-12)
	assert.InDelta(t, math.Sqrt(3*12), Dissimilarity(b, a, Up), 1e-12)
	assert.InDelta(t, 0, Dissimilarity(a, b, Up), 1e-12)
}

func TestDissimilaritySymmetry(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	for i := 0; i < 50; i++ {
		a := randomRaster(rng, 4, 3)
		b := randomRaster(rng, 4, 3)
		for _, d := range Directions {
			forward := Dissimilarity(a, b, d)
			assert.Equal(t, forward, Dissimilarity(b, a, d.Inverse()), "direction %s", d)
			assert.Equal(t, forward, Dissimilarity(a, b, d), "deterministic %s", d)
			assert.GreaterOrEqual(t, forward, 0.0)
		}
	}
}

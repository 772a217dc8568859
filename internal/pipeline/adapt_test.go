package pipeline

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomXYZImage(rng *rand.Rand, width, height int) *XYZImage {
	img := NewXYZImage(width, height)
	for i := range img.Pix {
		img.Pix[i] = rng.Float64() * 100
	}
	return img
}

func TestAdaptNoOpAtZeroDegree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	img := randomXYZImage(rng, 4, 3)

	whites := []WhitePoint{
		{95.047, 100, 108.883}, // D65
		{109.85, 100, 35.58},   // A
		{100, 100, 100},        // E
	}
	for _, white := range whites {
		out, err := Adapt(img, white, 0)
		require.NoError(t, err)
		for i := range img.Pix {
			assert.InDelta(t, img.Pix[i], out.Pix[i], 1e-10)
		}
	}
}

func TestAdaptFullDegreeMapsWhiteToReference(t *testing.T) {
	// Fully adapted, the scene white's cone response becomes (Yw, Yw, Yw):
	// the equal-energy reference white.
	white := WhitePoint{95.047, 100, 108.883}
	img := NewXYZImage(1, 1)
	img.Set(0, Vec3(white))

	out, err := Adapt(img, white, 1)
	require.NoError(t, err)

	cone := CAT02.Apply(out.At(0))
	for c := 0; c < 3; c++ {
		assert.InDelta(t, 100, cone[c], 1e-9)
	}
}

func TestAdaptInvalidDegree(t *testing.T) {
	img := NewXYZImage(1, 1)
	white := WhitePoint{95, 100, 108}

	for _, d := range []float64{-0.1, 1.1, 2} {
		_, err := Adapt(img, white, d)
		assert.Error(t, err, "degree %g", d)
	}
}

func TestAdaptDegenerateWhitePoint(t *testing.T) {
	img := NewXYZImage(1, 1)
	img.Set(0, Vec3{50, 50, 50})

	// This white's L cone response cancels to within rounding error of
	// zero: 0.7328*0 + 0.4296*100 - 0.1624*264.532... ~ 0.
	white := WhitePoint{0, 100, 0.4296 * 100 / 0.1624}

	_, err := Adapt(img, white, 1)
	var degenerate *DegenerateWhitePointError
	require.ErrorAs(t, err, &degenerate)
	assert.Equal(t, "L", degenerate.Channel)
}

func TestAdaptPreservesShape(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	img := randomXYZImage(rng, 5, 2)

	out, err := Adapt(img, WhitePoint{95.047, 100, 108.883}, 0.7)
	require.NoError(t, err)
	assert.Equal(t, img.Width, out.Width)
	assert.Equal(t, img.Height, out.Height)
	assert.Len(t, out.Pix, len(img.Pix))
}

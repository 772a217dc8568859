package pipeline

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chromascope/relight/internal/cie"
	"github.com/chromascope/relight/internal/spectral"
)

// flatCMF builds a synthetic observer with constant channel weights.
func flatCMF(axis spectral.Axis, x, y, z float64) *cie.CMF {
	cmf := &cie.CMF{
		Wavelengths: axis,
		X:           make([]float64, len(axis)),
		Y:           make([]float64, len(axis)),
		Z:           make([]float64, len(axis)),
	}
	for i := range axis {
		cmf.X[i], cmf.Y[i], cmf.Z[i] = x, y, z
	}
	return cmf
}

func TestTristimulusClosedForm(t *testing.T) {
	// Two bands, flat SPD, unit observer: k = 100/(1+1) = 50, and a pixel
	// reflecting only one band integrates to 50 on every channel.
	axis := spectral.Axis{400, 780}
	cube := &spectral.Cube{
		Width:       2,
		Height:      2,
		Wavelengths: axis,
		Data: []float64{
			1, 0,
			0, 1,
			0, 1,
			1, 0,
		},
	}
	spd := []float64{1, 1}
	cmf := flatCMF(axis, 1, 1, 1)

	img, white, err := Tristimulus(cube, spd, cmf)
	require.NoError(t, err)

	assert.Equal(t, Vec3{100, 100, 100}, white)
	for px := 0; px < 4; px++ {
		xyz := img.At(px)
		for c := 0; c < 3; c++ {
			assert.InDelta(t, 50, xyz[c], 1e-12, "pixel %d channel %d", px, c)
		}
	}
}

func TestTristimulusWhiteLuminanceInvariant(t *testing.T) {
	// For any positive SPD and observer, the white point's Y is 100.
	rng := rand.New(rand.NewSource(42))
	grid := spectral.Grid()

	for trial := 0; trial < 25; trial++ {
		cmf := &cie.CMF{
			Wavelengths: grid,
			X:           make([]float64, len(grid)),
			Y:           make([]float64, len(grid)),
			Z:           make([]float64, len(grid)),
		}
		spd := make([]float64, len(grid))
		for i := range grid {
			spd[i] = rng.Float64() * 150
			cmf.X[i] = rng.Float64() * 2
			cmf.Y[i] = rng.Float64()
			cmf.Z[i] = rng.Float64() * 2
		}

		cube := &spectral.Cube{
			Width:       1,
			Height:      1,
			Wavelengths: grid,
			Data:        make([]float64, len(grid)),
		}

		_, white, err := Tristimulus(cube, spd, cmf)
		require.NoError(t, err)
		assert.Equal(t, 100.0, white[1], "trial %d", trial)
	}
}

func TestTristimulusGridMismatch(t *testing.T) {
	axis := spectral.Axis{400, 780}
	cube := &spectral.Cube{
		Width:       1,
		Height:      1,
		Wavelengths: axis,
		Data:        []float64{1, 1},
	}
	cmf := flatCMF(axis, 1, 1, 1)

	_, _, err := Tristimulus(cube, []float64{1, 1, 1}, cmf)
	assert.ErrorContains(t, err, "grid mismatch")
}

func TestTristimulusZeroLuminance(t *testing.T) {
	axis := spectral.Axis{400, 780}
	cube := &spectral.Cube{
		Width:       1,
		Height:      1,
		Wavelengths: axis,
		Data:        []float64{1, 1},
	}
	cmf := flatCMF(axis, 1, 1, 1)

	_, _, err := Tristimulus(cube, []float64{0, 0}, cmf)
	assert.ErrorContains(t, err, "no luminance")
}

func TestTristimulusNoClipping(t *testing.T) {
	// Negative observer lobes must pass through unclipped; clipping is the
	// encoder's concern.
	axis := spectral.Axis{400, 780}
	cube := &spectral.Cube{
		Width:       1,
		Height:      1,
		Wavelengths: axis,
		Data:        []float64{1, 0},
	}
	cmf := flatCMF(axis, 1, 1, 1)
	cmf.X[0] = -0.5

	img, _, err := Tristimulus(cube, []float64{1, 1}, cmf)
	require.NoError(t, err)
	assert.Less(t, img.At(0)[0], 0.0)
}

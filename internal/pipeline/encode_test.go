package pipeline

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	img := randomXYZImage(rng, 8, 8)

	first, err := Encode(img, 2.2)
	require.NoError(t, err)
	second, err := Encode(img, 2.2)
	require.NoError(t, err)

	// Bit-identical, not merely close.
	assert.Equal(t, first.Pix, second.Pix)
}

func TestEncodeOutputRange(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	img := randomXYZImage(rng, 10, 10)
	// Mix in negative tristimulus values; they must be clipped, not leak.
	for i := 0; i < len(img.Pix); i += 7 {
		img.Pix[i] = -img.Pix[i]
	}

	out, err := Encode(img, 2.4)
	require.NoError(t, err)
	for i, v := range out.Pix {
		if v < 0 || v > 1 || math.IsNaN(v) {
			t.Fatalf("sample %d out of range: %g", i, v)
		}
	}
}

func TestEncodeGlobalNormalization(t *testing.T) {
	// The brightest pixel's luminance maps to 1 before the RGB matrix;
	// an achromatic pixel at max Y encodes to white.
	img := NewXYZImage(2, 1)
	img.Set(0, Vec3{95.047, 100, 108.883})
	img.Set(1, Vec3{47.5235, 50, 54.4415})

	out, err := Encode(img, 2.2)
	require.NoError(t, err)

	// D65 white through the sRGB matrix is (1,1,1) up to matrix rounding.
	for c := 0; c < 3; c++ {
		assert.InDelta(t, 1, out.Pix[c], 0.01, "channel %d", c)
	}
	// The half-luminance pixel is strictly darker on every channel.
	for c := 0; c < 3; c++ {
		assert.Less(t, out.Pix[3+c], out.Pix[c])
	}
}

func TestEncodeBlackImage(t *testing.T) {
	img := NewXYZImage(3, 3)

	out, err := Encode(img, 2.2)
	require.NoError(t, err)
	for _, v := range out.Pix {
		assert.Zero(t, v)
	}
}

func TestEncodeInvalidGamma(t *testing.T) {
	img := NewXYZImage(1, 1)
	for _, gamma := range []float64{0, -1} {
		_, err := Encode(img, gamma)
		assert.Error(t, err, "gamma %g", gamma)
	}
}

func TestEncodeGammaBrightensMidtones(t *testing.T) {
	img := NewXYZImage(2, 1)
	img.Set(0, Vec3{100, 100, 100})
	img.Set(1, Vec3{25, 25, 25})

	linear, err := Encode(img, 1)
	require.NoError(t, err)
	encoded, err := Encode(img, 2.2)
	require.NoError(t, err)

	// Gamma encoding lifts values below 1.
	assert.Greater(t, encoded.Pix[3+1], linear.Pix[3+1])
}

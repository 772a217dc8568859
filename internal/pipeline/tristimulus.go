package pipeline

import (
	"fmt"

	"github.com/chromascope/relight/internal/cie"
	"github.com/chromascope/relight/internal/spectral"
)

// WhitePoint is the XYZ tristimulus of the scene illuminant itself. Its Y
// component is always 100 by construction of the luminance normalization.
type WhitePoint = Vec3

// Tristimulus integrates a reflectance cube under an illuminant into
// per-pixel XYZ values and the illuminant's own white point. All three
// inputs must already be sampled on the same working grid; mismatched
// grids cannot be integrated and are rejected.
//
// The normalization constant k = 100 / sum(SPD * ybar) ties the
// illuminant's luminance channel to a reference white of Y = 100. Pixel
// values are not clipped: negative XYZ components pass through and are the
// encoder's concern.
func Tristimulus(cube *spectral.Cube, spd []float64, cmf *cie.CMF) (*XYZImage, WhitePoint, error) {
	bands := cube.Bands()
	if len(spd) != bands || cmf.Bands() != bands {
		return nil, WhitePoint{}, fmt.Errorf("grid mismatch: cube has %d bands, SPD %d, observer %d",
			bands, len(spd), cmf.Bands())
	}

	// White point numerator and luminance denominator in one pass.
	var sumX, sumY, sumZ float64
	for b := 0; b < bands; b++ {
		sumX += spd[b] * cmf.X[b]
		sumY += spd[b] * cmf.Y[b]
		sumZ += spd[b] * cmf.Z[b]
	}
	if sumY <= 0 {
		return nil, WhitePoint{}, fmt.Errorf("illuminant has no luminance on the working grid")
	}
	k := 100 / sumY
	// k*sumY is 100 by construction; store it as such so the invariant
	// holds exactly rather than up to a rounding error.
	white := WhitePoint{k * sumX, 100, k * sumZ}

	// Pre-weight the observer by k*SPD so each pixel is a single
	// projection onto three channels.
	wx := make([]float64, bands)
	wy := make([]float64, bands)
	wz := make([]float64, bands)
	for b := 0; b < bands; b++ {
		wx[b] = k * spd[b] * cmf.X[b]
		wy[b] = k * spd[b] * cmf.Y[b]
		wz[b] = k * spd[b] * cmf.Z[b]
	}

	img := NewXYZImage(cube.Width, cube.Height)
	for px := 0; px < cube.Pixels(); px++ {
		refl := cube.Pixel(px)
		var x, y, z float64
		for b, r := range refl {
			x += r * wx[b]
			y += r * wy[b]
			z += r * wz[b]
		}
		img.Set(px, Vec3{x, y, z})
	}
	return img, white, nil
}

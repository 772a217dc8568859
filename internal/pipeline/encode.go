package pipeline

import (
	"fmt"
	"math"
)

// XYZToLinearSRGB is the fixed XYZ -> linear sRGB primaries matrix
// (D65 reference white).
var XYZToLinearSRGB = Matrix3{
	{3.2406, -1.5372, -0.4986},
	{-0.9689, 1.8758, 0.0414},
	{0.0557, -0.2040, 1.0570},
}

// Encode converts a tristimulus image to gamma-encoded display RGB.
//
// Negative XYZ components are clipped to zero, the whole array is
// normalized by the maximum of its Y channel (global, not per pixel, so
// the brightest pixel's luminance maps to 1), the linear sRGB matrix is
// applied, linear RGB is clipped to [0, 1] and encoded with exponent
// 1/gamma. Encoding is deterministic: identical input yields bit-identical
// output.
func Encode(img *XYZImage, gamma float64) (*Image, error) {
	if gamma <= 0 {
		return nil, fmt.Errorf("gamma must be positive, got %g", gamma)
	}

	maxY := 0.0
	for px := 0; px < img.Pixels(); px++ {
		if y := img.Pix[px*3+1]; y > maxY {
			maxY = y
		}
	}

	out := NewImage(img.Width, img.Height)
	if maxY == 0 {
		// No luminance anywhere: the image is black.
		return out, nil
	}

	inv := 1 / maxY
	exp := 1 / gamma
	for px := 0; px < img.Pixels(); px++ {
		xyz := img.At(px)
		for c := 0; c < 3; c++ {
			if xyz[c] < 0 {
				xyz[c] = 0
			}
			xyz[c] *= inv
		}

		rgb := XYZToLinearSRGB.Apply(xyz)
		for c := 0; c < 3; c++ {
			v := math.Min(1, math.Max(0, rgb[c]))
			out.Pix[px*3+c] = math.Pow(v, exp)
		}
	}
	return out, nil
}

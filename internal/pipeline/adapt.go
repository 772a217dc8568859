package pipeline

import (
	"fmt"
	"math"
)

// Cone responses of real white points are on the order of the white
// luminance (100). Anything this close to zero makes the adaptation gain
// meaningless long before the division hits IEEE infinity.
const degenerateConeResponse = 1e-9

// CAT02 is the CIECAM02 chromatic-adaptation matrix mapping XYZ into the
// sharpened cone-response space.
var CAT02 = Matrix3{
	{0.7328, 0.4296, -0.1624},
	{-0.7036, 1.6975, 0.0061},
	{0.0030, 0.0136, 0.9834},
}

var coneNames = [3]string{"L", "M", "S"}

// DegenerateWhitePointError reports a white point whose cone response is
// zero in some channel, which makes the adaptation gain undefined.
type DegenerateWhitePointError struct {
	Channel string
	White   WhitePoint
}

func (e *DegenerateWhitePointError) Error() string {
	return fmt.Sprintf("degenerate white point: zero %s cone response for XYZ (%.4f, %.4f, %.4f)",
		e.Channel, e.White[0], e.White[1], e.White[2])
}

// Adapt applies a CIECAM02-style degree-of-adaptation transform. The scene
// white point is pushed toward the equal-energy reference white by degree
// d in [0, 1]: 0 leaves the image as-is, 1 adapts fully.
//
// Per channel the gain is Yw*d/coneWhite + (1-d); gains are applied in the
// CAT02 cone space and the result is mapped back to XYZ by a linear solve
// rather than a stored inverse matrix.
func Adapt(img *XYZImage, white WhitePoint, d float64) (*XYZImage, error) {
	if d < 0 || d > 1 {
		return nil, fmt.Errorf("adaptation degree %g outside [0, 1]", d)
	}

	coneWhite := CAT02.Apply(white)
	var gain Vec3
	for c := 0; c < 3; c++ {
		if math.Abs(coneWhite[c]) < degenerateConeResponse {
			return nil, &DegenerateWhitePointError{Channel: coneNames[c], White: white}
		}
		gain[c] = white[1]*d/coneWhite[c] + (1 - d)
	}

	out := NewXYZImage(img.Width, img.Height)
	for px := 0; px < img.Pixels(); px++ {
		cone := CAT02.Apply(img.At(px))
		for c := 0; c < 3; c++ {
			cone[c] *= gain[c]
		}
		xyz, err := CAT02.Solve(cone)
		if err != nil {
			return nil, fmt.Errorf("inverting cone response: %w", err)
		}
		out.Set(px, xyz)
	}
	return out, nil
}

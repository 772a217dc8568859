package spectral

import "fmt"

// Working grid bounds in nanometers. All spectral data is resampled onto
// this grid before tristimulus integration.
const (
	GridMin  = 400.0
	GridMax  = 780.0
	GridStep = 5.0
)

// Axis is an ordered sequence of wavelengths in nanometers. It must be
// strictly increasing.
type Axis []float64

// Grid returns the canonical working wavelength axis: 400-780 nm in 5 nm
// steps. Callers own the returned slice.
func Grid() Axis {
	n := int((GridMax-GridMin)/GridStep) + 1
	axis := make(Axis, n)
	for i := range axis {
		axis[i] = GridMin + float64(i)*GridStep
	}
	return axis
}

// Validate checks that the axis is non-empty and strictly increasing.
func (a Axis) Validate() error {
	if len(a) < 2 {
		return fmt.Errorf("wavelength axis needs at least 2 samples, got %d", len(a))
	}
	for i := 1; i < len(a); i++ {
		if a[i] <= a[i-1] {
			return fmt.Errorf("wavelength axis is not strictly increasing at index %d: %gnm follows %gnm", i, a[i], a[i-1])
		}
	}
	return nil
}

// Min returns the first wavelength of the axis.
func (a Axis) Min() float64 { return a[0] }

// Max returns the last wavelength of the axis.
func (a Axis) Max() float64 { return a[len(a)-1] }

// Covers reports whether the axis span fully contains the target axis span.
func (a Axis) Covers(target Axis) bool {
	return a.Min() <= target.Min() && a.Max() >= target.Max()
}

// CheckCovers returns a RangeError if the axis span does not fully contain
// the target axis span.
func (a Axis) CheckCovers(target Axis) error {
	if !a.Covers(target) {
		return &RangeError{
			Min:     a.Min(),
			Max:     a.Max(),
			NeedMin: target.Min(),
			NeedMax: target.Max(),
		}
	}
	return nil
}

// RangeError indicates that a source wavelength axis does not cover the
// required target range.
type RangeError struct {
	Min, Max         float64 // span of the source axis
	NeedMin, NeedMax float64 // span that must be covered
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("wavelength range %g-%gnm does not cover required %g-%gnm",
		e.Min, e.Max, e.NeedMin, e.NeedMax)
}

package spectral

import (
	"fmt"
	"sort"
)

// interpolant is a shape-preserving piecewise-cubic (Fritsch-Carlson
// monotone) interpolant. It never overshoots the local extrema of its knots,
// which keeps physically non-negative spectra non-negative and free of
// ringing. Points outside the knot domain evaluate to zero.
type interpolant struct {
	x, y []float64
	m    []float64 // knot slopes
}

func newInterpolant(x, y []float64) *interpolant {
	n := len(x)
	h := make([]float64, n-1) // interval widths
	d := make([]float64, n-1) // secant slopes
	for i := 0; i < n-1; i++ {
		h[i] = x[i+1] - x[i]
		d[i] = (y[i+1] - y[i]) / h[i]
	}

	m := make([]float64, n)
	if n == 2 {
		m[0], m[1] = d[0], d[0]
		return &interpolant{x: x, y: y, m: m}
	}

	// Interior slopes: weighted harmonic mean of adjacent secants,
	// zero at local extrema.
	for i := 1; i < n-1; i++ {
		if d[i-1]*d[i] <= 0 {
			m[i] = 0
			continue
		}
		w1 := 2*h[i] + h[i-1]
		w2 := h[i] + 2*h[i-1]
		m[i] = (w1 + w2) / (w1/d[i-1] + w2/d[i])
	}
	m[0] = endpointSlope(h[0], h[1], d[0], d[1])
	m[n-1] = endpointSlope(h[n-2], h[n-3], d[n-2], d[n-3])

	return &interpolant{x: x, y: y, m: m}
}

// endpointSlope applies the three-point boundary formula, limited so the
// interpolant stays within the range of the end samples.
func endpointSlope(h0, h1, d0, d1 float64) float64 {
	s := ((2*h0+h1)*d0 - h0*d1) / (h0 + h1)
	if s*d0 <= 0 {
		return 0
	}
	if d0*d1 < 0 && absf(s) > 3*absf(d0) {
		return 3 * d0
	}
	return s
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// at evaluates the interpolant at wavelength w. Out-of-domain wavelengths
// evaluate to zero rather than extrapolating.
func (p *interpolant) at(w float64) float64 {
	n := len(p.x)
	if w < p.x[0] || w > p.x[n-1] {
		return 0
	}
	if w == p.x[n-1] {
		return p.y[n-1]
	}

	i := sort.SearchFloat64s(p.x, w)
	if i < n && p.x[i] == w {
		return p.y[i]
	}
	i-- // interval index: x[i] < w < x[i+1]

	h := p.x[i+1] - p.x[i]
	t := (w - p.x[i]) / h
	t2 := t * t
	t3 := t2 * t

	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2

	return h00*p.y[i] + h10*h*p.m[i] + h01*p.y[i+1] + h11*h*p.m[i+1]
}

// Resample interpolates the spectrum onto the target axis. Target
// wavelengths outside the source domain evaluate to zero.
func Resample(s Sampled, target Axis) (Sampled, error) {
	if err := s.Wavelengths.Validate(); err != nil {
		return Sampled{}, fmt.Errorf("resampling spectrum: %w", err)
	}
	if len(s.Values) != len(s.Wavelengths) {
		return Sampled{}, fmt.Errorf("resampling spectrum: %d values for %d wavelengths", len(s.Values), len(s.Wavelengths))
	}

	p := newInterpolant(s.Wavelengths, s.Values)
	out := make([]float64, len(target))
	for i, w := range target {
		out[i] = p.at(w)
	}
	return Sampled{Wavelengths: target, Values: out}, nil
}

// ResampleCube resamples every pixel spectrum of the cube onto the target
// axis. The cube's axis must cover the target span; a partial cube cannot be
// integrated and is rejected with a RangeError.
func ResampleCube(c *Cube, target Axis) (*Cube, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("resampling cube: %w", err)
	}
	if err := c.Wavelengths.CheckCovers(target); err != nil {
		return nil, err
	}

	out := &Cube{
		Width:       c.Width,
		Height:      c.Height,
		Wavelengths: target,
		Data:        make([]float64, c.Pixels()*len(target)),
	}
	for px := 0; px < c.Pixels(); px++ {
		p := newInterpolant(c.Wavelengths, c.Pixel(px))
		row := out.Data[px*len(target) : (px+1)*len(target)]
		for i, w := range target {
			row[i] = p.at(w)
		}
	}
	return out, nil
}

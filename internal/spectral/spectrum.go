// Package spectral defines wavelength axes, sampled spectra and reflectance
// cubes, and resamples them onto a common working grid using shape-preserving
// interpolation.
package spectral

import (
	"fmt"
	"math"
)

// Sampled couples spectral values with the wavelength axis they were
// measured on. It represents a spectral power distribution or a single
// reflectance trace.
type Sampled struct {
	Wavelengths Axis
	Values      []float64
}

// Validate checks axis monotonicity, axis/value agreement and that all
// values are finite and non-negative.
func (s Sampled) Validate() error {
	if err := s.Wavelengths.Validate(); err != nil {
		return err
	}
	if len(s.Values) != len(s.Wavelengths) {
		return fmt.Errorf("spectrum has %d values for %d wavelengths", len(s.Values), len(s.Wavelengths))
	}
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("spectrum value at %gnm is not finite", s.Wavelengths[i])
		}
		if v < 0 {
			return fmt.Errorf("spectrum value at %gnm is negative: %g", s.Wavelengths[i], v)
		}
	}
	return nil
}

// Cube is a hyperspectral reflectance image. Data is laid out pixel by pixel
// in row-major order with all bands of a pixel stored contiguously
// (band-interleaved by pixel). Reflectance factors are nominally in [0, 1]
// but sensor noise may push them slightly above 1.
type Cube struct {
	Width, Height int
	Wavelengths   Axis
	Data          []float64
}

// Pixels returns the number of pixels in the cube.
func (c *Cube) Pixels() int { return c.Width * c.Height }

// Bands returns the number of spectral bands per pixel.
func (c *Cube) Bands() int { return len(c.Wavelengths) }

// Pixel returns the reflectance spectrum of pixel i as a subslice of the
// cube's backing array.
func (c *Cube) Pixel(i int) []float64 {
	n := c.Bands()
	return c.Data[i*n : (i+1)*n]
}

// Validate checks the cube's dimensions, axis and data for consistency.
func (c *Cube) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid cube dimensions %dx%d", c.Width, c.Height)
	}
	if err := c.Wavelengths.Validate(); err != nil {
		return err
	}
	if want := c.Pixels() * c.Bands(); len(c.Data) != want {
		return fmt.Errorf("cube has %d samples, want %d (%dx%dx%d)", len(c.Data), want, c.Width, c.Height, c.Bands())
	}
	for i, v := range c.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("cube sample %d is not finite", i)
		}
	}
	return nil
}

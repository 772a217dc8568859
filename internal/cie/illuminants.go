package cie

import (
	"math"

	"github.com/chromascope/relight/internal/spectral"
)

// CIE standard illuminant D65 (average daylight, ~6504 K), relative spectral
// power on a 10 nm grid, normalized to 100 at 560 nm.
var d65Power = []float64{
	49.98, 54.65, 82.75, 91.49, 93.43, 86.68, 104.86, 117.01, 117.81, 114.86,
	115.92, 108.81, 109.35, 107.80, 104.79, 107.69, 104.41, 104.05, 100.00, 96.33,
	95.79, 88.69, 90.01, 89.60, 87.70, 83.29, 83.70, 80.03, 80.21, 82.28,
	78.28, 69.72, 71.61, 74.35, 61.60, 69.89, 75.09, 63.59, 46.42, 66.81,
	63.38,
}

// D65 returns the CIE D65 daylight illuminant on its native 380-780 nm,
// 10 nm grid.
func D65() spectral.Sampled {
	axis := make(spectral.Axis, len(d65Power))
	for i := range axis {
		axis[i] = 380 + float64(i)*10
	}
	return spectral.Sampled{Wavelengths: axis, Values: append([]float64(nil), d65Power...)}
}

// EqualEnergy returns illuminant E: unit power at every wavelength over
// 360-830 nm.
func EqualEnergy() spectral.Sampled {
	axis := make(spectral.Axis, 48)
	values := make([]float64, len(axis))
	for i := range axis {
		axis[i] = 360 + float64(i)*10
		values[i] = 1
	}
	return spectral.Sampled{Wavelengths: axis, Values: values}
}

// Blackbody returns the relative spectral power of a Planckian radiator at
// the given color temperature, sampled over 360-830 nm in 5 nm steps and
// normalized to 100 at 560 nm.
func Blackbody(tempK float64) spectral.Sampled {
	const c2 = 1.4388e7 // second radiation constant, nm*K

	planck := func(nm float64) float64 {
		return 1 / (math.Pow(nm, 5) * (math.Exp(c2/(nm*tempK)) - 1))
	}

	ref := planck(560)
	axis := make(spectral.Axis, 95)
	values := make([]float64, len(axis))
	for i := range axis {
		nm := 360 + float64(i)*5
		axis[i] = nm
		values[i] = 100 * planck(nm) / ref
	}
	return spectral.Sampled{Wavelengths: axis, Values: values}
}

// IlluminantA returns CIE standard illuminant A, a tungsten filament lamp
// at 2856 K.
func IlluminantA() spectral.Sampled {
	return Blackbody(2856)
}

// LED returns a synthetic narrow-band LED spectrum with a Gaussian profile
// centered on peakNM with the given full width at half maximum, sampled over
// 360-830 nm in 5 nm steps and peaking at 100.
func LED(peakNM, fwhmNM float64) spectral.Sampled {
	sigma := fwhmNM / (2 * math.Sqrt(2*math.Ln2))

	axis := make(spectral.Axis, 95)
	values := make([]float64, len(axis))
	for i := range axis {
		nm := 360 + float64(i)*5
		axis[i] = nm
		dev := (nm - peakNM) / sigma
		values[i] = 100 * math.Exp(-0.5*dev*dev)
	}
	return spectral.Sampled{Wavelengths: axis, Values: values}
}

// Presets returns the built-in illuminants keyed by store name.
func Presets() map[string]spectral.Sampled {
	return map[string]spectral.Sampled{
		"d65":          D65(),
		"a":            IlluminantA(),
		"e":            EqualEnergy(),
		"halogen-3200": Blackbody(3200),
		"led-blue-450": LED(450, 25),
		"led-warm-600": LED(600, 90),
	}
}

// Package cie provides the CIE 1931 standard observer color-matching
// functions and a set of built-in illuminant spectral power distributions.
package cie

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/chromascope/relight/internal/spectral"
)

//go:embed cie1931_2deg_5nm.csv
var cmfCSV string

// CMF holds color-matching functions sampled on a wavelength axis. The
// three channels weight spectral power into the CIE X, Y and Z tristimulus
// responses.
type CMF struct {
	Wavelengths spectral.Axis
	X, Y, Z     []float64
}

var (
	observerOnce sync.Once
	observer     *CMF
	observerErr  error
)

// Observer1931 returns the CIE 1931 2-degree standard observer, covering
// 360-830 nm in 5 nm steps. The dataset is parsed once; the returned value
// is shared and must be treated as read-only.
func Observer1931() (*CMF, error) {
	observerOnce.Do(func() {
		observer, observerErr = parseCMF(strings.NewReader(cmfCSV))
	})
	return observer, observerErr
}

func parseCMF(r io.Reader) (*CMF, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading observer dataset: %w", err)
	}
	if len(records) < 3 { // header plus at least two bands
		return nil, fmt.Errorf("observer dataset has %d rows", len(records))
	}

	records = records[1:] // skip header
	cmf := &CMF{
		Wavelengths: make(spectral.Axis, len(records)),
		X:           make([]float64, len(records)),
		Y:           make([]float64, len(records)),
		Z:           make([]float64, len(records)),
	}
	for i, rec := range records {
		fields := []*float64{&cmf.Wavelengths[i], &cmf.X[i], &cmf.Y[i], &cmf.Z[i]}
		for j, dst := range fields {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("observer dataset row %d: %w", i+1, err)
			}
			*dst = v
		}
	}

	if err := cmf.Wavelengths.Validate(); err != nil {
		return nil, fmt.Errorf("observer dataset: %w", err)
	}
	return cmf, nil
}

// Bands returns the number of wavelength samples.
func (c *CMF) Bands() int { return len(c.Wavelengths) }

// Resample interpolates all three channels onto the target axis. The
// observer's axis must cover the target span.
func (c *CMF) Resample(target spectral.Axis) (*CMF, error) {
	if err := c.Wavelengths.CheckCovers(target); err != nil {
		return nil, err
	}

	out := &CMF{Wavelengths: target}
	for _, ch := range []struct {
		src []float64
		dst *[]float64
	}{
		{c.X, &out.X},
		{c.Y, &out.Y},
		{c.Z, &out.Z},
	} {
		res, err := spectral.Resample(spectral.Sampled{Wavelengths: c.Wavelengths, Values: ch.src}, target)
		if err != nil {
			return nil, fmt.Errorf("resampling observer: %w", err)
		}
		*ch.dst = res.Values
	}
	return out, nil
}

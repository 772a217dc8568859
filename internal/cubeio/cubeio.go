// Package cubeio reads and writes hyperspectral reflectance cubes: raw
// little-endian float32 samples, band-interleaved by pixel, with a YAML
// sidecar header describing dimensions and the wavelength axis.
package cubeio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chromascope/relight/internal/spectral"
)

// HeaderSuffix is appended to the data file path to form the sidecar path.
const HeaderSuffix = ".yaml"

// Header is the YAML sidecar describing a cube data file.
type Header struct {
	Width       int       `yaml:"width"`
	Height      int       `yaml:"height"`
	Bands       int       `yaml:"bands"`
	Wavelengths []float64 `yaml:"wavelengths"`
}

func (h *Header) validate() error {
	if h.Width <= 0 || h.Height <= 0 {
		return fmt.Errorf("invalid cube dimensions %dx%d", h.Width, h.Height)
	}
	if h.Bands != len(h.Wavelengths) {
		return fmt.Errorf("header declares %d bands but lists %d wavelengths", h.Bands, len(h.Wavelengths))
	}
	return spectral.Axis(h.Wavelengths).Validate()
}

// Load reads the cube at dataPath and its sidecar header at
// dataPath + ".yaml".
func Load(dataPath string) (*spectral.Cube, error) {
	headerBytes, err := os.ReadFile(dataPath + HeaderSuffix)
	if err != nil {
		return nil, fmt.Errorf("reading cube header: %w", err)
	}

	var header Header
	if err = yaml.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("parsing cube header: %w", err)
	}
	if err = header.validate(); err != nil {
		return nil, fmt.Errorf("invalid cube header: %w", err)
	}

	f, err := os.Open(dataPath)
	if err != nil {
		return nil, fmt.Errorf("opening cube data: %w", err)
	}
	defer f.Close()

	cube, err := read(bufio.NewReader(f), &header)
	if err != nil {
		return nil, fmt.Errorf("reading cube data '%s': %w", dataPath, err)
	}
	return cube, nil
}

func read(r io.Reader, header *Header) (*spectral.Cube, error) {
	n := header.Width * header.Height * header.Bands
	raw := make([]float32, n)
	if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
		return nil, fmt.Errorf("reading %d samples: %w", n, err)
	}

	data := make([]float64, n)
	for i, v := range raw {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("sample %d is not finite", i)
		}
		data[i] = f
	}

	return &spectral.Cube{
		Width:       header.Width,
		Height:      header.Height,
		Wavelengths: append(spectral.Axis(nil), header.Wavelengths...),
		Data:        data,
	}, nil
}

// Save writes the cube's data file and sidecar header.
func Save(dataPath string, cube *spectral.Cube) error {
	if err := cube.Validate(); err != nil {
		return fmt.Errorf("saving cube: %w", err)
	}

	header := Header{
		Width:       cube.Width,
		Height:      cube.Height,
		Bands:       cube.Bands(),
		Wavelengths: cube.Wavelengths,
	}
	headerBytes, err := yaml.Marshal(&header)
	if err != nil {
		return fmt.Errorf("marshaling cube header: %w", err)
	}
	if err = os.WriteFile(dataPath+HeaderSuffix, headerBytes, 0o644); err != nil {
		return fmt.Errorf("writing cube header: %w", err)
	}

	raw := make([]float32, len(cube.Data))
	for i, v := range cube.Data {
		raw[i] = float32(v)
	}

	f, err := os.Create(dataPath)
	if err != nil {
		return fmt.Errorf("creating cube data: %w", err)
	}

	w := bufio.NewWriter(f)
	if err = binary.Write(w, binary.LittleEndian, raw); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing cube data: %w", err)
	}
	if err = w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flushing cube data: %w", err)
	}
	return f.Close()
}

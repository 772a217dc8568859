package cubeio

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/chromascope/relight/internal/spectral"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	cube := &spectral.Cube{
		Width:       3,
		Height:      2,
		Wavelengths: spectral.Axis{400, 550, 780},
		Data: []float64{
			0.25, 0.5, 0.75,
			1, 0, 0.125,
			0.0625, 0.5, 0.9375,
			0.1875, 0.25, 0.375,
			0.5, 0.625, 0.75,
			0.875, 1, 0,
		},
	}

	path := filepath.Join(t.TempDir(), "scene.cube")
	require.NoError(t, Save(path, cube))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cube.Width, got.Width)
	assert.Equal(t, cube.Height, got.Height)
	assert.Equal(t, cube.Wavelengths, got.Wavelengths)
	// All test values are exactly representable as float32.
	assert.Equal(t, cube.Data, got.Data)
}

func TestLoadMissingHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.cube")
	require.NoError(t, os.WriteFile(path, make([]byte, 16), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadInvalidHeader(t *testing.T) {
	testCases := []struct {
		name   string
		header Header
	}{
		{"zero width", Header{Width: 0, Height: 2, Bands: 1, Wavelengths: []float64{500}}},
		{"band mismatch", Header{Width: 2, Height: 2, Bands: 3, Wavelengths: []float64{500}}},
		{"unsorted axis", Header{Width: 2, Height: 2, Bands: 2, Wavelengths: []float64{600, 500}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scene.cube")
			headerBytes, err := yaml.Marshal(&tc.header)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(path+HeaderSuffix, headerBytes, 0o644))
			require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o644))

			_, err = Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadTruncatedData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.cube")
	header := Header{Width: 2, Height: 2, Bands: 2, Wavelengths: []float64{500, 600}}
	headerBytes, err := yaml.Marshal(&header)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path+HeaderSuffix, headerBytes, 0o644))

	// 8 samples declared, 3 written.
	require.NoError(t, os.WriteFile(path, make([]byte, 3*4), 0o644))

	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsNonFiniteSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.cube")
	header := Header{Width: 1, Height: 1, Bands: 2, Wavelengths: []float64{500, 600}}
	headerBytes, err := yaml.Marshal(&header)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path+HeaderSuffix, headerBytes, 0o644))

	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data[0:], 0x3f800000) // 1.0
	binary.LittleEndian.PutUint32(data[4:], 0x7fc00000) // NaN

	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = Load(path)
	assert.ErrorContains(t, err, "not finite")
}

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chromascope/relight/internal/spectral"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "illuminants.db"))
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing store: %v", err)
		}
	})
	return s
}

func testSPD() spectral.Sampled {
	return spectral.Sampled{
		Wavelengths: spectral.Axis{380, 560, 780},
		Values:      []float64{40, 100, 70},
	}
}

func TestAddGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	spd := testSPD()
	require.NoError(t, s.Add(ctx, "studio", spd))

	got, err := s.Get(ctx, "studio")
	require.NoError(t, err)
	assert.Equal(t, spd.Wavelengths, got.Wavelengths)
	assert.Equal(t, spd.Values, got.Values)
}

func TestAddDuplicateName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Add(ctx, "studio", testSPD()))

	err := s.Add(ctx, "studio", testSPD())
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "name", validation.Field)
}

func TestAddValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	testCases := []struct {
		name  string
		key   string
		spd   spectral.Sampled
		field string
	}{
		{"empty name", "", testSPD(), "name"},
		{"empty spd", "studio", spectral.Sampled{}, "spd"},
		{
			"negative power", "studio",
			spectral.Sampled{Wavelengths: spectral.Axis{400, 500}, Values: []float64{1, -1}},
			"spd",
		},
		{
			"unsorted wavelengths", "studio",
			spectral.Sampled{Wavelengths: spectral.Axis{500, 400}, Values: []float64{1, 1}},
			"spd",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.Add(ctx, tc.key, tc.spd)
			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tc.field, validation.Field)
		})
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.Name)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Add(ctx, "studio", testSPD()))

	replacement := spectral.Sampled{
		Wavelengths: spectral.Axis{400, 780},
		Values:      []float64{1, 1},
	}
	require.NoError(t, s.Update(ctx, "studio", replacement))

	got, err := s.Get(ctx, "studio")
	require.NoError(t, err)
	assert.Equal(t, replacement.Values, got.Values)
}

func TestUpdateNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.Update(context.Background(), "nope", testSPD())
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Add(ctx, "studio", testSPD()))
	require.NoError(t, s.Delete(ctx, "studio"))

	_, err := s.Get(ctx, "studio")
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)

	err = s.Delete(ctx, "studio")
	assert.ErrorAs(t, err, &notFound)
}

func TestLoadAndList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Add(ctx, "warm", testSPD()))
	require.NoError(t, s.Add(ctx, "cool", spectral.Sampled{
		Wavelengths: spectral.Axis{400, 500, 600, 780},
		Values:      []float64{90, 100, 80, 60},
	}))

	table, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, testSPD().Values, table["warm"].Values)

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Ordered by name.
	assert.Equal(t, "cool", records[0].Name)
	assert.Equal(t, 4, records[0].Samples)
	assert.Equal(t, "warm", records[1].Name)
	assert.Equal(t, 3, records[1].Samples)
	assert.False(t, records[0].CreatedAt.IsZero())
}

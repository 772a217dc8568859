package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/chromascope/relight/internal/cie"
	"github.com/chromascope/relight/internal/spectral"
	"github.com/chromascope/relight/internal/store"
)

// Run dispatches the parsed subcommand against the illuminant store.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	st := store.New(config.DBPath)
	defer st.Close()

	switch config.Command {
	case CommandList:
		return list(ctx, st)
	case CommandAdd:
		return add(ctx, st, config, logger)
	case CommandGet:
		return get(ctx, st, config)
	case CommandUpdate:
		return update(ctx, st, config, logger)
	case CommandDelete:
		return del(ctx, st, config, logger)
	case CommandSeed:
		return seed(ctx, st, logger)
	}
	return fmt.Errorf("unknown command '%s'", config.Command)
}

func list(ctx context.Context, st *store.Store) error {
	records, err := st.List(ctx)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("store is empty")
		return nil
	}

	fmt.Printf("%-20s %8s %-20s %-20s\n", "NAME", "SAMPLES", "CREATED", "UPDATED")
	for _, rec := range records {
		fmt.Printf("%-20s %8d %-20s %-20s\n",
			rec.Name, rec.Samples,
			rec.CreatedAt.Local().Format(time.DateTime),
			rec.UpdatedAt.Local().Format(time.DateTime))
	}
	return nil
}

func add(ctx context.Context, st *store.Store, config *Config, logger *slog.Logger) error {
	spd, err := readSPDFile(config.CSVPath)
	if err != nil {
		return err
	}

	if err = st.Add(ctx, config.Name, spd); err != nil {
		return err
	}

	logger.Info("added illuminant",
		slog.String("name", config.Name),
		slog.Int("samples", len(spd.Values)))
	return nil
}

func get(ctx context.Context, st *store.Store, config *Config) error {
	spd, err := st.Get(ctx, config.Name)
	if err != nil {
		return err
	}

	out := os.Stdout
	if config.OutPath != "" {
		f, err := os.Create(config.OutPath)
		if err != nil {
			return fmt.Errorf("creating '%s': %w", config.OutPath, err)
		}
		defer f.Close()
		out = f
	}
	return writeSPD(out, spd)
}

func update(ctx context.Context, st *store.Store, config *Config, logger *slog.Logger) error {
	spd, err := readSPDFile(config.CSVPath)
	if err != nil {
		return err
	}

	if err = st.Update(ctx, config.Name, spd); err != nil {
		return err
	}

	logger.Info("updated illuminant",
		slog.String("name", config.Name),
		slog.Int("samples", len(spd.Values)))
	return nil
}

func del(ctx context.Context, st *store.Store, config *Config, logger *slog.Logger) error {
	if err := st.Delete(ctx, config.Name); err != nil {
		return err
	}

	logger.Info("deleted illuminant", slog.String("name", config.Name))
	return nil
}

// seed installs the built-in presets, skipping names already present.
func seed(ctx context.Context, st *store.Store, logger *slog.Logger) error {
	presets := cie.Presets()

	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		err := st.Add(ctx, name, presets[name])

		var verr *store.ValidationError
		if errors.As(err, &verr) {
			logger.Info("preset already present, skipping", slog.String("name", name))
			continue
		}
		if err != nil {
			return fmt.Errorf("seeding '%s': %w", name, err)
		}
		logger.Info("installed preset", slog.String("name", name))
	}
	return nil
}

func readSPDFile(path string) (spectral.Sampled, error) {
	f, err := os.Open(path)
	if err != nil {
		return spectral.Sampled{}, fmt.Errorf("opening '%s': %w", path, err)
	}
	defer f.Close()

	spd, err := readSPD(f)
	if err != nil {
		return spectral.Sampled{}, fmt.Errorf("reading '%s': %w", path, err)
	}
	return spd, nil
}

// readSPD parses wavelength,power CSV rows. A single non-numeric header
// row is tolerated.
func readSPD(r io.Reader) (spectral.Sampled, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	records, err := cr.ReadAll()
	if err != nil {
		return spectral.Sampled{}, err
	}

	var spd spectral.Sampled
	for i, rec := range records {
		nm, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return spectral.Sampled{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		power, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return spectral.Sampled{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		spd.Wavelengths = append(spd.Wavelengths, nm)
		spd.Values = append(spd.Values, power)
	}

	if err := spd.Validate(); err != nil {
		return spectral.Sampled{}, err
	}
	return spd, nil
}

func writeSPD(w io.Writer, spd spectral.Sampled) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"wavelength_nm", "power"}); err != nil {
		return err
	}
	for i, nm := range spd.Wavelengths {
		err := cw.Write([]string{
			strconv.FormatFloat(nm, 'g', -1, 64),
			strconv.FormatFloat(spd.Values[i], 'g', -1, 64),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

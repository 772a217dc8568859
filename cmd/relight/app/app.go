package app

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/chromascope/relight/internal/cie"
	"github.com/chromascope/relight/internal/cubeio"
	"github.com/chromascope/relight/internal/pipeline"
	"github.com/chromascope/relight/internal/render"
	"github.com/chromascope/relight/internal/simulate"
	"github.com/chromascope/relight/internal/store"
)

// Run loads the cube and observer, resolves illuminants from the store,
// simulates and writes the output images.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	st := store.New(config.DBPath)
	defer st.Close()

	cube, err := cubeio.Load(config.CubePath)
	if err != nil {
		return err
	}

	logger.Info("loaded reflectance cube",
		slog.Group("cube",
			slog.Int("width", cube.Width),
			slog.Int("height", cube.Height),
			slog.Int("bands", cube.Bands()),
			slog.String("pixels", humanize.Comma(int64(cube.Pixels()))),
			slog.String("range", fmt.Sprintf("%g-%gnm", cube.Wavelengths.Min(), cube.Wavelengths.Max())),
		))

	cmf, err := cie.Observer1931()
	if err != nil {
		return fmt.Errorf("loading standard observer: %w", err)
	}

	var opts []func(*simulate.Orchestrator)
	if config.Workers > 0 {
		opts = append(opts, simulate.WithWorkers(config.Workers))
	}

	orch := simulate.New(st, cmf, logger, opts...)
	result, err := orch.Simulate(ctx, simulate.Request{
		Cube:        cube,
		Illuminants: config.Illuminants,
		Gamma:       config.Gamma,
		D:           config.D,
	})
	if err != nil {
		return err
	}

	if err = os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for _, name := range result.Order {
		if img, ok := result.Simple[name]; ok {
			if err = writeImage(config, logger, name, "simple", img, result.White[name]); err != nil {
				return err
			}
		}
		if img, ok := result.Adapted[name]; ok {
			if err = writeImage(config, logger, name, "adapted", img, result.White[name]); err != nil {
				return err
			}
		}
		if ferr, ok := result.Failed[name]; ok {
			logger.Warn("illuminant incomplete",
				slog.String("illuminant", name),
				slog.String("error", ferr.Error()))
		}
	}

	if len(result.Failed) == len(result.Order) {
		return fmt.Errorf("all %d illuminants failed", len(result.Order))
	}
	return nil
}

func writeImage(config *Config, logger *slog.Logger, name, mode string, img *pipeline.Image, white pipeline.WhitePoint) error {
	var out image.Image
	var err error
	if config.NoAnnotations {
		out = render.ToRGBA(img)
	} else {
		out, err = render.Annotate(img, render.Annotation{
			Illuminant: name,
			Gamma:      config.Gamma,
			D:          config.D,
			White:      white,
			Adapted:    mode == "adapted",
		})
		if err != nil {
			return fmt.Errorf("annotating %s image for '%s': %w", mode, name, err)
		}
	}

	path := filepath.Join(config.OutputDir, fmt.Sprintf("%s%s_%s.%s", config.Prefix, name, mode, config.Format))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating '%s': %w", path, err)
	}

	if err = render.Write(f, out, config.Format); err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding '%s': %w", path, err)
	}
	if err = f.Close(); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	logger.Info("wrote image",
		slog.Group("image",
			slog.String("destination", path),
			slog.String("illuminant", name),
			slog.String("mode", mode),
			slog.String("size", humanize.Bytes(uint64(info.Size()))),
		))
	return nil
}

// Package simulate drives the spectral-to-color pipeline for a batch of
// illuminants and assembles the unadapted and chromatically adapted output
// images.
package simulate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chromascope/relight/internal/cie"
	"github.com/chromascope/relight/internal/pipeline"
	"github.com/chromascope/relight/internal/spectral"
)

const defaultWorkers = 4

// IlluminantSource resolves illuminant names to spectral power
// distributions. *store.Store satisfies it.
type IlluminantSource interface {
	Get(ctx context.Context, name string) (spectral.Sampled, error)
}

// Request describes one simulation call.
type Request struct {
	Cube        *spectral.Cube
	Illuminants []string // caller order is preserved in Result.Order
	Gamma       float64  // display gamma exponent, typically 2.2-2.4
	D           float64  // degree of chromatic adaptation in [0, 1]
}

// Result holds the output images keyed by illuminant name. An illuminant
// whose adapted image failed still contributes its simple image; the
// failure is recorded in Failed under the same key.
type Result struct {
	Order   []string
	Simple  map[string]*pipeline.Image
	Adapted map[string]*pipeline.Image
	White   map[string]pipeline.WhitePoint
	Failed  map[string]error
}

// WithWorkers sets the number of concurrent per-illuminant workers.
func WithWorkers(n int) func(*Orchestrator) {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// Orchestrator resamples all inputs onto the working grid and runs the
// tristimulus, adaptation and encoding stages per illuminant.
type Orchestrator struct {
	source  IlluminantSource
	cmf     *cie.CMF
	logger  *slog.Logger
	workers int
}

// New creates an Orchestrator reading SPDs from source and integrating with
// the given observer.
func New(source IlluminantSource, cmf *cie.CMF, logger *slog.Logger, options ...func(*Orchestrator)) *Orchestrator {
	o := Orchestrator{
		source:  source,
		cmf:     cmf,
		logger:  logger,
		workers: defaultWorkers,
	}

	for _, option := range options {
		option(&o)
	}

	return &o
}

// illuminantJob carries one resolved, resampled SPD through the workers.
type illuminantJob struct {
	name string
	spd  []float64
}

type illuminantOutput struct {
	name    string
	simple  *pipeline.Image
	adapted *pipeline.Image
	white   pipeline.WhitePoint
	err     error
}

// Simulate runs the full pipeline for every requested illuminant.
//
// The cube axis must span the 400-780 nm working range and every name must
// resolve against the source; either failure aborts the call with no
// partial result. After that point illuminants are isolated: a failure in
// one (for example a degenerate white point during adaptation) is recorded
// in Result.Failed and does not disturb its siblings, and a failed
// adaptation never suppresses that illuminant's simple image.
func (o *Orchestrator) Simulate(ctx context.Context, req Request) (*Result, error) {
	if len(req.Illuminants) == 0 {
		return nil, fmt.Errorf("no illuminants requested")
	}
	if req.Gamma <= 0 {
		return nil, fmt.Errorf("gamma must be positive, got %g", req.Gamma)
	}
	if req.D < 0 || req.D > 1 {
		return nil, fmt.Errorf("adaptation degree %g outside [0, 1]", req.D)
	}
	if err := req.Cube.Validate(); err != nil {
		return nil, fmt.Errorf("validating cube: %w", err)
	}

	grid := spectral.Grid()
	if err := req.Cube.Wavelengths.CheckCovers(grid); err != nil {
		return nil, err
	}

	// Resolve every SPD before any computation so a missing name cannot
	// produce a partial result.
	spds := make(map[string][]float64, len(req.Illuminants))
	for _, name := range req.Illuminants {
		if _, ok := spds[name]; ok {
			continue
		}
		spd, err := o.source.Get(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolving illuminant: %w", err)
		}
		resampled, err := spectral.Resample(spd, grid)
		if err != nil {
			return nil, fmt.Errorf("resampling illuminant '%s': %w", name, err)
		}
		spds[name] = resampled.Values
	}

	cube, err := spectral.ResampleCube(req.Cube, grid)
	if err != nil {
		return nil, err
	}
	cmf, err := o.cmf.Resample(grid)
	if err != nil {
		return nil, fmt.Errorf("resampling observer: %w", err)
	}

	o.logger.Info("inputs resampled onto working grid",
		slog.Int("bands", len(grid)),
		slog.Int("pixels", cube.Pixels()),
		slog.Int("illuminants", len(spds)))

	jobs := make(chan illuminantJob)
	outputs := make(chan illuminantOutput, len(spds))

	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				outputs <- o.process(cube, cmf, job, req.Gamma, req.D)
			}
		}()
	}

	// Feed jobs; the batch as a whole is cancelable, individual
	// illuminants are not.
	var cancelErr error
feed:
	for name := range spds {
		if cancelErr = ctx.Err(); cancelErr != nil {
			break
		}
		select {
		case jobs <- illuminantJob{name: name, spd: spds[name]}:
		case <-ctx.Done():
			cancelErr = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(outputs)

	if cancelErr != nil {
		return nil, fmt.Errorf("simulation canceled: %w", cancelErr)
	}

	result := &Result{
		Order:   append([]string(nil), req.Illuminants...),
		Simple:  make(map[string]*pipeline.Image, len(spds)),
		Adapted: make(map[string]*pipeline.Image, len(spds)),
		White:   make(map[string]pipeline.WhitePoint, len(spds)),
		Failed:  make(map[string]error),
	}
	for out := range outputs {
		if out.simple != nil {
			result.Simple[out.name] = out.simple
			result.White[out.name] = out.white
		}
		if out.adapted != nil {
			result.Adapted[out.name] = out.adapted
		}
		if out.err != nil {
			result.Failed[out.name] = out.err
			o.logger.Warn("illuminant failed",
				slog.String("illuminant", out.name),
				slog.String("error", out.err.Error()))
		}
	}
	return result, nil
}

// process runs one illuminant through the pipeline. The cube and observer
// are shared read-only between workers and never mutated.
func (o *Orchestrator) process(cube *spectral.Cube, cmf *cie.CMF, job illuminantJob, gamma, d float64) illuminantOutput {
	out := illuminantOutput{name: job.name}

	xyz, white, err := pipeline.Tristimulus(cube, job.spd, cmf)
	if err != nil {
		out.err = fmt.Errorf("integrating tristimulus: %w", err)
		return out
	}
	out.white = white

	if out.simple, err = pipeline.Encode(xyz, gamma); err != nil {
		out.err = fmt.Errorf("encoding image: %w", err)
		return out
	}

	adapted, err := pipeline.Adapt(xyz, white, d)
	if err != nil {
		out.err = fmt.Errorf("adapting to white point: %w", err)
		return out
	}
	if out.adapted, err = pipeline.Encode(adapted, gamma); err != nil {
		out.err = fmt.Errorf("encoding adapted image: %w", err)
	}
	return out
}

package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chromascope/relight/internal/render"
)

const (
	defaultGamma      = 2.2
	defaultAdaptation = 1.0
)

// RunFile is the optional YAML description of a simulation batch. Values
// given here override the flag defaults.
type RunFile struct {
	Illuminants []string `yaml:"illuminants"`
	Gamma       float64  `yaml:"gamma"`
	Adaptation  float64  `yaml:"adaptation"`
	Format      string   `yaml:"format"`
	Prefix      string   `yaml:"prefix"`
}

// Config holds the simulation CLI configuration.
type Config struct {
	CubePath      string
	DBPath        string
	OutputDir     string
	Prefix        string // output files are named <prefix><illuminant>_<mode>.<format>
	Illuminants   []string
	Gamma         float64
	D             float64
	Format        render.Format
	Workers       int
	NoAnnotations bool
	Verbose       bool
}

// NewConfigFromCLI parses flags and, if given, the YAML run file.
func NewConfigFromCLI() (*Config, error) {
	c := Config{
		Gamma:  defaultGamma,
		D:      defaultAdaptation,
		Format: render.FormatPNG,
	}

	var illuminants, imageFormat, runPath string
	flag.StringVar(&c.CubePath, "cube", "", "Path to the reflectance cube data file (expects a .yaml sidecar header)")
	flag.StringVar(&c.DBPath, "db", "", "Path to the illuminant database file")
	flag.StringVar(&c.OutputDir, "o", ".", "Directory for output images")
	flag.StringVar(&c.Prefix, "prefix", "", "Prefix for output file names")
	flag.StringVar(&illuminants, "i", "", "Comma-separated illuminant names")
	flag.StringVar(&runPath, "c", "", "Path to a YAML run file")
	flag.Float64Var(&c.Gamma, "gamma", defaultGamma, "Display gamma exponent")
	flag.Float64Var(&c.D, "d", defaultAdaptation, "Degree of chromatic adaptation [0-1]")
	flag.StringVar(&imageFormat, "f", string(render.FormatPNG), "Output image format. [png, jpeg]")
	flag.IntVar(&c.Workers, "workers", 0, "Concurrent illuminant workers (0 for default)")
	flag.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable the info bar under each image")
	flag.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	flag.Parse()

	if illuminants != "" {
		for _, name := range strings.Split(illuminants, ",") {
			if name = strings.TrimSpace(name); name != "" {
				c.Illuminants = append(c.Illuminants, name)
			}
		}
	}

	if runPath != "" {
		if err := c.applyRunFile(runPath, &imageFormat); err != nil {
			return nil, err
		}
	}

	var err error
	if c.CubePath == "" {
		err = errors.New("cube path is required")
	} else if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if len(c.Illuminants) == 0 {
		err = errors.New("at least one illuminant is required (-i or a run file)")
	} else if c.Gamma <= 0 {
		err = errors.New("gamma must be positive")
	} else if c.D < 0 || c.D > 1 {
		err = errors.New("adaptation degree must be within [0, 1]")
	}
	if err == nil {
		c.Format, err = render.ParseFormat(strings.ToLower(imageFormat))
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyRunFile(path string, imageFormat *string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading run file: %w", err)
	}

	var run RunFile
	if err = yaml.Unmarshal(data, &run); err != nil {
		return fmt.Errorf("parsing run file: %w", err)
	}

	if len(run.Illuminants) > 0 {
		c.Illuminants = run.Illuminants
	}
	if run.Gamma != 0 {
		c.Gamma = run.Gamma
	}
	if run.Adaptation != 0 {
		c.D = run.Adaptation
	}
	if run.Format != "" {
		*imageFormat = run.Format
	}
	if run.Prefix != "" {
		c.Prefix = run.Prefix
	}
	return nil
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/befsim/internal/dynamo"
	"github.com/san-kum/befsim/internal/foodweb"
	"github.com/san-kum/befsim/internal/integrators"
	"github.com/san-kum/befsim/internal/params"
)

const (
	DefaultSpecies     = 10
	DefaultConnectance = 0.15
	DefaultTolerance   = 0.05
	DefaultMaxAttempts = 10000
	DefaultStop        = 500.0
	DefaultSteps       = 500
	DefaultIntegrator  = "rk4"
	DefaultLast        = 100
)

// absTolFraction of the extinction threshold is the default absolute error
// floor of adaptive steps.
const absTolFraction = 0.01

type Config struct {
	Network    NetworkConfig    `yaml:"network"`
	Model      params.Options   `yaml:"model"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// NetworkConfig describes where the food web comes from: an inline matrix,
// a CSV file, or the niche model.
type NetworkConfig struct {
	Species     int     `yaml:"species"`
	Connectance float64 `yaml:"connectance"`
	Links       int     `yaml:"links,omitempty"`
	Tolerance   float64 `yaml:"tolerance"`
	TolType     string  `yaml:"toltype"`
	MaxAttempts int     `yaml:"max_attempts"`
	Acyclic     bool    `yaml:"acyclic"`
	Matrix      [][]int `yaml:"matrix,omitempty"`
	File        string  `yaml:"file,omitempty"`
}

type SimulationConfig struct {
	Start      float64 `yaml:"start"`
	Stop       float64 `yaml:"stop"`
	Steps      int     `yaml:"steps"`
	Integrator string  `yaml:"integrator"`
	MaxDt      float64 `yaml:"max_dt"`
	Adaptive   bool    `yaml:"adaptive"`
	Tolerance  float64 `yaml:"tolerance"`
	// AbsTolerance is the absolute error floor of adaptive steps. Zero
	// derives it from the extinction threshold.
	AbsTolerance float64   `yaml:"abs_tolerance"`
	Biomass      []float64 `yaml:"biomass,omitempty"`
	Seed         int64     `yaml:"seed"`
	// Last is the number of final checkpoints summarised.
	Last int `yaml:"last"`
}

func DefaultConfig() *Config {
	dc := dynamo.DefaultConfig()
	return &Config{
		Network: NetworkConfig{
			Species:     DefaultSpecies,
			Connectance: DefaultConnectance,
			Tolerance:   DefaultTolerance,
			TolType:     string(foodweb.ToleranceAbsolute),
			MaxAttempts: DefaultMaxAttempts,
			Acyclic:     true,
		},
		Model: params.DefaultOptions(),
		Simulation: SimulationConfig{
			Stop:       DefaultStop,
			Steps:      DefaultSteps,
			Integrator: DefaultIntegrator,
			MaxDt:      dc.MaxDt,
			Tolerance:  dc.Tolerance,
			Seed:       1,
			Last:       DefaultLast,
		},
	}
}

// Decode reads YAML over the defaults. Unknown keys are an error.
func Decode(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(data))
}

func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Encode(f, cfg)
}

func Encode(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// Clone deep-copies c through its YAML form.
func (c *Config) Clone() *Config {
	data, err := yaml.Marshal(c)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	out := &Config{}
	if err := yaml.Unmarshal(data, out); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return out
}

func (c *Config) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return err
	}
	s := c.Simulation
	if _, err := integrators.Get(s.Integrator); err != nil {
		return err
	}
	if s.Steps < 1 {
		return dynamo.Paramf("steps", "need at least one checkpoint, got %d", s.Steps)
	}
	if s.Stop < s.Start {
		return dynamo.Paramf("stop", "end time %g before start %g", s.Stop, s.Start)
	}
	if !(s.MaxDt > 0) {
		return dynamo.Paramf("max_dt", "must be positive, got %g", s.MaxDt)
	}
	if s.Tolerance < 0 || s.AbsTolerance < 0 {
		return dynamo.Paramf("tolerance", "must be non-negative")
	}
	n := c.Network
	if n.Matrix == nil && n.File == "" {
		if n.TolType != string(foodweb.ToleranceAbsolute) && n.TolType != string(foodweb.ToleranceRelative) {
			return dynamo.Paramf("toltype", "must be abs or rel, got %q", n.TolType)
		}
		if n.Species < 2 {
			return dynamo.Paramf("species", "need at least 2 species, got %d", n.Species)
		}
	}
	return nil
}

// FoodWeb resolves the configured network. Random webs draw from rng.
func (c *Config) FoodWeb(rng *rand.Rand) (*foodweb.FoodWeb, error) {
	n := c.Network
	switch {
	case n.Matrix != nil:
		a := foodweb.Matrix(n.Matrix).Clone()
		if err := foodweb.Check(a); err != nil {
			return nil, err
		}
		return &foodweb.FoodWeb{A: a}, nil
	case n.File != "":
		f, err := os.Open(n.File)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		a, err := foodweb.ReadCSV(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.File, err)
		}
		return &foodweb.FoodWeb{A: a}, nil
	}

	target := foodweb.ConnectanceTarget(n.Connectance)
	if n.Links > 0 {
		target = foodweb.LinkTarget(n.Links)
	}
	return foodweb.NicheModel(rng, n.Species, target, foodweb.GenerateOptions{
		Tolerance:   n.Tolerance,
		Kind:        foodweb.ToleranceKind(n.TolType),
		MaxAttempts: n.MaxAttempts,
		Acyclic:     n.Acyclic,
	})
}

// InitialBiomass expands the configured biomass to s species. One value is
// shared by every species; none draws each from U(0, 1).
func (c *Config) InitialBiomass(rng *rand.Rand, s int) ([]float64, error) {
	b := c.Simulation.Biomass
	out := make([]float64, s)
	switch len(b) {
	case 0:
		for i := range out {
			out[i] = rng.Float64()
		}
	case 1:
		for i := range out {
			out[i] = b[0]
		}
	case s:
		copy(out, b)
	default:
		return nil, dynamo.Paramf("biomass", "length %d does not match %d species", len(b), s)
	}
	return out, nil
}

func (c *Config) DriverConfig() dynamo.Config {
	dc := dynamo.DefaultConfig()
	dc.MaxDt = c.Simulation.MaxDt
	dc.Adaptive = c.Simulation.Adaptive
	if c.Simulation.Tolerance > 0 {
		dc.Tolerance = c.Simulation.Tolerance
	}
	switch {
	case c.Simulation.AbsTolerance > 0:
		dc.AbsTolerance = c.Simulation.AbsTolerance
	case c.Model.ExtinctionThreshold > 0:
		dc.AbsTolerance = c.Model.ExtinctionThreshold * absTolFraction
	}
	return dc
}

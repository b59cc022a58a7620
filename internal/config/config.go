package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/ljsim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

// Argon constants used by the reference runs.
const (
	ElectronVolt = 1.60218e-19 // J

	DefaultSigma       = 3.4e-10             // m
	DefaultEpsilon     = 0.24 * ElectronVolt // J
	DefaultMass        = 6.63e-26            // kg
	DefaultDt          = 1e-15               // s
	DefaultSteps       = 10000
	DefaultReportEvery = 100
	DefaultInput       = "Ar_initial.txt"
)

var ErrUnknownParameter = errors.New("config: unknown parameter")

type Config struct {
	Name          string        `yaml:"name"`
	Input         string        `yaml:"input"`
	Integrator    string        `yaml:"integrator"`
	Sigma         float64       `yaml:"sigma"`
	Epsilon       float64       `yaml:"epsilon"`
	Mass          float64       `yaml:"mass"`
	Dt            float64       `yaml:"dt"`
	Steps         int           `yaml:"steps"`
	ReportEvery   int           `yaml:"report_every"`
	MinDistance   float64       `yaml:"min_distance"`
	Workers       int           `yaml:"workers"`
	ValidateState bool          `yaml:"validate_state"`
	Lattice       LatticeConfig `yaml:"lattice"`
}

// LatticeConfig controls generated initial conditions.
type LatticeConfig struct {
	Side    int     `yaml:"side"`
	Spacing float64 `yaml:"spacing"`
	Speed   float64 `yaml:"speed"`
	Seed    int64   `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:        "argon",
		Input:       DefaultInput,
		Integrator:  "verlet",
		Sigma:       DefaultSigma,
		Epsilon:     DefaultEpsilon,
		Mass:        DefaultMass,
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		ReportEvery: DefaultReportEvery,
		MinDistance: dynamo.DefaultMinDistance,
		Workers:     1,
		Lattice: LatticeConfig{
			Side:    6,
			Spacing: 1.12 * DefaultSigma,
			Speed:   300,
			Seed:    1,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params returns the immutable run constants.
func (c *Config) Params() dynamo.Params {
	return dynamo.Params{
		Sigma:         c.Sigma,
		Epsilon:       c.Epsilon,
		Mass:          c.Mass,
		Dt:            c.Dt,
		Steps:         c.Steps,
		ReportEvery:   c.ReportEvery,
		MinDistance:   c.MinDistance,
		Workers:       c.Workers,
		ValidateState: c.ValidateState,
	}
}

func (c *Config) Validate() error {
	return c.Params().Validate()
}

// Tunable lists the parameter names accepted by Set.
var Tunable = []string{"sigma", "epsilon", "mass", "dt", "min_distance", "steps", "report_every", "workers"}

// Set assigns a numeric parameter by its yaml name. Integer parameters are
// truncated.
func (c *Config) Set(name string, v float64) error {
	switch name {
	case "sigma":
		c.Sigma = v
	case "epsilon":
		c.Epsilon = v
	case "mass":
		c.Mass = v
	case "dt":
		c.Dt = v
	case "min_distance":
		c.MinDistance = v
	case "steps":
		c.Steps = int(v)
	case "report_every":
		c.ReportEvery = int(v)
	case "workers":
		c.Workers = int(v)
	default:
		return fmt.Errorf("%w: unknown parameter %q (tunable: %v)", ErrUnknownParameter, name, Tunable)
	}
	return nil
}

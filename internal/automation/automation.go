package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/experiment"
	"github.com/san-kum/ljsim/internal/loader"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario. Settings are layered as in
// the run command: preset, then config file, then the fields below.
type ScenarioStep struct {
	Preset     string             `yaml:"preset"`
	Config     string             `yaml:"config"`
	Input      string             `yaml:"input"`
	Lattice    bool               `yaml:"lattice"`
	Integrator string             `yaml:"integrator"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// Resolve builds the run configuration of the step.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	name := s.Preset
	if name == "" {
		name = "argon"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}

	if s.Config != "" {
		var err error
		if cfg, err = config.Load(s.Config); err != nil {
			return nil, err
		}
	}
	if s.Input != "" {
		cfg.Input = s.Input
	}
	if s.Lattice {
		cfg.Input = ""
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}

	keys := make([]string, 0, len(s.Params))
	for k := range s.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := cfg.Set(k, s.Params[k]); err != nil {
			return nil, err
		}
	}

	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	return cfg, cfg.Validate()
}

type StepResult struct {
	Step   ScenarioStep
	Config *config.Config
	Result *dynamo.Result
}

// RunScenario executes all steps in a scenario, logging progress to w. It
// stops at the first failing step and returns the steps completed so far.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, w io.Writer) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		fmt.Fprintf(w, "running step %d/%d: %s (%s, %d steps)\n", i+1, len(scenario.Steps), cfg.Name, cfg.Integrator, cfg.Steps)

		data, err := experiment.LoadInitial(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.New(registry, cfg, data)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Step: step, Config: cfg, Result: result})
	}

	return results, nil
}

// ParameterSweep runs one simulation per evenly spaced value of a single
// config parameter.
type ParameterSweep struct {
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// Values returns the swept parameter values.
func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps < 2 {
		return []float64{s.ParamMin}
	}
	step := (s.ParamMax - s.ParamMin) / float64(s.NumSteps-1)
	vals := make([]float64, s.NumSteps)
	for i := range vals {
		vals[i] = s.ParamMin + float64(i)*step
	}
	vals[len(vals)-1] = s.ParamMax
	return vals
}

// SweepResult holds the run summary at one parameter value.
type SweepResult struct {
	ParamValue      float64
	EnergyDrift     float64
	MaxDrift        float64
	MeanTemperature float64
	GuardHits       float64
	StepsTaken      int
	Err             error
}

// RunSweep executes a parameter sweep on copies of base. A failing run is
// recorded in its SweepResult and does not stop the sweep.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, base *config.Config, data *loader.Data, w io.Writer) ([]SweepResult, error) {
	vals := sweep.Values()
	results := make([]SweepResult, 0, len(vals))

	for i, v := range vals {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		cfg := *base
		if err := cfg.Set(sweep.ParamName, v); err != nil {
			return results, err
		}

		res := SweepResult{ParamValue: v}
		exp, err := experiment.New(registry, &cfg, data)
		if err == nil {
			var result *dynamo.Result
			result, err = exp.Run(ctx)
			if result != nil {
				res.EnergyDrift = result.EnergyDrift
				res.MaxDrift = result.Metrics["energy_drift"]
				res.MeanTemperature = result.Metrics["mean_temperature"]
				res.GuardHits = result.Metrics["guard_hits"]
				res.StepsTaken = result.StepsTaken
			}
		}
		res.Err = err
		results = append(results, res)

		fmt.Fprintf(w, "sweep %d/%d: %s=%.4g\n", i+1, len(vals), sweep.ParamName, v)
	}

	return results, nil
}

// MonteCarloConfig defines randomly perturbed repeats of one run.
type MonteCarloConfig struct {
	// Perturbation is the largest displacement per coordinate, in m.
	Perturbation float64
	NumTrials    int
	Seed         int64
}

// MonteCarloResult holds the outcome of one trial.
type MonteCarloResult struct {
	TrialID     int
	EnergyDrift float64
	GuardHits   float64
	// Stable is false when the state went non-finite or a pair came within
	// the minimum distance.
	Stable bool
}

// RunMonteCarlo executes trials with uniformly perturbed initial positions.
// State validation is forced on so diverging trials stop early.
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, registry *experiment.Registry, base *config.Config, data *loader.Data, w io.Writer) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, mc.NumTrials)

	rng := rand.New(rand.NewSource(mc.Seed))
	if mc.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	cfg := *base
	cfg.ValidateState = true

	for trial := 0; trial < mc.NumTrials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		perturbed := &loader.Data{
			Positions:  make([]r2.Vec, len(data.Positions)),
			Velocities: data.Velocities,
		}
		for i, p := range data.Positions {
			perturbed.Positions[i] = r2.Add(p, r2.Vec{
				X: (rng.Float64() - 0.5) * 2 * mc.Perturbation,
				Y: (rng.Float64() - 0.5) * 2 * mc.Perturbation,
			})
		}

		exp, err := experiment.New(registry, &cfg, perturbed)
		if err != nil {
			return results, err
		}

		result, err := exp.Run(ctx)
		if err != nil && !isSimulationError(err) {
			return results, err
		}

		res := MonteCarloResult{TrialID: trial, Stable: err == nil}
		if result != nil {
			res.EnergyDrift = result.EnergyDrift
			res.GuardHits = result.Metrics["guard_hits"]
			if res.GuardHits > 0 {
				res.Stable = false
			}
		}
		results = append(results, res)

		if (trial+1)%10 == 0 {
			fmt.Fprintf(w, "monte carlo: %d/%d trials complete\n", trial+1, mc.NumTrials)
		}
	}

	return results, nil
}

func isSimulationError(err error) bool {
	var simErr *dynamo.SimulationError
	return errors.As(err, &simErr)
}

package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/loader"
	"github.com/san-kum/ljsim/internal/sim"
)

// DefaultForceField is the interaction every experiment uses.
const DefaultForceField = "lennard-jones"

// Experiment is one configured run: a system built from initial data, with
// its force field, integrator and metrics resolved from a Registry.
type Experiment struct {
	cfg        *config.Config
	sys        *dynamo.System
	ff         dynamo.ForceField
	integrator dynamo.Integrator
	simulator  *sim.Simulator
}

// LoadInitial reads cfg.Input, or generates a lattice from cfg.Lattice when
// no input file is configured.
func LoadInitial(cfg *config.Config) (*loader.Data, error) {
	if cfg.Input == "" {
		l := cfg.Lattice
		if l.Side < 2 {
			return nil, fmt.Errorf("%w: lattice side must be at least 2, got %d", dynamo.ErrParameterBounds, l.Side)
		}
		return loader.Lattice(l.Side, l.Spacing, l.Speed, l.Seed), nil
	}
	return loader.Load(cfg.Input)
}

// New validates cfg, builds the system from data and removes its
// center-of-mass velocity.
func New(r *Registry, cfg *config.Config, data *loader.Data) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := cfg.Params()
	sys, err := dynamo.NewSystem(data.Positions, data.Velocities, p)
	if err != nil {
		return nil, err
	}
	if err := sim.Validate(sys); err != nil {
		return nil, err
	}
	sys.RemoveCenterOfMassVelocity()

	ff, err := r.GetForceField(DefaultForceField, p)
	if err != nil {
		return nil, err
	}
	integrator, err := r.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	simulator := sim.New(ff, integrator)
	for _, m := range r.DefaultMetrics() {
		simulator.AddMetric(m)
	}

	return &Experiment{
		cfg:        cfg,
		sys:        sys,
		ff:         ff,
		integrator: integrator,
		simulator:  simulator,
	}, nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	return e.simulator.Run(ctx, e.sys)
}

// Stepper returns a step-at-a-time driver over the experiment's system, for
// callers that pace the run themselves.
func (e *Experiment) Stepper() *sim.Stepper {
	return sim.NewStepper(e.ff, e.integrator, e.sys)
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

func (e *Experiment) System() *dynamo.System { return e.sys }

func (e *Experiment) ForceField() dynamo.ForceField { return e.ff }

func (e *Experiment) Integrator() dynamo.Integrator { return e.integrator }

func (e *Experiment) Config() *config.Config { return e.cfg }

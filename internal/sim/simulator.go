package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/metrics"
	"gonum.org/v1/gonum/spatial/r2"
)

type Simulator struct {
	ff         dynamo.ForceField
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
	reporters  []dynamo.Observer
}

func New(ff dynamo.ForceField, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		ff:         ff,
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
		reporters:  make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// AddReporter registers an observer that only sees every
// Params.ReportEvery-th sample, starting with step 0.
func (s *Simulator) AddReporter(o dynamo.Observer) { s.reporters = append(s.reporters, o) }

// Run advances sys in place for sys.Params.Steps steps. Center-of-mass
// removal is the caller's job and must happen before Run.
func (s *Simulator) Run(ctx context.Context, sys *dynamo.System) (*dynamo.Result, error) {
	if err := Validate(sys); err != nil {
		return nil, err
	}

	steps := sys.Params.Steps
	result := &dynamo.Result{
		Samples: make([]dynamo.Sample, 0, steps),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	st := NewStepper(s.ff, s.integrator, sys)

	var runErr error
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		sample, err := st.Next()
		if err != nil {
			runErr = err
			break
		}

		result.Samples = append(result.Samples, sample)
		result.StepsTaken++

		for _, m := range s.metrics {
			m.Observe(sample, sys)
		}
		for _, obs := range s.observers {
			obs.OnSample(sample, sys)
		}
		if sample.Step%sys.Params.ReportEvery == 0 {
			for _, r := range s.reporters {
				r.OnSample(sample, sys)
			}
		}
	}

	if n := len(result.Samples); n > 0 {
		first, last := result.Samples[0].Total, result.Samples[n-1].Total
		if first != 0 {
			result.EnergyDrift = math.Abs(last-first) / math.Abs(first)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	result.Final = make([]dynamo.Particle, sys.N())
	copy(result.Final, sys.Particles)

	return result, runErr
}

// Validate checks that sys can be simulated.
func Validate(sys *dynamo.System) error {
	if err := sys.Params.Validate(); err != nil {
		return err
	}
	if n := sys.N(); n < 2 {
		return fmt.Errorf("%w: got %d", dynamo.ErrDegenerateSystem, n)
	}
	return nil
}

// Stepper advances a system one step at a time, carrying the forces of the
// current positions between steps.
type Stepper struct {
	ff         dynamo.ForceField
	integrator dynamo.Integrator
	sys        *dynamo.System
	forces     []r2.Vec
	step       int
}

func NewStepper(ff dynamo.ForceField, integrator dynamo.Integrator, sys *dynamo.System) *Stepper {
	return &Stepper{
		ff:         ff,
		integrator: integrator,
		sys:        sys,
		forces:     ff.Forces(sys.Positions()),
	}
}

// Next performs one integration step and returns the diagnostics of the
// resulting state.
func (st *Stepper) Next() (dynamo.Sample, error) {
	st.forces = st.integrator.Step(st.sys, st.ff, st.forces)

	step := st.step
	st.step++

	if st.sys.Params.ValidateState && !st.sys.IsValid() {
		return dynamo.Sample{}, &dynamo.SimulationError{
			Step:    step,
			Time:    float64(step) * st.sys.Params.Dt,
			Wrapped: dynamo.ErrInvalidState,
		}
	}

	return metrics.Diagnose(st.sys, st.ff, step), nil
}

func (st *Stepper) Steps() int             { return st.step }
func (st *Stepper) System() *dynamo.System { return st.sys }

package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/integrators"
	"github.com/san-kum/ljsim/internal/metrics"
	"github.com/san-kum/ljsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

func argonParams(steps int) dynamo.Params {
	return dynamo.Params{
		Sigma:       3.4e-10,
		Epsilon:     0.24 * 1.60218e-19,
		Mass:        6.63e-26,
		Dt:          1e-15,
		Steps:       steps,
		ReportEvery: 100,
		MinDistance: dynamo.DefaultMinDistance,
	}
}

// smallCrystal is a 4x4 lattice near the pair minimum with a deterministic
// velocity pattern.
func smallCrystal(p dynamo.Params) *dynamo.System {
	spacing := 1.12 * p.Sigma
	sys := &dynamo.System{Params: p}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			sys.Particles = append(sys.Particles, dynamo.Particle{
				Pos: r2.Vec{X: float64(i) * spacing, Y: float64(j) * spacing},
				Vel: r2.Vec{X: float64((i*5+j*3)%7-3) * 30, Y: float64((i*3+j*7)%5-2) * 30},
			})
		}
	}
	sys.RemoveCenterOfMassVelocity()
	return sys
}

type recorder struct {
	steps []int
}

func (r *recorder) OnSample(s dynamo.Sample, sys *dynamo.System) {
	r.steps = append(r.steps, s.Step)
}

type countingMetric struct {
	count int
}

func (c *countingMetric) Name() string                                { return "count" }
func (c *countingMetric) Observe(s dynamo.Sample, sys *dynamo.System) { c.count++ }
func (c *countingMetric) Value() float64                              { return float64(c.count) }
func (c *countingMetric) Reset()                                      { c.count = 0 }

func TestSimulatorRun(t *testing.T) {
	p := argonParams(1000)
	sys := smallCrystal(p)
	s := New(physics.NewLennardJones(p), integrators.NewVelocityVerlet())

	result, err := s.Run(context.Background(), sys)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Samples) != 1000 || result.StepsTaken != 1000 {
		t.Errorf("expected 1000 samples, got %d (%d steps)", len(result.Samples), result.StepsTaken)
	}

	for i, smp := range result.Samples {
		if smp.Step != i {
			t.Fatalf("sample %d has step %d", i, smp.Step)
		}
		if smp.Time != float64(i)*p.Dt {
			t.Fatalf("sample %d has time %e", i, smp.Time)
		}
	}

	if result.EnergyDrift > 1e-3 {
		t.Errorf("energy drift too large for velocity-Verlet: %e", result.EnergyDrift)
	}

	if len(result.Final) != sys.N() || result.Final[0] != sys.Particles[0] {
		t.Error("final state does not match the system")
	}

	momentum := metrics.Momentum(sys)
	if r2.Norm(momentum) > 1e-30 {
		t.Errorf("momentum drifted: %v", momentum)
	}
}

func TestSimulatorReportCadence(t *testing.T) {
	p := argonParams(350)
	sys := smallCrystal(p)
	s := New(physics.NewLennardJones(p), integrators.NewVelocityVerlet())

	every := &recorder{}
	reports := &recorder{}
	s.AddObserver(every)
	s.AddReporter(reports)

	if _, err := s.Run(context.Background(), sys); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(every.steps) != 350 {
		t.Errorf("expected 350 observations, got %d", len(every.steps))
	}
	want := []int{0, 100, 200, 300}
	if len(reports.steps) != len(want) {
		t.Fatalf("expected reports at %v, got %v", want, reports.steps)
	}
	for i := range want {
		if reports.steps[i] != want[i] {
			t.Errorf("expected reports at %v, got %v", want, reports.steps)
		}
	}
}

func TestSimulatorMetrics(t *testing.T) {
	p := argonParams(10)
	s := New(physics.NewLennardJones(p), integrators.NewVelocityVerlet())

	metric := &countingMetric{}
	s.AddMetric(metric)
	s.AddMetric(metrics.NewEnergyDrift())

	result, err := s.Run(context.Background(), smallCrystal(p))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Metrics["count"] != 10 {
		t.Errorf("expected 10 observations, got %v", result.Metrics["count"])
	}
	if _, ok := result.Metrics["energy_drift"]; !ok {
		t.Error("energy_drift metric not found in result")
	}

	// metrics are reset between runs
	if _, err := s.Run(context.Background(), smallCrystal(p)); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if metric.count != 10 {
		t.Errorf("expected metric reset between runs, got %d", metric.count)
	}
}

func TestSimulatorInvalidSystem(t *testing.T) {
	s := New(physics.NewLennardJones(argonParams(10)), integrators.NewVelocityVerlet())

	tests := []struct {
		name string
		sys  *dynamo.System
		want error
	}{
		{"zero dt", func() *dynamo.System {
			p := argonParams(10)
			p.Dt = 0
			return smallCrystal(p)
		}(), dynamo.ErrParameterBounds},
		{"zero steps", smallCrystal(argonParams(0)), dynamo.ErrParameterBounds},
		{"single particle", &dynamo.System{
			Params:    argonParams(10),
			Particles: []dynamo.Particle{{}},
		}, dynamo.ErrDegenerateSystem},
		{"empty", &dynamo.System{Params: argonParams(10)}, dynamo.ErrDegenerateSystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), tt.sys)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSimulatorCanceled(t *testing.T) {
	p := argonParams(1000)
	s := New(physics.NewLennardJones(p), integrators.NewVelocityVerlet())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, smallCrystal(p))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Errorf("expected empty partial result, got %+v", result)
	}
}

type blowUp struct{}

func (blowUp) Forces(pos []r2.Vec) []r2.Vec {
	f := make([]r2.Vec, len(pos))
	for i := range f {
		f[i] = r2.Vec{X: math.Inf(1)}
	}
	return f
}

func (blowUp) Potential(pos []r2.Vec) float64 { return 0 }

func TestSimulatorValidateState(t *testing.T) {
	p := argonParams(10)
	p.ValidateState = true
	s := New(blowUp{}, integrators.NewVelocityVerlet())

	result, err := s.Run(context.Background(), smallCrystal(p))
	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
	if simErr.Step != 0 || result.StepsTaken != 0 {
		t.Errorf("expected failure at step 0, got step %d after %d steps", simErr.Step, result.StepsTaken)
	}
}

func TestStepper(t *testing.T) {
	p := argonParams(5)
	lj := physics.NewLennardJones(p)
	sys := smallCrystal(p)
	ref := sys.Clone()

	st := NewStepper(lj, integrators.NewVelocityVerlet(), sys)
	for i := 0; i < 5; i++ {
		s, err := st.Next()
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if s.Step != i {
			t.Errorf("expected step %d, got %d", i, s.Step)
		}
	}
	if st.Steps() != 5 {
		t.Errorf("expected 5 steps, got %d", st.Steps())
	}

	result, err := New(lj, integrators.NewVelocityVerlet()).Run(context.Background(), ref)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for i := range sys.Particles {
		if sys.Particles[i] != result.Final[i] {
			t.Fatalf("stepper and simulator disagree at particle %d", i)
		}
	}
}

package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Particle is a point particle. Identity is its index in System.Particles.
type Particle struct {
	Pos r2.Vec // m
	Vel r2.Vec // m/s
}

func (p Particle) IsValid() bool {
	for _, v := range [4]float64{p.Pos.X, p.Pos.Y, p.Vel.X, p.Vel.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Params holds the constants of a run. It is passed by value and never
// mutated once a run starts.
type Params struct {
	Sigma       float64 `json:"sigma"`   // LJ length scale, m
	Epsilon     float64 `json:"epsilon"` // LJ energy scale, J
	Mass        float64 `json:"mass"`    // uniform particle mass, kg
	Dt          float64 `json:"dt"`      // time step, s
	Steps       int     `json:"steps"`
	ReportEvery int     `json:"report_every"`
	// MinDistance is the pair separation at or below which a pair is skipped
	// by both force and potential evaluation.
	MinDistance   float64 `json:"min_distance"`
	Workers       int     `json:"workers"`
	ValidateState bool    `json:"validate_state"`
}

// DefaultMinDistance is 1 Å. It is comparable to σ for argon, so close
// approaches are zeroed rather than merely guarded against r = 0.
const DefaultMinDistance = 1e-10

func (p Params) Validate() error {
	switch {
	case p.Sigma <= 0:
		return fmt.Errorf("%w: sigma must be positive, got %g", ErrParameterBounds, p.Sigma)
	case p.Epsilon <= 0:
		return fmt.Errorf("%w: epsilon must be positive, got %g", ErrParameterBounds, p.Epsilon)
	case p.Mass <= 0:
		return fmt.Errorf("%w: mass must be positive, got %g", ErrParameterBounds, p.Mass)
	case p.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", ErrParameterBounds, p.Dt)
	case p.Steps <= 0:
		return fmt.Errorf("%w: steps must be positive, got %d", ErrParameterBounds, p.Steps)
	case p.ReportEvery <= 0:
		return fmt.Errorf("%w: report cadence must be positive, got %d", ErrParameterBounds, p.ReportEvery)
	case p.MinDistance < 0:
		return fmt.Errorf("%w: min distance must not be negative, got %g", ErrParameterBounds, p.MinDistance)
	}
	return nil
}

type ForceField interface {
	// Forces returns a freshly allocated slice with the net force on each
	// particle. It must not modify pos.
	Forces(pos []r2.Vec) []r2.Vec
	Potential(pos []r2.Vec) float64
}

type Integrator interface {
	// Step advances sys by sys.Params.Dt given forces at the current
	// positions, and returns the forces at the new positions.
	Step(sys *System, ff ForceField, forces []r2.Vec) []r2.Vec
}

// Sample is the diagnostics of one step.
type Sample struct {
	Step        int     `json:"step"`
	Time        float64 `json:"time"`
	Kinetic     float64 `json:"kinetic"`
	Potential   float64 `json:"potential"`
	Total       float64 `json:"total"`
	Temperature float64 `json:"temperature"`
}

type Metric interface {
	Name() string
	Observe(s Sample, sys *System)
	Value() float64
	Reset()
}

type Observer interface {
	OnSample(s Sample, sys *System)
}

type Result struct {
	Samples     []Sample
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Final       []Particle
}

// Series splits the samples into parallel slices for plotting.
func (r *Result) Series() (times, kinetic, potential, total, temperature []float64) {
	n := len(r.Samples)
	times = make([]float64, n)
	kinetic = make([]float64, n)
	potential = make([]float64, n)
	total = make([]float64, n)
	temperature = make([]float64, n)
	for i, s := range r.Samples {
		times[i] = s.Time
		kinetic[i] = s.Kinetic
		potential[i] = s.Potential
		total[i] = s.Total
		temperature[i] = s.Temperature
	}
	return
}

package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

func argonParams() dynamo.Params {
	return dynamo.Params{
		Sigma:       3.4e-10,
		Epsilon:     0.24 * 1.60218e-19,
		Mass:        6.63e-26,
		Dt:          1e-15,
		Steps:       100,
		ReportEvery: 100,
		MinDistance: dynamo.DefaultMinDistance,
	}
}

func TestKineticEnergyAndTemperature(t *testing.T) {
	p := argonParams()
	v := 250.0
	sys := &dynamo.System{Params: p}
	for i := 0; i < 4; i++ {
		sys.Particles = append(sys.Particles, dynamo.Particle{
			Pos: r2.Vec{X: float64(i) * 1e-9},
			Vel: r2.Vec{X: v},
		})
	}

	ke := KineticEnergy(sys)
	wantKE := 0.5 * p.Mass * 4 * v * v
	if math.Abs(ke-wantKE)/wantKE > 1e-12 {
		t.Errorf("KE = %e, want %e", ke, wantKE)
	}

	temp := Temperature(ke, 4)
	wantT := 2 * wantKE / (4 * Boltzmann * 6)
	if math.Abs(temp-wantT)/wantT > 1e-12 {
		t.Errorf("T = %f, want %f", temp, wantT)
	}
}

func TestTemperature_Zero(t *testing.T) {
	if got := Temperature(0, 10); got != 0 {
		t.Errorf("expected zero temperature, got %f", got)
	}
}

func TestMomentum(t *testing.T) {
	sys := &dynamo.System{
		Params: dynamo.Params{Mass: 2},
		Particles: []dynamo.Particle{
			{Vel: r2.Vec{X: 1, Y: 2}},
			{Vel: r2.Vec{X: -3, Y: 0.5}},
		},
	}
	got := Momentum(sys)
	want := r2.Vec{X: -4, Y: 5}
	if got != want {
		t.Errorf("Momentum() = %v, want %v", got, want)
	}
}

func TestDiagnose(t *testing.T) {
	p := argonParams()
	lj := physics.NewLennardJones(p)
	sys := &dynamo.System{
		Params: p,
		Particles: []dynamo.Particle{
			{Pos: r2.Vec{X: 0}, Vel: r2.Vec{X: 100}},
			{Pos: r2.Vec{X: p.Sigma}, Vel: r2.Vec{X: -100}},
		},
	}

	s := Diagnose(sys, lj, 7)

	if s.Step != 7 || s.Time != 7*p.Dt {
		t.Errorf("unexpected step/time %d %e", s.Step, s.Time)
	}
	if math.Abs(s.Potential) > 1e-12*p.Epsilon {
		t.Errorf("PE at r = sigma should be 0, got %e", s.Potential)
	}
	if s.Total != s.Kinetic+s.Potential {
		t.Errorf("total %e != %e + %e", s.Total, s.Kinetic, s.Potential)
	}
	wantT := 2 * s.Kinetic / (2 * Boltzmann * 2)
	if math.Abs(s.Temperature-wantT)/wantT > 1e-12 {
		t.Errorf("T = %f, want %f", s.Temperature, wantT)
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()
	for _, total := range []float64{-10, -10.5, -9.8, -10.1} {
		m.Observe(dynamo.Sample{Total: total}, nil)
	}
	if math.Abs(m.Value()-0.05) > 1e-12 {
		t.Errorf("expected drift 0.05, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
	m.Observe(dynamo.Sample{Total: 2}, nil)
	if m.Value() != 0 {
		t.Error("baseline not reset")
	}
}

func TestMeanTemperature(t *testing.T) {
	m := NewMeanTemperature()
	if m.Value() != 0 {
		t.Error("expected zero with no samples")
	}
	m.Observe(dynamo.Sample{Temperature: 100}, nil)
	m.Observe(dynamo.Sample{Temperature: 50}, nil)
	if m.Value() != 75 {
		t.Errorf("expected 75, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestMomentumDrift(t *testing.T) {
	sys := &dynamo.System{
		Params:    dynamo.Params{Mass: 1},
		Particles: []dynamo.Particle{{Vel: r2.Vec{X: 3}}, {Vel: r2.Vec{Y: 4}}},
	}
	m := NewMomentumDrift()
	m.Observe(dynamo.Sample{}, sys)
	if m.Value() != 5 {
		t.Errorf("expected 5, got %f", m.Value())
	}
	sys.RemoveCenterOfMassVelocity()
	m.Reset()
	m.Observe(dynamo.Sample{}, sys)
	if m.Value() > 1e-15 {
		t.Errorf("expected ~0 after COM removal, got %e", m.Value())
	}
}

func TestGuardHits(t *testing.T) {
	p := argonParams()
	sys := &dynamo.System{
		Params:    p,
		Particles: []dynamo.Particle{{Pos: r2.Vec{X: 0}}, {Pos: r2.Vec{X: 2 * p.Sigma}}},
	}
	g := NewGuardHits()
	g.Observe(dynamo.Sample{}, sys)
	sys.Particles[1].Pos.X = 0.5 * p.MinDistance
	g.Observe(dynamo.Sample{}, sys)
	g.Observe(dynamo.Sample{}, sys)
	if g.Value() != 2 {
		t.Errorf("expected 2 guard hits, got %f", g.Value())
	}
	g.Reset()
	if g.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

package dynamo

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

type System struct {
	Particles []Particle
	Params    Params
}

// NewSystem pairs positions and velocities by index.
func NewSystem(pos, vel []r2.Vec, p Params) (*System, error) {
	if len(pos) != len(vel) {
		return nil, fmt.Errorf("%w: %d positions, %d velocities", ErrLengthMismatch, len(pos), len(vel))
	}
	particles := make([]Particle, len(pos))
	for i := range pos {
		particles[i] = Particle{Pos: pos[i], Vel: vel[i]}
	}
	return &System{Particles: particles, Params: p}, nil
}

func (s *System) N() int { return len(s.Particles) }

// Positions returns a copy of the particle positions.
func (s *System) Positions() []r2.Vec {
	pos := make([]r2.Vec, len(s.Particles))
	for i, p := range s.Particles {
		pos[i] = p.Pos
	}
	return pos
}

func (s *System) Velocities() []r2.Vec {
	vel := make([]r2.Vec, len(s.Particles))
	for i, p := range s.Particles {
		vel[i] = p.Vel
	}
	return vel
}

func (s *System) Clone() *System {
	c := &System{Particles: make([]Particle, len(s.Particles)), Params: s.Params}
	copy(c.Particles, s.Particles)
	return c
}

func (s *System) IsValid() bool {
	for _, p := range s.Particles {
		if !p.IsValid() {
			return false
		}
	}
	return true
}

// RemoveCenterOfMassVelocity subtracts the mean velocity from every particle,
// leaving zero total momentum. Masses are uniform so the mean velocity is the
// center-of-mass velocity.
func (s *System) RemoveCenterOfMassVelocity() {
	n := len(s.Particles)
	if n == 0 {
		return
	}
	var sum r2.Vec
	for _, p := range s.Particles {
		sum = r2.Add(sum, p.Vel)
	}
	mean := r2.Scale(1/float64(n), sum)
	for i := range s.Particles {
		s.Particles[i].Vel = r2.Sub(s.Particles[i].Vel, mean)
	}
}

// Bounds returns the axis-aligned bounding box of the positions.
func (s *System) Bounds() (lo, hi r2.Vec) {
	if len(s.Particles) == 0 {
		return
	}
	lo, hi = s.Particles[0].Pos, s.Particles[0].Pos
	for _, p := range s.Particles[1:] {
		if p.Pos.X < lo.X {
			lo.X = p.Pos.X
		}
		if p.Pos.Y < lo.Y {
			lo.Y = p.Pos.Y
		}
		if p.Pos.X > hi.X {
			hi.X = p.Pos.X
		}
		if p.Pos.Y > hi.Y {
			hi.Y = p.Pos.Y
		}
	}
	return
}

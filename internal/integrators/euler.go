package integrators

import (
	"github.com/san-kum/ljsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Euler is the explicit first-order scheme. It is not symplectic and drifts
// in energy; it exists for comparison runs only.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (Euler) Step(sys *dynamo.System, ff dynamo.ForceField, forces []r2.Vec) []r2.Vec {
	dt := sys.Params.Dt
	invMass := 1 / sys.Params.Mass
	for i := range sys.Particles {
		p := &sys.Particles[i]
		p.Pos = r2.Add(p.Pos, r2.Scale(dt, p.Vel))
		p.Vel = r2.Add(p.Vel, r2.Scale(invMass*dt, forces[i]))
	}
	return ff.Forces(sys.Positions())
}

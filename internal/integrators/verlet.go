package integrators

import (
	"github.com/san-kum/ljsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// VelocityVerlet is the symplectic second-order scheme
//
//	x(t+dt) = x + v dt + ½ a(t) dt²
//	v(t+dt) = v + ½ [a(t) + a(t+dt)] dt
//
// It keeps no state between steps.
type VelocityVerlet struct{}

func NewVelocityVerlet() *VelocityVerlet {
	return &VelocityVerlet{}
}

func (VelocityVerlet) Step(sys *dynamo.System, ff dynamo.ForceField, forces []r2.Vec) []r2.Vec {
	dt := sys.Params.Dt
	dt2 := dt * dt
	invMass := 1 / sys.Params.Mass

	for i := range sys.Particles {
		p := &sys.Particles[i]
		p.Pos = r2.Add(p.Pos, r2.Add(r2.Scale(dt, p.Vel), r2.Scale(0.5*invMass*dt2, forces[i])))
	}

	newForces := ff.Forces(sys.Positions())

	halfDt := 0.5 * invMass * dt
	for i := range sys.Particles {
		p := &sys.Particles[i]
		p.Vel = r2.Add(p.Vel, r2.Scale(halfDt, r2.Add(forces[i], newForces[i])))
	}

	return newForces
}

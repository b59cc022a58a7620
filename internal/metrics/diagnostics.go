package metrics

import (
	"github.com/san-kum/ljsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Boltzmann is k_B in J/K, to the three significant figures the reference
// argon runs were produced with.
const Boltzmann = 1.38e-23

func KineticEnergy(sys *dynamo.System) float64 {
	sum := 0.0
	for _, p := range sys.Particles {
		sum += r2.Norm2(p.Vel)
	}
	return 0.5 * sys.Params.Mass * sum
}

// Temperature applies 2D equipartition with the two center-of-mass degrees
// of freedom removed: T = 2 KE / (N k_B (2N - 2)). The result is undefined
// for n < 2.
func Temperature(ke float64, n int) float64 {
	return 2 * ke / (float64(n) * Boltzmann * float64(2*n-2))
}

// Momentum returns the total momentum Σ m v.
func Momentum(sys *dynamo.System) r2.Vec {
	var sum r2.Vec
	for _, p := range sys.Particles {
		sum = r2.Add(sum, p.Vel)
	}
	return r2.Scale(sys.Params.Mass, sum)
}

// Diagnose evaluates the energies and temperature of the current state.
// The sample time is step*dt.
func Diagnose(sys *dynamo.System, ff dynamo.ForceField, step int) dynamo.Sample {
	ke := KineticEnergy(sys)
	pe := ff.Potential(sys.Positions())
	return dynamo.Sample{
		Step:        step,
		Time:        float64(step) * sys.Params.Dt,
		Kinetic:     ke,
		Potential:   pe,
		Total:       ke + pe,
		Temperature: Temperature(ke, sys.N()),
	}
}

package physics

import (
	"math"

	"github.com/san-kum/ljsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// parallelThreshold is the particle count below which force evaluation
// stays on the calling goroutine regardless of Workers.
const parallelThreshold = 64

// LennardJones evaluates the 12-6 pair potential 4ε[(σ/r)¹² − (σ/r)⁶]
// over all particle pairs.
type LennardJones struct {
	Sigma   float64
	Epsilon float64
	// MinDistance: pairs at or below this separation contribute neither
	// force nor potential.
	MinDistance float64
	Workers     int

	sigma6  float64
	sigma12 float64
}

func NewLennardJones(p dynamo.Params) *LennardJones {
	lj := &LennardJones{
		Sigma:       p.Sigma,
		Epsilon:     p.Epsilon,
		MinDistance: p.MinDistance,
		Workers:     p.Workers,
	}
	lj.sigma6 = math.Pow(lj.Sigma, 6)
	lj.sigma12 = lj.sigma6 * lj.sigma6
	return lj
}

// ForceMagnitude returns 48ε(σ¹²/r¹² − ½σ⁶/r⁶)/r. Multiplying by the unit
// separation vector gives the force on the first particle of the pair;
// positive values are repulsive.
func (lj *LennardJones) ForceMagnitude(r float64) float64 {
	r6 := r * r * r * r * r * r
	r12 := r6 * r6
	return 48 * lj.Epsilon * ((lj.sigma12 / r12) - 0.5*(lj.sigma6/r6)) / r
}

func (lj *LennardJones) PairPotential(r float64) float64 {
	sr := lj.Sigma / r
	sr6 := sr * sr * sr * sr * sr * sr
	return 4 * lj.Epsilon * (sr6*sr6 - sr6)
}

// PairForce returns the force on a particle at a exerted by one at b. The
// force on b is its exact negation. Pairs inside the guard yield zero.
func (lj *LennardJones) PairForce(a, b r2.Vec) r2.Vec {
	rVec := r2.Sub(a, b)
	r := r2.Norm(rVec)
	if r <= lj.MinDistance {
		return r2.Vec{}
	}
	return r2.Scale(lj.ForceMagnitude(r)/r, rVec)
}

func (lj *LennardJones) Forces(pos []r2.Vec) []r2.Vec {
	n := len(pos)
	if lj.Workers <= 1 || n < parallelThreshold {
		forces := make([]r2.Vec, n)
		lj.accumulate(pos, 0, n, forces)
		return forces
	}

	// Per-worker accumulators, reduced in worker order so the result does
	// not depend on goroutine scheduling.
	partial := make([][]r2.Vec, lj.Workers)
	dynamo.ParallelFor(n, lj.Workers, parallelThreshold/4, func(w, start, end int) {
		buf := make([]r2.Vec, n)
		lj.accumulate(pos, start, end, buf)
		partial[w] = buf
	})

	forces := make([]r2.Vec, n)
	for _, buf := range partial {
		if buf == nil {
			continue
		}
		for i := range forces {
			forces[i] = r2.Add(forces[i], buf[i])
		}
	}
	return forces
}

// accumulate adds the contributions of pairs (i, j) with start <= i < end
// and j > i into forces.
func (lj *LennardJones) accumulate(pos []r2.Vec, start, end int, forces []r2.Vec) {
	n := len(pos)
	for i := start; i < end; i++ {
		for j := i + 1; j < n; j++ {
			f := lj.PairForce(pos[i], pos[j])
			forces[i] = r2.Add(forces[i], f)
			forces[j] = r2.Sub(forces[j], f)
		}
	}
}

func (lj *LennardJones) Potential(pos []r2.Vec) float64 {
	n := len(pos)
	if lj.Workers <= 1 || n < parallelThreshold {
		return lj.potential(pos, 0, n)
	}

	partial := make([]float64, lj.Workers)
	dynamo.ParallelFor(n, lj.Workers, parallelThreshold/4, func(w, start, end int) {
		partial[w] = lj.potential(pos, start, end)
	})

	pe := 0.0
	for _, v := range partial {
		pe += v
	}
	return pe
}

func (lj *LennardJones) potential(pos []r2.Vec, start, end int) float64 {
	n := len(pos)
	pe := 0.0
	for i := start; i < end; i++ {
		for j := i + 1; j < n; j++ {
			r := r2.Norm(r2.Sub(pos[i], pos[j]))
			if r > lj.MinDistance {
				pe += lj.PairPotential(r)
			}
		}
	}
	return pe
}

// EquilibriumDistance is the separation 2^(1/6)σ at which the pair force
// vanishes.
func (lj *LennardJones) EquilibriumDistance() float64 {
	return math.Pow(2, 1.0/6.0) * lj.Sigma
}

package physics

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ljsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	sigma   = 3.4e-10
	epsilon = 0.24 * 1.60218e-19
)

func argon() dynamo.Params {
	return dynamo.Params{
		Sigma:       sigma,
		Epsilon:     epsilon,
		Mass:        6.63e-26,
		Dt:          1e-15,
		Steps:       100,
		ReportEvery: 100,
		MinDistance: dynamo.DefaultMinDistance,
	}
}

func jitteredGrid(side int, spacing float64, seed int64) []r2.Vec {
	rng := rand.New(rand.NewSource(seed))
	pos := make([]r2.Vec, 0, side*side)
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			pos = append(pos, r2.Vec{
				X: float64(i)*spacing + (rng.Float64()-0.5)*0.1*spacing,
				Y: float64(j)*spacing + (rng.Float64()-0.5)*0.1*spacing,
			})
		}
	}
	return pos
}

var _ = Describe("LennardJones", func() {
	var lj *LennardJones

	BeforeEach(func() {
		lj = NewLennardJones(argon())
	})

	Describe("pair terms", func() {
		It("vanishes at the equilibrium distance", func() {
			r := lj.EquilibriumDistance()
			Expect(r).To(BeNumerically("~", sigma*math.Pow(2, 1.0/6.0), 1e-22))
			scale := 48 * epsilon / sigma
			Expect(math.Abs(lj.ForceMagnitude(r)) / scale).To(BeNumerically("<", 1e-12))
		})

		It("has potential minimum -ε at the equilibrium distance", func() {
			Expect(lj.PairPotential(lj.EquilibriumDistance()) / epsilon).To(BeNumerically("~", -1, 1e-12))
		})

		It("is repulsive inside and attractive outside equilibrium", func() {
			r0 := lj.EquilibriumDistance()
			Expect(lj.ForceMagnitude(0.95 * r0)).To(BeNumerically(">", 0))
			Expect(lj.ForceMagnitude(1.2 * r0)).To(BeNumerically("<", 0))
		})

		It("matches the negative derivative of the potential", func() {
			for _, r := range []float64{0.9 * sigma, sigma, 1.3 * sigma, 2.5 * sigma} {
				h := r * 1e-6
				dV := (lj.PairPotential(r+h) - lj.PairPotential(r-h)) / (2 * h)
				Expect(lj.ForceMagnitude(r) / -dV).To(BeNumerically("~", 1, 1e-6))
			}
		})
	})

	Describe("Forces", func() {
		It("returns equal and opposite x-axis forces for particles at (0,0) and (σ,0)", func() {
			pos := []r2.Vec{{X: 0, Y: 0}, {X: sigma, Y: 0}}
			f := lj.Forces(pos)

			Expect(f).To(HaveLen(2))
			Expect(f[0].X).To(Equal(-f[1].X))
			Expect(f[0].Y).To(BeZero())
			Expect(f[1].Y).To(BeZero())
			// at r = σ the pair is repulsive: particle 0 is pushed toward -x
			Expect(f[0].X).To(BeNumerically("<", 0))
			Expect(-f[0].X / (24 * epsilon / sigma)).To(BeNumerically("~", 1, 1e-12))
		})

		It("produces exactly antisymmetric pair contributions", func() {
			a := r2.Vec{X: 1.1e-10, Y: -0.4e-10}
			b := r2.Vec{X: 4.3e-10, Y: 2.2e-10}
			fab := lj.PairForce(a, b)
			fba := lj.PairForce(b, a)
			Expect(fab.X).To(Equal(-fba.X))
			Expect(fab.Y).To(Equal(-fba.Y))
		})

		It("sums to zero over the whole system", func() {
			pos := jitteredGrid(6, 1.15*sigma, 1)
			var total r2.Vec
			var scale float64
			for _, f := range lj.Forces(pos) {
				total = r2.Add(total, f)
				scale = math.Max(scale, r2.Norm(f))
			}
			Expect(r2.Norm(total) / scale).To(BeNumerically("<", 1e-10))
		})

		It("does not modify the positions", func() {
			pos := jitteredGrid(3, 1.2*sigma, 2)
			orig := make([]r2.Vec, len(pos))
			copy(orig, pos)
			lj.Forces(pos)
			Expect(pos).To(Equal(orig))
		})

		It("allocates a fresh buffer on every call", func() {
			pos := []r2.Vec{{X: 0}, {X: 1.1 * sigma}}
			f1 := lj.Forces(pos)
			f2 := lj.Forces(pos)
			f1[0] = r2.Vec{X: 123}
			Expect(f2[0].X).NotTo(Equal(123.0))
		})

		It("is negligible beyond the effective range", func() {
			pos := []r2.Vec{{X: 0}, {X: 100 * sigma}}
			f := lj.Forces(pos)
			Expect(math.Abs(f[0].X) / (48 * epsilon / sigma)).To(BeNumerically("<", 1e-12))
		})
	})

	Describe("minimum-distance guard", func() {
		It("skips pairs at or below the guard", func() {
			pos := []r2.Vec{{X: 0}, {X: dynamo.DefaultMinDistance}}
			f := lj.Forces(pos)
			Expect(f[0]).To(Equal(r2.Vec{}))
			Expect(f[1]).To(Equal(r2.Vec{}))
			Expect(lj.Potential(pos)).To(BeZero())

			pos[1].X = 0
			Expect(lj.Forces(pos)[0]).To(Equal(r2.Vec{}))
			Expect(lj.Potential(pos)).To(BeZero())
		})

		It("jumps at the guard by no more than the repulsive term", func() {
			guard := dynamo.DefaultMinDistance
			r := guard * (1 + 1e-9)
			pos := []r2.Vec{{X: 0}, {X: r}}

			atGuard := lj.Potential([]r2.Vec{{X: 0}, {X: guard}})
			above := lj.Potential(pos)
			repulsive := 4 * epsilon * math.Pow(sigma/r, 12)

			Expect(atGuard).To(BeZero())
			Expect(above).To(BeNumerically(">", 0))
			Expect(above).To(BeNumerically("<=", repulsive))
			Expect(above / repulsive).To(BeNumerically("~", 1, 1e-3))
		})

		It("uses the same policy for force and potential", func() {
			lj.MinDistance = 2 * sigma
			pos := []r2.Vec{{X: 0}, {X: 1.5 * sigma}, {X: 100 * sigma}}
			f := lj.Forces(pos)
			// only the far pairs remain, and those are negligible
			Expect(math.Abs(f[0].X) / (48 * epsilon / sigma)).To(BeNumerically("<", 1e-9))
			Expect(math.Abs(lj.Potential(pos)) / epsilon).To(BeNumerically("<", 1e-9))
		})
	})

	Describe("Potential", func() {
		It("is zero for two particles at distance σ", func() {
			pos := []r2.Vec{{X: 0, Y: 0}, {X: sigma, Y: 0}}
			Expect(lj.Potential(pos) / epsilon).To(BeNumerically("~", 0, 1e-12))
		})

		It("sums over all pairs", func() {
			r0 := lj.EquilibriumDistance()
			// equilateral triangle at the pair minimum
			pos := []r2.Vec{{X: 0}, {X: r0}, {X: r0 / 2, Y: r0 * math.Sqrt(3) / 2}}
			Expect(lj.Potential(pos) / epsilon).To(BeNumerically("~", -3, 1e-9))
		})
	})

	Describe("parallel evaluation", func() {
		It("agrees with the sequential result", func() {
			pos := jitteredGrid(12, 1.15*sigma, 7)
			seq := lj.Forces(pos)
			seqPE := lj.Potential(pos)

			par := NewLennardJones(argon())
			par.Workers = 4
			parForces := par.Forces(pos)

			Expect(parForces).To(HaveLen(len(seq)))
			for i := range seq {
				diff := r2.Norm(r2.Sub(seq[i], parForces[i]))
				Expect(diff).To(BeNumerically("<=", 1e-12*(r2.Norm(seq[i])+48*epsilon/sigma)))
			}
			Expect(par.Potential(pos) / seqPE).To(BeNumerically("~", 1, 1e-12))
		})
	})
})

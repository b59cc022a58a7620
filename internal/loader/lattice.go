package loader

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Lattice places side×side particles on a square grid with the given
// spacing (m), each moving at speed (m/s) in a random direction drawn from
// seed.
func Lattice(side int, spacing, speed float64, seed int64) *Data {
	rng := rand.New(rand.NewSource(seed))
	n := side * side
	d := &Data{
		Positions:  make([]r2.Vec, 0, n),
		Velocities: make([]r2.Vec, 0, n),
	}
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			d.Positions = append(d.Positions, r2.Vec{X: float64(i) * spacing, Y: float64(j) * spacing})
			angle := rng.Float64() * 2 * math.Pi
			d.Velocities = append(d.Velocities, r2.Vec{X: speed * math.Cos(angle), Y: speed * math.Sin(angle)})
		}
	}
	return d
}

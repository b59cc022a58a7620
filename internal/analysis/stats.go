package analysis

import (
	"math"

	"github.com/san-kum/ljsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats describes one scalar series.
type Stats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	// RelativeFluctuation is StdDev/|Mean|, or 0 when the mean is 0.
	RelativeFluctuation float64
}

// Describe computes Stats for values. A series shorter than two has zero
// spread.
func Describe(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	st := Stats{
		Mean: stat.Mean(values, nil),
		Min:  floats.Min(values),
		Max:  floats.Max(values),
	}
	if len(values) > 1 {
		st.StdDev = stat.StdDev(values, nil)
	}
	if st.Mean != 0 {
		st.RelativeFluctuation = st.StdDev / math.Abs(st.Mean)
	}
	return st
}

type Summary struct {
	Samples     int
	Kinetic     Stats
	Potential   Stats
	Total       Stats
	Temperature Stats
	// Drift is (E_last - E_first) / |E_first|, signed.
	Drift float64
}

func EnergyStats(samples []dynamo.Sample) Summary {
	r := dynamo.Result{Samples: samples}
	_, kinetic, potential, total, temperature := r.Series()

	s := Summary{
		Samples:     len(samples),
		Kinetic:     Describe(kinetic),
		Potential:   Describe(potential),
		Total:       Describe(total),
		Temperature: Describe(temperature),
	}
	if len(total) > 1 && total[0] != 0 {
		s.Drift = (total[len(total)-1] - total[0]) / math.Abs(total[0])
	}
	return s
}

package metrics

import (
	"math"

	"github.com/san-kum/ljsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// EnergyDrift tracks the largest relative deviation of total energy from the
// first observed sample.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s dynamo.Sample, sys *dynamo.System) {
	if e.samples == 0 {
		e.initialEnergy = s.Total
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(s.Total-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MeanTemperature averages the sampled temperature.
type MeanTemperature struct {
	name    string
	sum     float64
	samples int
}

func NewMeanTemperature() *MeanTemperature {
	return &MeanTemperature{name: "mean_temperature"}
}

func (m *MeanTemperature) Name() string { return m.name }

func (m *MeanTemperature) Observe(s dynamo.Sample, sys *dynamo.System) {
	m.sum += s.Temperature
	m.samples++
}

func (m *MeanTemperature) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanTemperature) Reset() {
	m.sum = 0
	m.samples = 0
}

// MomentumDrift records the largest total momentum magnitude seen. After
// center-of-mass removal any nonzero value is rounding error.
type MomentumDrift struct {
	name string
	peak float64
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(s dynamo.Sample, sys *dynamo.System) {
	m.peak = math.Max(m.peak, r2.Norm(Momentum(sys)))
}

func (m *MomentumDrift) Value() float64 { return m.peak }

func (m *MomentumDrift) Reset() { m.peak = 0 }

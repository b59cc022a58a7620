package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/integrators"
	"github.com/san-kum/ljsim/internal/metrics"
	"github.com/san-kum/ljsim/internal/physics"
)

type Registry struct {
	forceFields map[string]func(dynamo.Params) dynamo.ForceField
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		forceFields: make(map[string]func(dynamo.Params) dynamo.ForceField),
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.forceFields["lennard-jones"] = func(p dynamo.Params) dynamo.ForceField { return physics.NewLennardJones(p) }

	r.integrators["verlet"] = func() dynamo.Integrator { return integrators.NewVelocityVerlet() }
	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }

	return r
}

func (r *Registry) GetForceField(name string, p dynamo.Params) (dynamo.ForceField, error) {
	fn, ok := r.forceFields[name]
	if !ok {
		return nil, fmt.Errorf("unknown force field: %s", name)
	}
	return fn(p), nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns a fresh set of the run summary metrics.
func (r *Registry) DefaultMetrics() []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewEnergyDrift(),
		metrics.NewMeanTemperature(),
		metrics.NewMomentumDrift(),
		metrics.NewGuardHits(),
	}
}

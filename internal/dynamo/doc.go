// Package dynamo provides the core types shared by the simulation packages.
//
// A run is described by:
//
//   - [Particle]: position and velocity of one point particle (SI units)
//   - [Params]: immutable interaction and run constants (σ, ε, mass, dt, steps)
//   - [System]: the ordered particle set plus its [Params]
//   - [ForceField]: pairwise force and potential evaluation
//   - [Integrator]: advances a [System] by one time step
//   - [Metric] and [Observer]: consumers of per-step [Sample] diagnostics
//
// # Example
//
//	sys, _ := dynamo.NewSystem(positions, velocities, params)
//	sys.RemoveCenterOfMassVelocity()
//	s := sim.New(physics.NewLennardJones(params), integrators.NewVelocityVerlet())
//	result, _ := s.Run(ctx, sys)
//
// # Ownership
//
// A System is owned by the simulator for the duration of a run and is mutated
// in place by the integrator. It is NOT safe for concurrent use.
package dynamo

// Package physics provides the pairwise force fields used by the simulator.
//
// [LennardJones] implements [dynamo.ForceField] for the 12-6 potential
//
//	V(r) = 4ε[(σ/r)¹² − (σ/r)⁶]
//
// Forces are accumulated pair by pair with equal and opposite contributions,
// so total force (and therefore total momentum change) is zero up to
// rounding.
//
// # Minimum-distance guard
//
// Pairs with separation at or below MinDistance are skipped by both Forces
// and Potential. The default of 1 Å is not far below σ for noble gases, so a
// close approach is silently zeroed rather than repelled; expect energy
// drift if particles get that close.
//
// # Parallelism
//
// With Workers > 1 the pair loop is split by row across goroutines, each
// writing to a private accumulator that is reduced afterwards.
package physics

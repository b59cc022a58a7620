// Package analysis summarizes the diagnostics series of a run.
//
//   - [EnergyStats]: mean, spread and range of each energy series
//   - [PowerSpectrum]: one-sided power spectrum of a series
//   - [DominantFrequency]: strongest non-zero frequency of a series
//
// # Energy Conservation
//
// The relative fluctuation of the total energy is the usual health check
// for a symplectic integrator at a given time step:
//
//	st := analysis.EnergyStats(samples)
//	if st.Total.RelativeFluctuation > 1e-4 {
//	    // dt is too large
//	}
package analysis

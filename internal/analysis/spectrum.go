package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns |X_k|²/n for k = 0..n/2 of the mean-removed series.
// Bin k corresponds to frequency k/(n·dt).
func PowerSpectrum(values []float64) []float64 {
	n := len(values)
	if n < 2 {
		return nil
	}

	centered := make([]float64, n)
	copy(centered, values)
	floats.AddConst(-stat.Mean(values, nil), centered)

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, n/2+1)
	for k := range ps {
		a := cmplx.Abs(coeffs[k])
		ps[k] = a * a / float64(n)
	}
	return ps
}

// Frequencies returns the bin frequencies of PowerSpectrum for n samples
// spaced dt apart.
func Frequencies(n int, dt float64) []float64 {
	if n < 2 || dt <= 0 {
		return nil
	}
	f := make([]float64, n/2+1)
	for k := range f {
		f[k] = float64(k) / (float64(n) * dt)
	}
	return f
}

// DominantFrequency returns the frequency of the strongest non-zero bin, or
// 0 when the series is too short or constant.
func DominantFrequency(values []float64, dt float64) float64 {
	ps := PowerSpectrum(values)
	if len(ps) < 2 || dt <= 0 {
		return 0
	}

	k := floats.MaxIdx(ps[1:]) + 1
	if ps[k] == 0 {
		return 0
	}
	return float64(k) / (float64(len(values)) * dt)
}

package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

type Spectrum struct {
	Freqs     []float64
	Magnitude []float64
}

// PowerSpectrum removes the mean, applies a Hann window and returns the
// magnitudes of the non-negative frequency bins.
func PowerSpectrum(samples []float64, dt float64) Spectrum {
	n := len(samples)
	if n < 4 || dt <= 0 {
		return Spectrum{}
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range samples {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	coeffs := fft.FFTReal(windowed)
	half := n / 2
	s := Spectrum{
		Freqs:     make([]float64, half),
		Magnitude: make([]float64, half),
	}
	for k := 0; k < half; k++ {
		s.Freqs[k] = float64(k) / (float64(n) * dt)
		s.Magnitude[k] = cmplx.Abs(coeffs[k])
	}
	return s
}

// Peak returns the strongest non-DC bin, refined by parabolic interpolation.
func (s Spectrum) Peak() (freq, magnitude float64) {
	if len(s.Magnitude) < 3 {
		return 0, 0
	}

	best := 1
	for k := 2; k < len(s.Magnitude); k++ {
		if s.Magnitude[k] > s.Magnitude[best] {
			best = k
		}
	}

	freq, magnitude = s.Freqs[best], s.Magnitude[best]
	if best+1 < len(s.Magnitude) {
		a, b, c := s.Magnitude[best-1], s.Magnitude[best], s.Magnitude[best+1]
		if denom := a - 2*b + c; denom != 0 {
			delta := 0.5 * (a - c) / denom
			freq += delta * (s.Freqs[1] - s.Freqs[0])
		}
	}
	return freq, magnitude
}

func DominantFrequency(samples []float64, dt float64) float64 {
	f, _ := PowerSpectrum(samples, dt).Peak()
	return f
}

// CrossingFrequency estimates the oscillation frequency from upward mean
// crossings. It returns 0 with fewer than two crossings.
func CrossingFrequency(samples []float64, dt float64) float64 {
	if len(samples) < 2 || dt <= 0 {
		return 0
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))

	var first, last float64
	count := 0
	for i := 1; i < len(samples); i++ {
		prev, curr := samples[i-1]-mean, samples[i]-mean
		if prev < 0 && curr >= 0 {
			at := (float64(i-1) + prev/(prev-curr)) * dt
			if count == 0 {
				first = at
			}
			last = at
			count++
		}
	}

	if count < 2 {
		return 0
	}
	return float64(count-1) / (last - first)
}

// Package analysis turns a stream of audio samples into per-bin frequency
// magnitudes, with the windowing, smoothing and decibel scaling a browser
// analyser node applies.
package analysis

import (
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
)

// FFT size limits.
const (
	MinFFTSize = 32
	MaxFFTSize = 32768
)

// Default decibel range mapped onto 0-255.
const (
	DefaultMinDecibels = -100.0
	DefaultMaxDecibels = -30.0
)

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}

// ValidateFFTSize checks that n is a power of two in [MinFFTSize, MaxFFTSize].
func ValidateFFTSize(n int) error {
	if n < MinFFTSize || n > MaxFFTSize || !IsPowerOfTwo(n) {
		return domain.NewValidationError("fft_size", n,
			fmt.Sprintf("must be a power of two between %d and %d", MinFFTSize, MaxFFTSize)).Wrap(domain.ErrInvalidFFTSize)
	}
	return nil
}

// ValidateSmoothing checks that tau is in [0, 1].
func ValidateSmoothing(tau float64) error {
	if math.IsNaN(tau) || tau < 0 || tau > 1 {
		return domain.NewValidationError("smoothing", tau, "must be between 0 and 1")
	}
	return nil
}

// Analyser keeps the most recent FFTSize samples and produces smoothed
// magnitude spectra on demand.
//
// Thread-safety: Write is called from the audio goroutine and
// GetByteFrequencyData from the render loop; both take mu.
type Analyser struct {
	fftSize   int
	smoothing float64
	minDB     float64
	maxDB     float64

	mu sync.Mutex

	// ring holds mono samples; pos is the next write index
	ring []float64
	pos  int

	fft      *fourier.FFT
	window   []float64
	input    []float64
	coeffs   []complex128
	smoothed []float64
}

// New creates an analyser. fftSize must be a power of two in range and
// smoothing must be in [0, 1].
func New(fftSize int, smoothing float64) (*Analyser, error) {
	if err := ValidateFFTSize(fftSize); err != nil {
		return nil, err
	}
	if err := ValidateSmoothing(smoothing); err != nil {
		return nil, err
	}

	coeffs := make([]float64, fftSize)
	for i := range coeffs {
		coeffs[i] = 1
	}
	window.Blackman(coeffs)

	return &Analyser{
		fftSize:   fftSize,
		smoothing: smoothing,
		minDB:     DefaultMinDecibels,
		maxDB:     DefaultMaxDecibels,
		ring:      make([]float64, fftSize),
		fft:       fourier.NewFFT(fftSize),
		window:    coeffs,
		input:     make([]float64, fftSize),
		coeffs:    make([]complex128, fftSize/2+1),
		smoothed:  make([]float64, fftSize/2),
	}, nil
}

// FFTSize returns the transform size.
func (a *Analyser) FFTSize() int { return a.fftSize }

// FrequencyBinCount returns FFTSize()/2.
func (a *Analyser) FrequencyBinCount() int { return a.fftSize / 2 }

// Smoothing returns the smoothing time constant.
func (a *Analyser) Smoothing() float64 { return a.smoothing }

// SetDecibelRange changes the range mapped onto 0-255.
func (a *Analyser) SetDecibelRange(minDB, maxDB float64) error {
	if minDB >= maxDB {
		return domain.NewValidationError("decibels", [2]float64{minDB, maxDB}, "min must be below max")
	}
	a.mu.Lock()
	a.minDB, a.maxDB = minDB, maxDB
	a.mu.Unlock()
	return nil
}

// Write appends interleaved stereo frames, mixed down to mono.
func (a *Analyser) Write(frames [][2]float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, f := range frames {
		a.ring[a.pos] = (f[0] + f[1]) / 2
		a.pos = (a.pos + 1) % a.fftSize
	}
}

// WriteMono appends mono samples.
func (a *Analyser) WriteMono(samples []float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range samples {
		a.ring[a.pos] = s
		a.pos = (a.pos + 1) % a.fftSize
	}
}

// Reset clears buffered samples and smoothing history.
func (a *Analyser) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.ring)
	clear(a.smoothed)
	a.pos = 0
}

// GetByteFrequencyData computes the current spectrum and writes up to
// len(dst) bins into dst.
func (a *Analyser) GetByteFrequencyData(dst []uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// oldest sample first
	for i := 0; i < a.fftSize; i++ {
		a.input[i] = a.ring[(a.pos+i)%a.fftSize] * a.window[i]
	}
	a.fft.Coefficients(a.coeffs, a.input)

	scale := 255.0 / (a.maxDB - a.minDB)
	n := min(len(dst), len(a.smoothed))
	norm := 1.0 / float64(a.fftSize)
	for k := range a.smoothed {
		mag := cmplx.Abs(a.coeffs[k]) * norm
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag
		if k >= n {
			continue
		}
		db := 20 * math.Log10(a.smoothed[k])
		v := math.Floor(scale * (db - a.minDB))
		switch {
		case math.IsNaN(v) || v < 0:
			dst[k] = 0
		case v > 255:
			dst[k] = 255
		default:
			dst[k] = uint8(v)
		}
	}
}

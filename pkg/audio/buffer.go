// Package audio provides the sample-domain building blocks recorders and
// sources are built from: an auto-growing float buffer and a convolving
// recorder track.
package audio

import "math"

// SampleRate is the fixed sample rate every sound file, recorder track and
// listener record index is expressed in.
const SampleRate = 44100

// FloatBuffer is an auto-growing sample array. Index 0 always exists;
// writing past the current capacity grows the backing slice. FirstSample
// and RealLength track the occupied range so RMS/Max/Truncate/Length can
// operate over exactly the samples that have been written, not the full
// (possibly over-allocated) backing array.
type FloatBuffer struct {
	samples     []float64
	FirstSample int
	RealLength  int
	written     bool // whether any write has landed yet, so the first one can set FirstSample unconditionally
}

// NewFloatBuffer returns an empty buffer.
func NewFloatBuffer() *FloatBuffer {
	return &FloatBuffer{}
}

// At returns the sample at i, or 0 if i is outside the current capacity.
// This is the "const" access mode from spec: it never grows the buffer.
func (b *FloatBuffer) At(i int) float64 {
	if i < 0 || i >= len(b.samples) {
		return 0
	}
	return b.samples[i]
}

// Set writes v at index i, growing the backing slice if necessary, and
// extends RealLength and FirstSample to cover i.
func (b *FloatBuffer) Set(i int, v float64) {
	b.grow(i)
	b.samples[i] = v
	b.touch(i)
}

// Add accumulates delta into the sample at i, growing as needed. This is
// the mutable-reference access mode ("buf[i] (mut)") used by convolution.
func (b *FloatBuffer) Add(i int, delta float64) {
	b.grow(i)
	b.samples[i] += delta
	b.touch(i)
}

// touch records that index i has been written, widening FirstSample down
// and RealLength up to cover it.
func (b *FloatBuffer) touch(i int) {
	if !b.written || i < b.FirstSample {
		b.FirstSample = i
		b.written = true
	}
	if i+1 > b.RealLength {
		b.RealLength = i + 1
	}
}

func (b *FloatBuffer) grow(i int) {
	if i < 0 {
		return
	}
	if i < len(b.samples) {
		return
	}
	grown := make([]float64, i+1)
	copy(grown, b.samples)
	b.samples = grown
}

// RMS sums the squared samples over [FirstSample, RealLength), divides by
// RealLength (not by the range's length) and returns the square root.
// Returns 0 if the range is empty.
func (b *FloatBuffer) RMS() float64 {
	if b.RealLength <= b.FirstSample {
		return 0
	}
	sum := 0.0
	for i := b.FirstSample; i < b.RealLength; i++ {
		s := b.At(i)
		sum += s * s
	}
	n := float64(b.RealLength)
	return math.Sqrt(sum / n)
}

// Max returns the largest absolute sample value over [FirstSample,
// RealLength).
func (b *FloatBuffer) Max() float64 {
	m := 0.0
	for i := b.FirstSample; i < b.RealLength; i++ {
		if v := math.Abs(b.At(i)); v > m {
			m = v
		}
	}
	return m
}

// Multiply scales every sample in [FirstSample, RealLength) by f.
func (b *FloatBuffer) Multiply(f float64) {
	for i := b.FirstSample; i < b.RealLength; i++ {
		if i < len(b.samples) {
			b.samples[i] *= f
		}
	}
}

// Normalize scales the buffer so its peak becomes M. If x >= 0 it is used
// as the reference peak instead of recomputing Max().
func (b *FloatBuffer) Normalize(m, x float64) {
	ref := x
	if ref < 0 {
		ref = b.Max()
	}
	if ref == 0 {
		return
	}
	b.Multiply(m / ref)
}

// Power maps every sample s to sign(s)*|s|^p over [FirstSample,
// RealLength). Used for the perceptual amplitude-compression pass before
// clamping samples to the output format's range.
func (b *FloatBuffer) Power(p float64) {
	for i := b.FirstSample; i < b.RealLength; i++ {
		if i >= len(b.samples) {
			continue
		}
		s := b.samples[i]
		sign := 1.0
		if s < 0 {
			sign = -1.0
		}
		b.samples[i] = sign * math.Pow(math.Abs(s), p)
	}
}

// Truncate sets RealLength to l (at least 1), growing storage if l exceeds
// the current capacity.
func (b *FloatBuffer) Truncate(l int) {
	if l == 0 {
		l = 1
	}
	if l-1 >= len(b.samples) {
		b.grow(l - 1)
	}
	b.RealLength = l
	if b.FirstSample > b.RealLength {
		b.FirstSample = b.RealLength
	}
}

// Length returns RealLength when th < 0; otherwise it returns one past the
// highest index whose absolute sample value is >= th, or 0 if no sample
// meets the threshold.
func (b *FloatBuffer) Length(th float64) int {
	if th < 0 {
		return b.RealLength
	}
	for i := b.RealLength - 1; i >= b.FirstSample; i-- {
		if math.Abs(b.At(i)) >= th {
			return i + 1
		}
	}
	return 0
}

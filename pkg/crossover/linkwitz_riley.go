// Package crossover implements the 4th-order Linkwitz-Riley 3-way
// crossover used to pre-split a monophonic sound source into low/mid/high
// frequency bands before rendering.
package crossover

import "math"

// biquad is a single second-order IIR section in RBJ cookbook form,
// applied in series to build the 4th-order Linkwitz-Riley sections below.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	x1, x2     float64
	y1, y2     float64
}

func (bq *biquad) process(x float64) float64 {
	y := bq.b0*x + bq.b1*bq.x1 + bq.b2*bq.x2 - bq.a1*bq.y1 - bq.a2*bq.y2
	bq.x2, bq.x1 = bq.x1, x
	bq.y2, bq.y1 = bq.y1, y
	return y
}

// butterworthLowPass/HighPass build a 2-pole Butterworth biquad (Q =
// 1/sqrt(2)) per the standard audio-EQ-cookbook formulas. A Linkwitz-
// Riley 4th-order section is this biquad applied twice in series, which
// squares a Butterworth magnitude response into the LR4 response.
func butterworthLowPass(cutoff, sampleRate float64) biquad {
	w0 := 2 * math.Pi * cutoff / sampleRate
	cosW0, sinW0 := math.Cos(w0), math.Sin(w0)
	const q = 0.7071067811865476
	alpha := sinW0 / (2 * q)

	b0 := (1 - cosW0) / 2
	b1 := 1 - cosW0
	b2 := (1 - cosW0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosW0
	a2 := 1 - alpha

	return biquad{b0: b0 / a0, b1: b1 / a0, b2: b2 / a0, a1: a1 / a0, a2: a2 / a0}
}

func butterworthHighPass(cutoff, sampleRate float64) biquad {
	w0 := 2 * math.Pi * cutoff / sampleRate
	cosW0, sinW0 := math.Cos(w0), math.Sin(w0)
	const q = 0.7071067811865476
	alpha := sinW0 / (2 * q)

	b0 := (1 + cosW0) / 2
	b1 := -(1 + cosW0)
	b2 := (1 + cosW0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosW0
	a2 := 1 - alpha

	return biquad{b0: b0 / a0, b1: b1 / a0, b2: b2 / a0, a1: a1 / a0, a2: a2 / a0}
}

// section4 is a 4th-order Linkwitz-Riley filter: two identical Butterworth
// biquads run in series.
type section4 struct {
	stage1, stage2 biquad
}

func newLowPass4(cutoff, sampleRate float64) *section4 {
	bq := butterworthLowPass(cutoff, sampleRate)
	return &section4{stage1: bq, stage2: bq}
}

func newHighPass4(cutoff, sampleRate float64) *section4 {
	bq := butterworthHighPass(cutoff, sampleRate)
	return &section4{stage1: bq, stage2: bq}
}

func (s *section4) process(x float64) float64 {
	return s.stage2.process(s.stage1.process(x))
}

func (s *section4) run(in []float32) []float32 {
	out := make([]float32, len(in))
	for i, x := range in {
		out[i] = float32(s.process(float64(x)))
	}
	return out
}

// Split produces three band-limited buffers from one mono signal using
// crossovers fc1=(f1+f2)/2 and fc2=(f2+f3)/2 (all in Hz):
//
//	low  = LowPass(fc1)(x)
//	mid  = HighPass(fc1)(LowPass(fc2)(x))
//	high = HighPass(fc2)(x)
func Split(samples []float32, sampleRate int, f1, f2, f3 float64) (low, mid, high []float32) {
	fc1 := (f1 + f2) / 2
	fc2 := (f2 + f3) / 2
	fs := float64(sampleRate)

	low = newLowPass4(fc1, fs).run(samples)

	midLow := newLowPass4(fc2, fs).run(samples)
	mid = newHighPass4(fc1, fs).run(midLow)

	high = newHighPass4(fc2, fs).run(samples)
	return low, mid, high
}

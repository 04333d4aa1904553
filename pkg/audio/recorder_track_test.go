package audio

import (
	"math"
	"testing"
)

func TestRecorderTrack_ConvolveInto_ImpulseResponse(t *testing.T) {
	ir := NewRecorderTrack()
	ir.Set(0, 1.0)
	ir.Set(5, 0.5)

	out := NewFloatBuffer()
	dry := []float64{1, 1, 1}
	ir.ConvolveInto(out, dry, 10)

	// out[i+10+j] += dry[i]*ir[j] for j in {0,5}, i in {0,1,2}
	for i := 0; i < 3; i++ {
		if got := out.At(10 + i + 0); math.Abs(got-1) > 1e-9 {
			t.Errorf("out[%d] = %f, want 1", 10+i, got)
		}
		if got := out.At(10 + i + 5); math.Abs(got-0.5) > 1e-9 {
			t.Errorf("out[%d] = %f, want 0.5", 10+i+5, got)
		}
	}
}

func TestRecorderTrack_ConvolveBlendInto_InterpolatesBetweenTracks(t *testing.T) {
	a := NewRecorderTrack()
	a.Set(0, 1.0)
	b := NewRecorderTrack()
	b.Set(0, 3.0)

	out := NewFloatBuffer()
	dry := []float64{1, 1, 1, 1} // n=4, alpha = i/4

	a.ConvolveBlendInto(out, b, dry, 0)

	// p(0) at i=0: alpha=0 -> a[0]=1; at i=3: alpha=0.75 -> 0.25*1+0.75*3=2.5
	if math.Abs(out.At(0)-1) > 1e-9 {
		t.Errorf("out[0] = %f, want 1", out.At(0))
	}
	if math.Abs(out.At(3)-2.5) > 1e-9 {
		t.Errorf("out[3] = %f, want 2.5", out.At(3))
	}
}

func TestRecorderTrack_ConvolveBlendInto_NonZeroFirstSample(t *testing.T) {
	a := NewRecorderTrack()
	a.Set(5, 2.0) // a.FirstSample = 5
	b := NewRecorderTrack()
	b.Set(8, 4.0) // b.FirstSample = 8

	out := NewFloatBuffer()
	dry := []float64{1, 1} // n=2, alpha = i/2

	a.ConvolveBlendInto(out, b, dry, 0)

	// j=5 (a=2, b=0): i=0 alpha=0 -> p=2 -> out[5]; i=1 alpha=0.5 -> p=1 -> out[6]
	// j=8 (a=0, b=4): i=0 alpha=0 -> p=0 (skipped); i=1 alpha=0.5 -> p=2 -> out[9]
	if got := out.At(5); math.Abs(got-2.0) > 1e-9 {
		t.Errorf("out[5] = %f, want 2", got)
	}
	if got := out.At(6); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("out[6] = %f, want 1", got)
	}
	if got := out.At(9); math.Abs(got-2.0) > 1e-9 {
		t.Errorf("out[9] = %f, want 2", got)
	}
	// Indices before the earliest FirstSample must stay untouched; a
	// shifted-index bug would incorrectly write here instead.
	if got := out.At(0); got != 0 {
		t.Errorf("out[0] = %f, want 0 (no write should land before first)", got)
	}
}

func TestRecorderTrack_AddTrack(t *testing.T) {
	dst := NewRecorderTrack()
	dst.Set(0, 1)
	src := NewRecorderTrack()
	src.Set(0, 2)
	src.Set(1, 3)

	dst.AddTrack(src)
	if dst.At(0) != 3 {
		t.Errorf("dst[0] = %f, want 3", dst.At(0))
	}
	if dst.At(1) != 3 {
		t.Errorf("dst[1] = %f, want 3", dst.At(1))
	}
}

func TestRecorderTrack_T60_SimpleDecay(t *testing.T) {
	tr := NewRecorderTrack()
	// rising direct peak to 1.0 at sample 100, then exponential-ish decay;
	// T60 measures from sample 101, the first sample below the peak.
	for i := 0; i <= 100; i++ {
		tr.Set(i, float64(i)/100)
	}
	peak := 1.0
	minGain := peak / decay60dB
	lastAbove := 100
	for j := 101; j < 100000; j++ {
		v := peak * math.Exp(-float64(j-100)/5000)
		tr.Set(j, v)
		if v > minGain {
			lastAbove = j
		}
	}
	want := float64(lastAbove-101) / SampleRate
	got := tr.T60()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("T60 = %f, want %f", got, want)
	}
}

func TestRecorderTrack_T60_SabineCrossCheck(t *testing.T) {
	// Simulate an exponential decay whose RT60 should match the Sabine
	// estimate for a 10x10x10 m room with uniform mid-band absorption 0.2:
	// V=1000, S=600, A=120, T60_sabine = 0.1611*1000/120.
	const v, s, aMid = 1000.0, 600.0, 0.2
	a := s * aMid
	t60Sabine := 0.1611 * v / a

	tau := t60Sabine / (60 / (20 * math.Log10(math.E))) // decay time constant for -60dB at t60Sabine

	tr := NewRecorderTrack()
	peak := 1.0
	for i := 0; i <= 10; i++ {
		tr.Set(i, peak*float64(i)/10)
	}
	nSamples := int(t60Sabine*SampleRate*1.5) + 20
	for j := 11; j < nSamples; j++ {
		tSec := float64(j-10) / SampleRate
		tr.Set(j, peak*math.Exp(-tSec/tau))
	}

	got := tr.T60()
	if math.Abs(got-t60Sabine)/t60Sabine > 0.25 {
		t.Errorf("T60_ear = %f, T60_sabine = %f, exceeds 25%% tolerance", got, t60Sabine)
	}
}

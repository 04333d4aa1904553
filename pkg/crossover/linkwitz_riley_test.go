package crossover

import (
	"math"
	"testing"
)

func rms(samples []float32) float64 {
	sum := 0.0
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func TestSplit_1kHzSineCarriedByMidBand(t *testing.T) {
	const sampleRate = 44100
	n := sampleRate // 1 second
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(math.Sin(2 * math.Pi * 1000 * float64(i) / sampleRate))
	}

	low, mid, high := Split(samples, sampleRate, 300, 2000, 16000)

	fullRMS := rms(samples)
	lowFrac := rms(low) / fullRMS
	midFrac := rms(mid) / fullRMS
	highFrac := rms(high) / fullRMS

	if midFrac < 0.9 {
		t.Errorf("mid band RMS fraction = %f, want > 0.9", midFrac)
	}
	if lowFrac > 0.05 {
		t.Errorf("low band RMS fraction = %f, want < 0.05", lowFrac)
	}
	if highFrac > 0.05 {
		t.Errorf("high band RMS fraction = %f, want < 0.05", highFrac)
	}
}

func TestSplit_PreservesLength(t *testing.T) {
	samples := make([]float32, 1000)
	low, mid, high := Split(samples, 44100, 300, 2000, 16000)
	if len(low) != 1000 || len(mid) != 1000 || len(high) != 1000 {
		t.Fatal("expected Split to preserve input length across all three bands")
	}
}

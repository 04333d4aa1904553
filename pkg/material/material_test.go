package material

import (
	"math/rand"
	"testing"
)

func TestNew_ConservationOfEnergy(t *testing.T) {
	m, err := New("brick", [NumBands]float64{0.7, 0.6, 0.5}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for b := 0; b < NumBands; b++ {
		sum := m.Reflection[b] + m.Refraction[b] + m.Absorption[b]
		if sum < 1-1e-6 || sum > 1+1e-6 {
			t.Errorf("band %d: r+t+a = %f, want ~1", b, sum)
		}
	}
}

func TestNew_RejectsOverBudget(t *testing.T) {
	_, err := New("impossible", [NumBands]float64{0.9, 0, 0}, &[NumBands]float64{0.3, 0, 0}, nil)
	if err == nil {
		t.Fatal("expected error for r+t > 1")
	}
}

func TestBounce_DegenerateAlwaysReflects(t *testing.T) {
	m, _ := New("vacuum", [NumBands]float64{0, 0, 0}, nil, nil)
	random := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		if bt := m.Bounce(BandMid, random); bt != Reflect {
			t.Fatalf("expected Reflect for degenerate material, got %v", bt)
		}
	}
}

func TestBounce_ProbabilityMatchesRatio(t *testing.T) {
	m, err := New("glass", [NumBands]float64{0.3, 0.3, 0.3}, &[NumBands]float64{0.1, 0.1, 0.1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	random := rand.New(rand.NewSource(42))
	const n = 1_000_000
	reflects := 0
	for i := 0; i < n; i++ {
		if m.Bounce(BandMid, random) == Reflect {
			reflects++
		}
	}
	p := float64(reflects) / float64(n)
	want := 0.3 / (0.3 + 0.1) // 0.75
	if p < want-0.005 || p > want+0.005 {
		t.Errorf("P(reflect) = %f, want %f +/- 0.005", p, want)
	}
}

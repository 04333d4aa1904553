package audio

import (
	"math"
	"testing"
)

func TestFloatBuffer_GrowsOnWrite(t *testing.T) {
	b := NewFloatBuffer()
	if b.At(100) != 0 {
		t.Fatal("expected 0 past capacity")
	}
	b.Set(100, 3.5)
	if b.At(100) != 3.5 {
		t.Fatalf("got %f, want 3.5", b.At(100))
	}
	if b.RealLength != 101 {
		t.Errorf("real length = %d, want 101", b.RealLength)
	}
}

func TestFloatBuffer_RMS(t *testing.T) {
	b := NewFloatBuffer()
	b.Set(0, 3)
	b.Set(1, 4)
	// rms of [3,4] = sqrt((9+16)/2) = sqrt(12.5)
	want := math.Sqrt(12.5)
	if math.Abs(b.RMS()-want) > 1e-9 {
		t.Errorf("rms = %f, want %f", b.RMS(), want)
	}
}

func TestFloatBuffer_RMS_EmptyIsZero(t *testing.T) {
	b := NewFloatBuffer()
	if b.RMS() != 0 {
		t.Errorf("expected 0 rms for empty buffer")
	}
}

func TestFloatBuffer_Max(t *testing.T) {
	b := NewFloatBuffer()
	b.Set(0, -5)
	b.Set(1, 2)
	if b.Max() != 5 {
		t.Errorf("max = %f, want 5", b.Max())
	}
}

func TestFloatBuffer_Normalize(t *testing.T) {
	b := NewFloatBuffer()
	b.Set(0, 2)
	b.Set(1, -4)
	b.Normalize(1, -1) // uses computed max (4)
	if math.Abs(b.At(1)-(-1)) > 1e-9 {
		t.Errorf("got %f, want -1", b.At(1))
	}
	if math.Abs(b.At(0)-0.5) > 1e-9 {
		t.Errorf("got %f, want 0.5", b.At(0))
	}
}

func TestFloatBuffer_Power(t *testing.T) {
	b := NewFloatBuffer()
	b.Set(0, -4)
	b.Power(0.5)
	if math.Abs(b.At(0)-(-2)) > 1e-9 {
		t.Errorf("got %f, want -2", b.At(0))
	}
}

func TestFloatBuffer_Truncate(t *testing.T) {
	b := NewFloatBuffer()
	b.Set(0, 1)
	b.Set(1, 2)
	b.Set(2, 3)
	b.Truncate(1)
	if b.RealLength != 1 {
		t.Errorf("real length = %d, want 1", b.RealLength)
	}

	b2 := NewFloatBuffer()
	b2.Truncate(0)
	if b2.RealLength != 1 {
		t.Errorf("truncate(0) should clamp to 1, got %d", b2.RealLength)
	}
}

func TestFloatBuffer_Length(t *testing.T) {
	b := NewFloatBuffer()
	b.Set(0, 0.01)
	b.Set(1, 0.5)
	b.Set(2, 0.01)
	if got := b.Length(-1); got != b.RealLength {
		t.Errorf("length(-1) = %d, want real_length %d", got, b.RealLength)
	}
	if got := b.Length(0.1); got != 2 {
		t.Errorf("length(0.1) = %d, want 2", got)
	}
	if got := b.Length(10); got != 0 {
		t.Errorf("length(10) = %d, want 0 (nothing exceeds threshold)", got)
	}
}

func TestFloatBuffer_InvariantFirstLessEqualRealLessEqualCapacity(t *testing.T) {
	b := NewFloatBuffer()
	b.Set(50, 1)
	b.Truncate(10)
	if !(b.FirstSample <= b.RealLength) {
		t.Errorf("invariant violated: first=%d real_length=%d", b.FirstSample, b.RealLength)
	}
}

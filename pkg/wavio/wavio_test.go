package wavio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteMonoReadMono_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.wav")

	want := make([]float32, 256)
	for i := range want {
		want[i] = float32(math.Sin(float64(i) * 0.1))
	}

	if err := WriteMono(path, want, false, 0); err != nil {
		t.Fatalf("WriteMono: %v", err)
	}

	got, sampleRate, err := ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono: %v", err)
	}
	if sampleRate != 44100 {
		t.Errorf("sampleRate = %d, want 44100", sampleRate)
	}
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-3 {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWriteMono_NormalizeScalesToPeak(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "norm.wav")

	samples := []float32{0.1, -0.4, 0.2}
	if err := WriteMono(path, samples, true, 1.0); err != nil {
		t.Fatalf("WriteMono: %v", err)
	}

	got, _, err := ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono: %v", err)
	}
	peak := peakOf(got)
	if math.Abs(peak-1.0) > 1e-2 {
		t.Errorf("normalized peak = %v, want ~1.0", peak)
	}
}

func TestWriteStereo_InterleavesChannels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stereo.wav")

	left := []float32{1, 0, -1, 0}
	right := []float32{0, 1, 0, -1}
	if err := WriteStereo(path, left, right, false); err != nil {
		t.Fatalf("WriteStereo: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
}

func TestReadMono_MissingFileReturnsIOError(t *testing.T) {
	_, _, err := ReadMono("/nonexistent/path/does-not-exist.wav")
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	var ioErr *IOError
	if !asIOError(err, &ioErr) {
		t.Fatalf("expected an *IOError, got %T", err)
	}
}

func asIOError(err error, target **IOError) bool {
	if e, ok := err.(*IOError); ok {
		*target = e
		return true
	}
	return false
}

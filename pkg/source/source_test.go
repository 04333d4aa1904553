package source

import (
	"math/rand"
	"testing"

	"github.com/ear-go/ear/pkg/core"
	"github.com/ear-go/ear/pkg/geometry"
)

func TestSource_LoadMonoThenBandSplitsLazily(t *testing.T) {
	s := NewMono(nil, 0, Location{Point: &core.Vec3{}}, 1, 0, DefaultCrossoverFreqs)
	samples := make([]float32, 512)
	for i := range samples {
		samples[i] = 0.5
	}
	s.LoadMono(samples, 44100)

	low := s.Band(BandLow)
	mid := s.Band(BandMid)
	high := s.Band(BandHigh)
	if len(low.Samples) != len(samples) || len(mid.Samples) != len(samples) || len(high.Samples) != len(samples) {
		t.Fatalf("band lengths = %d/%d/%d, want %d each", len(low.Samples), len(mid.Samples), len(high.Samples), len(samples))
	}
}

func TestSource_LoadTripleBandSkipsCrossover(t *testing.T) {
	s := NewTripleBand(nil, nil, nil, 44100, Location{Point: &core.Vec3{}}, 1, 0)
	low := []float32{1, 2, 3}
	mid := []float32{4, 5}
	high := []float32{6}
	s.LoadTripleBand(low, mid, high, 44100)

	if got := s.Band(BandLow).Samples; len(got) != 3 {
		t.Errorf("BandLow len = %d, want 3", len(got))
	}
	if got := s.Band(BandHigh).Samples; len(got) != 1 {
		t.Errorf("BandHigh len = %d, want 1", len(got))
	}
}

func TestSoundFile_SectionClampsToBounds(t *testing.T) {
	f := SoundFile{Samples: make([]float32, 10), Offset: 5}

	mid := f.Section(2, 4)
	if len(mid.Samples) != 4 || mid.Offset != 7 {
		t.Errorf("Section(2,4) = len %d offset %d, want len 4 offset 7", len(mid.Samples), mid.Offset)
	}

	overrun := f.Section(8, 10)
	if len(overrun.Samples) != 2 {
		t.Errorf("Section(8,10) len = %d, want 2 (clamped)", len(overrun.Samples))
	}
}

func TestSource_SoundRayFromStaticPoint(t *testing.T) {
	loc := Location{Point: &core.Vec3{X: 1, Y: 2, Z: 3}}
	s := NewMono(nil, 0, loc, 1, 0, DefaultCrossoverFreqs)
	random := rand.New(rand.NewSource(1))

	ray := s.SoundRay(0, random)
	if ray.Origin != (core.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("SoundRay origin = %+v, want the source's static point", ray.Origin)
	}
}

func TestSource_SoundRayFromMeshEmitterStaysOnSurface(t *testing.T) {
	tris := []geometry.Triangle{
		geometry.NewTriangle(
			core.NewVec3(0, 0, 0),
			core.NewVec3(1, 0, 0),
			core.NewVec3(0, 1, 0),
			0,
		),
	}
	absorb := func(int) float64 { return 0.1 }
	mesh := geometry.NewMesh(tris, absorb)

	loc := Location{Mesh: mesh}
	if !loc.IsMeshEmitter() {
		t.Fatal("Location with a Mesh should report IsMeshEmitter() == true")
	}

	s := NewMono(nil, 0, loc, 1, 0, DefaultCrossoverFreqs)
	random := rand.New(rand.NewSource(1))
	ray := s.SoundRay(0, random)

	if ray.Origin.Z != 0 {
		t.Errorf("mesh-emitted ray origin.Z = %v, want 0 (triangle lies in z=0 plane)", ray.Origin.Z)
	}
}

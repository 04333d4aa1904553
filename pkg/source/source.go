// Package source implements sound sources: carriers of dry PCM audio plus
// a location (a point, an animated point, or a mesh area emitter) that
// the path renderer samples outgoing rays from and convolves against.
package source

import (
	"math/rand"

	"github.com/ear-go/ear/pkg/core"
	"github.com/ear-go/ear/pkg/crossover"
	"github.com/ear-go/ear/pkg/geometry"
	"github.com/ear-go/ear/pkg/keyframe"
)

// Location is the tagged variant a source (or listener) can be placed at:
// a static point, an animated point indexed by keyframe, or a mesh area
// emitter sampled uniformly by area.
type Location struct {
	Point    *core.Vec3
	Animated *keyframe.Animated[core.Vec3]
	Mesh     *geometry.Mesh
}

// IsMeshEmitter reports whether this location samples from mesh area
// rather than resolving to a single point.
func (l Location) IsMeshEmitter() bool { return l.Mesh != nil }

// At resolves the location to a point for keyframe kf (ignored for static
// and mesh locations).
func (l Location) At(kf int) core.Vec3 {
	switch {
	case l.Animated != nil:
		return l.Animated.At(kf)
	case l.Point != nil:
		return *l.Point
	default:
		return core.Vec3{}
	}
}

// CrossoverFreqs holds the per-source Linkwitz-Riley crossover
// frequencies in Hz, defaulting to 300/2000/16000 Hz; a FREQ chunk
// overrides these.
type CrossoverFreqs struct {
	F1, F2, F3 float64
}

// DefaultCrossoverFreqs is the default 0.3/2/16 kHz split.
var DefaultCrossoverFreqs = CrossoverFreqs{F1: 300, F2: 2000, F3: 16000}

// Band indices into a source's three frequency bands.
const (
	BandLow = iota
	BandMid
	BandHigh
	NumBands
)

// SoundFile is a non-owning view over a band's PCM samples, carrying the
// source's sample offset plus any additional window start so downstream
// arrival-time math lines up with the dry recording.
type SoundFile struct {
	Samples []float32
	Offset  int // source.SampleOffset + window start
}

// Section returns a non-owning window [start, start+length) into f,
// carrying the combined offset forward.
func (f SoundFile) Section(start, length int) SoundFile {
	end := start + length
	if end > len(f.Samples) {
		end = len(f.Samples)
	}
	if start > end {
		start = end
	}
	return SoundFile{Samples: f.Samples[start:end], Offset: f.Offset + start}
}

// Source is the tagged variant Mono | TripleBand. Mono sources own raw
// PCM and lazily derive band buffers via the crossover; TripleBand
// sources are read directly from three pre-split WAV files.
type Source struct {
	Location     Location
	Gain         float64
	SampleOffset int
	Freqs        CrossoverFreqs

	// WavPath and BandPaths carry the decoded container's file references
	// through to the loader that reads PCM via pkg/wavio; Builder decodes
	// the container only and leaves mono/bands nil until then.
	WavPath   string
	BandPaths [NumBands]string

	mono       []float32 // nil unless this is a Mono source
	sampleRate int
	bands      [NumBands][]float32 // lazily populated for Mono; preset for TripleBand
	split      bool
}

// LoadMono installs samples decoded from WavPath (or an inline-provided
// source) at sampleRate, making the source ready for Band.
func (s *Source) LoadMono(samples []float32, sampleRate int) {
	s.mono = samples
	s.sampleRate = sampleRate
	s.split = false
}

// LoadTripleBand installs pre-split band buffers decoded from BandPaths.
func (s *Source) LoadTripleBand(low, mid, high []float32, sampleRate int) {
	s.bands = [NumBands][]float32{low, mid, high}
	s.sampleRate = sampleRate
	s.split = true
}

// NewMono builds a mono source from raw PCM, deferring the crossover
// split until Band is first called.
func NewMono(samples []float32, sampleRate int, loc Location, gain float64, sampleOffset int, freqs CrossoverFreqs) *Source {
	return &Source{
		Location:     loc,
		Gain:         gain,
		SampleOffset: sampleOffset,
		Freqs:        freqs,
		mono:         samples,
		sampleRate:   sampleRate,
	}
}

// NewTripleBand builds a source from three pre-split band buffers; no
// crossover filtering is ever applied.
func NewTripleBand(low, mid, high []float32, sampleRate int, loc Location, gain float64, sampleOffset int) *Source {
	return &Source{
		Location:     loc,
		Gain:         gain,
		SampleOffset: sampleOffset,
		sampleRate:   sampleRate,
		bands:        [NumBands][]float32{low, mid, high},
		split:        true,
	}
}

// Band returns a view over band i, splitting the source's mono PCM into
// three band buffers on first access if this is a Mono source.
func (s *Source) Band(i int) SoundFile {
	if s.mono != nil && !s.split {
		low, mid, high := crossover.Split(s.mono, s.sampleRate, s.Freqs.F1, s.Freqs.F2, s.Freqs.F3)
		s.bands = [NumBands][]float32{low, mid, high}
		s.split = true
	}
	return SoundFile{Samples: s.bands[i], Offset: s.SampleOffset}
}

// SoundRay draws a fresh outgoing ray for keyframe kf: a point/direction
// pair sampled from a mesh emitter's surface, or from the source's
// (possibly animated) point location with a uniformly sampled direction.
func (s *Source) SoundRay(kf int, random *rand.Rand) core.Ray {
	if s.Location.IsMeshEmitter() {
		p, n, ok := s.Location.Mesh.SamplePoint(random)
		if !ok {
			return core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))
		}
		d := core.SampleHemisphere(n, random)
		return core.NewRay(p, d)
	}
	p := s.Location.At(kf)
	d := core.SampleSphere(random)
	return core.NewRay(p, d)
}

// Package listener implements the two listener kinds a scene can contain:
// a single-track Mono sink and a two-track, binaurally-split Stereo sink.
// Every render task (one per source x keyframe x band) works against its
// own blank clone of a listener, sharing only its static placement data.
package listener

import (
	"math"

	"github.com/ear-go/ear/pkg/audio"
	"github.com/ear-go/ear/pkg/core"
	"github.com/ear-go/ear/pkg/keyframe"
)

// headSize is the per-ear time shift in seconds from the head centre
// (0.5 m at the speed of sound). Stereo shifts each ear by d*headSize in
// opposite directions, so a fully lateral arrival puts the two ears
// 2*headSize apart.
const headSize = 0.5 / core.SpeedOfSound

// Listener is the tagged variant Mono | Stereo. Only one of Mono/Stereo
// is non-nil for any given value.
type Listener struct {
	Filename      string
	SaveProcessed bool

	Mono   *Mono
	Stereo *Stereo

	HasSamples  bool
	IsProcessed bool
	IsTruncated bool
}

// place is a static-or-animated point, shared by Mono's location and
// Stereo's location/right-ear direction.
type place struct {
	point    core.Vec3
	animated *keyframe.Animated[core.Vec3]
}

func (p place) at(kf int) core.Vec3 {
	if p.animated != nil {
		return p.animated.At(kf)
	}
	return p.point
}

// Mono is a single-location, single-track listener.
type Mono struct {
	location place
	Track    *audio.RecorderTrack
}

// Location resolves the listener's position at keyframe kf.
func (m *Mono) Location(kf int) core.Vec3 { return m.location.at(kf) }

// Stereo is a two-track listener with a "right ear" unit vector used to
// compute interaural time and intensity differences.
type Stereo struct {
	location    place
	rightEarDir place
	Left        *audio.RecorderTrack
	Right       *audio.RecorderTrack
}

// Location resolves the listener's position at keyframe kf.
func (st *Stereo) Location(kf int) core.Vec3 { return st.location.at(kf) }

// RightEarDir resolves the listener's right-ear unit vector at keyframe kf.
func (st *Stereo) RightEarDir(kf int) core.Vec3 { return st.rightEarDir.at(kf) }

// NewMono constructs a fresh Mono listener at a static location.
func NewMono(filename string, location core.Vec3, saveProcessed bool) *Listener {
	return &Listener{
		Filename:      filename,
		SaveProcessed: saveProcessed,
		Mono:          &Mono{location: place{point: location}, Track: audio.NewRecorderTrack()},
	}
}

// NewAnimatedMono constructs a Mono listener whose location varies by
// keyframe.
func NewAnimatedMono(filename string, location keyframe.Animated[core.Vec3], saveProcessed bool) *Listener {
	return &Listener{
		Filename:      filename,
		SaveProcessed: saveProcessed,
		Mono:          &Mono{location: place{animated: &location}, Track: audio.NewRecorderTrack()},
	}
}

// NewStereo constructs a fresh Stereo listener at static location and
// right-ear direction.
func NewStereo(filename string, location, rightEarDir core.Vec3, saveProcessed bool) *Listener {
	return &Listener{
		Filename:      filename,
		SaveProcessed: saveProcessed,
		Stereo: &Stereo{
			location:    place{point: location},
			rightEarDir: place{point: rightEarDir},
			Left:        audio.NewRecorderTrack(),
			Right:       audio.NewRecorderTrack(),
		},
	}
}

// NewAnimatedStereo constructs a Stereo listener whose location and/or
// right-ear direction vary by keyframe.
func NewAnimatedStereo(filename string, location, rightEarDir keyframe.Animated[core.Vec3], saveProcessed bool) *Listener {
	return &Listener{
		Filename:      filename,
		SaveProcessed: saveProcessed,
		Stereo: &Stereo{
			location:    place{animated: &location},
			rightEarDir: place{animated: &rightEarDir},
			Left:        audio.NewRecorderTrack(),
			Right:       audio.NewRecorderTrack(),
		},
	}
}

// Record writes one path contribution into the listener's track(s).
//
// dir is a unit direction used only by Stereo: with d = dir·rightEar,
// d > 0 delays and attenuates the right ear and d < 0 the left ear. The
// path tracer passes the vertex-to-listener direction for bounce
// contributions and the listener-to-source direction for direct sound.
// a is the path's carried amplitude, t its arrival time in seconds, dist
// the path length in meters (used to size and scale the splat), band the
// frequency band index (0=low,1=mid,2=high; used only by Stereo's
// intensity-difference exponent), and kf the current keyframe (used only
// by Stereo, to resolve its possibly-animated right-ear direction).
func (l *Listener) Record(dir core.Vec3, a, t, dist float64, band, kf int) {
	switch {
	case l.Mono != nil:
		l.Mono.record(a, t, dist)
	case l.Stereo != nil:
		l.Stereo.record(dir, a, t, dist, band, kf)
	}
	l.HasSamples = true
}

func splatWidth(dist float64) int {
	w := int(math.Sqrt(dist))
	if w < 1 {
		w = 1
	}
	return w
}

func writeSplat(track *audio.RecorderTrack, start int, width int, amp0 float64) {
	if start < 0 {
		return
	}
	step := amp0 / float64(width)
	amp := amp0
	for i := 0; i < width; i++ {
		track.Add(start+i, amp)
		amp -= step
	}
}

func (m *Mono) record(a, t, dist float64) {
	s := int(math.Floor(t * audio.SampleRate))
	width := splatWidth(dist)
	amp0 := 2 * a / math.Sqrt(dist)
	writeSplat(m.Track, s, width, amp0)
}

func (st *Stereo) record(dir core.Vec3, a, t, dist float64, band, kf int) {
	d := dir.Dot(st.rightEarDir.at(kf))
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}

	sL := int(math.Floor((t - d*headSize) * audio.SampleRate))
	sR := int(math.Floor((t + d*headSize) * audio.SampleRate))

	delta := math.Min(0.5, math.Abs(d))
	f := math.Pow(1-delta, float64(band))

	ampL := 2 * a / math.Sqrt(dist)
	ampR := ampL
	if d < 0 {
		ampL *= f
	} else if d > 0 {
		ampR *= f
	}

	// width uses ceil here (spec distinguishes Mono's floor-based width
	// from Stereo's ceil-based width).
	width := int(math.Ceil(math.Sqrt(dist)))
	if width < 1 {
		width = 1
	}

	writeSplat(st.Left, sL, width, ampL)
	writeSplat(st.Right, sR, width, ampR)
}

// BlankCopy returns a listener sharing this one's filename, location/ear
// data and SaveProcessed flag, but with fresh, empty tracks and cleared
// status flags. Used to give each render task its own isolated clone.
func (l *Listener) BlankCopy() *Listener {
	clone := &Listener{Filename: l.Filename, SaveProcessed: l.SaveProcessed}
	if l.Mono != nil {
		clone.Mono = &Mono{location: l.Mono.location, Track: audio.NewRecorderTrack()}
	}
	if l.Stereo != nil {
		clone.Stereo = &Stereo{
			location:    l.Stereo.location,
			rightEarDir: l.Stereo.rightEarDir,
			Left:        audio.NewRecorderTrack(),
			Right:       audio.NewRecorderTrack(),
		}
	}
	return clone
}

// Tracks returns the listener's IR tracks in ear order (length 1 for
// Mono, 2 for Stereo: left, right).
func (l *Listener) Tracks() []*audio.RecorderTrack {
	if l.Mono != nil {
		return []*audio.RecorderTrack{l.Mono.Track}
	}
	return []*audio.RecorderTrack{l.Stereo.Left, l.Stereo.Right}
}

package audio

// RecorderTrack is a listener's recorded impulse response for one
// frequency band: a FloatBuffer plus the convolution operations that turn
// a dry source signal and this track into an output track.
type RecorderTrack struct {
	FloatBuffer
}

// NewRecorderTrack returns an empty track.
func NewRecorderTrack() *RecorderTrack {
	return &RecorderTrack{}
}

// ConvolveInto performs direct time-domain convolution of dry against this
// track (treated as an impulse response), shifted by offset samples, and
// accumulates the result into out. This is the "straight" convolution
// used when the listener did not move across the dry segment's span.
func (t *RecorderTrack) ConvolveInto(out *FloatBuffer, dry []float64, offset int) {
	for j := t.FirstSample; j < t.RealLength; j++ {
		ir := t.At(j)
		if ir == 0 {
			continue
		}
		base := offset + j
		for i, d := range dry {
			out.Add(base+i, d*ir)
		}
	}
}

// ConvolveBlendInto performs the interpolated convolution between two
// recorder tracks (self = A at the start keyframe, other = B at the next),
// linearly blending the impulse response sample-by-sample as dry advances
// from index 0 to len(dry)-1, and accumulates into out at offset.
//
// This reproduces the listener gliding smoothly between two IR snapshots
// rather than snapping discretely between them at each keyframe boundary.
func (t *RecorderTrack) ConvolveBlendInto(out *FloatBuffer, other *RecorderTrack, dry []float64, offset int) {
	first := t.FirstSample
	if other.FirstSample < first {
		first = other.FirstSample
	}
	last := t.RealLength
	if other.RealLength > last {
		last = other.RealLength
	}
	n := len(dry)
	if n == 0 {
		return
	}
	for j := first; j < last; j++ {
		a := t.At(j)
		b := other.At(j)
		for i, d := range dry {
			alpha := float64(i) / float64(n)
			p := (1-alpha)*a + alpha*b
			if p == 0 {
				continue
			}
			out.Add(offset+j+i, d*p)
		}
	}
}

// AddTrack accumulates other's samples into t over [0, other.Length(0)).
func (t *RecorderTrack) AddTrack(other *RecorderTrack) {
	n := other.Length(0)
	for i := 0; i < n; i++ {
		t.FloatBuffer.Add(i, other.At(i))
	}
}

// T60 estimates the time in seconds from the end of the direct sound peak
// to the last sample still above a floor 60 dB below that peak. It walks
// the track in two states: first tracking the rising direct-sound peak,
// then watching for the last sample exceeding the decay floor.
func (t *RecorderTrack) T60() float64 {
	prev := -1.0
	directOffset := 0
	directIntensity := 0.0
	state := stateRising

	lastSignificant := 0
	minGain := 0.0

	for j := t.FirstSample; j < t.RealLength; j++ {
		s := t.At(j)
		switch state {
		case stateRising:
			if s >= prev {
				prev = s
				continue
			}
			directIntensity = prev
			minGain = directIntensity / decay60dB
			directOffset = j
			state = stateDecay
		case stateDecay:
			if s > minGain {
				lastSignificant = j
			}
		}
	}

	return float64(lastSignificant-directOffset) / SampleRate
}

type recorderState int

const (
	stateRising recorderState = iota
	stateDecay
)

// decay60dB is 10^(60/20), the linear amplitude ratio of a 60 dB drop.
const decay60dB = 1000.0

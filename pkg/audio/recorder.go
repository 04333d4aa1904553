package audio

// Recorder aggregates a listener's processed (convolved) tracks across
// every SceneContext that contributed to it, and writes the final mix.
// One Recorder exists per original (pre-clone) listener.
type Recorder struct {
	Processed []*RecorderTrack
}

// NewRecorder returns a Recorder with n empty processed-track channels
// (1 for a Mono listener, 2 for Stereo).
func NewRecorder(channels int) *Recorder {
	tracks := make([]*RecorderTrack, channels)
	for i := range tracks {
		tracks[i] = NewRecorderTrack()
	}
	return &Recorder{Processed: tracks}
}

// Add accumulates other's channels into r's, channel-aligned.
func (r *Recorder) Add(other []*RecorderTrack) {
	for i, t := range other {
		if i >= len(r.Processed) {
			break
		}
		r.Processed[i].AddTrack(t)
	}
}

// Normalize scales every channel so the loudest sample across all
// channels becomes m; a non-negative ref overrides the recomputed peak.
func (r *Recorder) Normalize(m, ref float64) {
	peak := ref
	if peak < 0 {
		for _, t := range r.Processed {
			if v := t.Max(); v > peak {
				peak = v
			}
		}
	}
	if peak <= 0 {
		return
	}
	for _, t := range r.Processed {
		t.Multiply(m / peak)
	}
}

// Truncate clamps every channel's real length to l.
func (r *Recorder) Truncate(l int) {
	for _, t := range r.Processed {
		t.Truncate(l)
	}
}

// Power applies Stevens' power-law compression to every channel.
func (r *Recorder) Power(p float64) {
	for _, t := range r.Processed {
		t.Power(p)
	}
}

// Length returns the longest channel's Length(th).
func (r *Recorder) Length(th float64) int {
	n := 0
	for _, t := range r.Processed {
		if l := t.Length(th); l > n {
			n = l
		}
	}
	return n
}

// Samples returns channel i as a float32 slice ready for pkg/wavio,
// covering [0, RealLength).
func (r *Recorder) Samples(i int) []float32 {
	t := r.Processed[i]
	out := make([]float32, t.RealLength)
	for j := range out {
		out[j] = float32(t.At(j))
	}
	return out
}

// Convolve runs the IRProcessor contract from a RecorderContext: a
// straight convolution if secondary is nil, otherwise the
// keyframe-interpolated blend.
func Convolve(dry []float64, primary, secondary *RecorderTrack, offset int) *RecorderTrack {
	out := NewRecorderTrack()
	if secondary == nil {
		primary.ConvolveInto(&out.FloatBuffer, dry, offset)
		return out
	}
	primary.ConvolveBlendInto(&out.FloatBuffer, secondary, dry, offset)
	return out
}

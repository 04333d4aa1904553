package scheduler

import (
	"github.com/ear-go/ear/pkg/audio"
	"github.com/ear-go/ear/pkg/listener"
	"github.com/ear-go/ear/pkg/scene"
	"github.com/ear-go/ear/pkg/source"
)

// SceneContext is one Render task: everything pathtracer.Render needs
// for one (source, keyframe, band) tuple, plus the listener clones it
// mutates in place.
type SceneContext struct {
	Scene            *scene.Scene
	Source           *source.Source
	Band             int
	Keyframe         int // -1 when the scene has no keyframe table
	NumSamples       int
	AbsorptionFactor float64
	DryLevel         float64
	Listeners        []*listener.Listener
}

// RecorderContext is one Process task: a dry PCM slice to convolve
// against a primary IR, an optional secondary IR for keyframe
// cross-fading, and the destination track plus time offset.
type RecorderContext struct {
	Dry          []float64
	Primary      *audio.RecorderTrack
	Secondary    *audio.RecorderTrack // nil unless cross-fading between keyframes
	SegmentLen   int                  // dry samples spanned by the keyframe segment; unused unless Secondary != nil
	Offset       int
	Out          *audio.FloatBuffer
	ListenerName string
}

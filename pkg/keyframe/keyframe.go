// Package keyframe provides the scene-wide keyframe time table and the
// generic per-keyframe value container animated entities are built from.
// It has no dependency on the rest of the scene graph so that both
// pkg/scene and pkg/source can depend on it without a cycle.
package keyframe

import "fmt"

// Keyframes is the scene-wide ordered sequence of time offsets, in
// seconds, that every animated entity is sampled against. Empty when the
// scene defines no animation.
type Keyframes struct {
	Offsets []float64
}

// Len returns the number of keyframes.
func (k Keyframes) Len() int { return len(k.Offsets) }

// SegmentLength returns the duration, in seconds, of the segment starting
// at keyframe i and ending at keyframe i+1.
func (k Keyframes) SegmentLength(i int) float64 {
	return k.Offsets[i+1] - k.Offsets[i]
}

// Animated holds one value of T per keyframe. It is only constructed when
// the scene defines keyframes; a scene with no keyframes uses a static T
// instead.
type Animated[T any] struct {
	Values []T
}

// NewAnimated validates that values has exactly keyframes.Len() entries
// and returns the Animated wrapper.
func NewAnimated[T any](keyframes Keyframes, values []T) (Animated[T], error) {
	if len(values) != keyframes.Len() {
		return Animated[T]{}, &CountError{Want: keyframes.Len(), Got: len(values)}
	}
	return Animated[T]{Values: values}, nil
}

// At returns the value at keyframe i.
func (a Animated[T]) At(i int) T {
	return a.Values[i]
}

// CountError reports an animated entity whose value count doesn't match
// the scene's keyframe count.
type CountError struct {
	Want, Got int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("keyframe: animated entity has %d values, scene defines %d", e.Got, e.Want)
}

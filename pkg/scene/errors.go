package scene

import "fmt"

// ReferenceError reports a decode-order violation: a mesh naming a
// material that hasn't been decoded yet, a source naming a mesh that
// hasn't been decoded yet, or an animated entity whose value count
// doesn't match the scene's keyframe count.
type ReferenceError struct {
	Kind string // "material", "mesh", or "keyframe-count"
	Name string
	Msg  string
}

func (e *ReferenceError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("scene: %s reference error for %q: %s", e.Kind, e.Name, e.Msg)
	}
	return fmt.Sprintf("scene: %s reference error: %s", e.Kind, e.Msg)
}

// Package material models the per-frequency-band bounce behavior of
// surfaces: how much energy reflects, refracts, absorbs, and how much of
// the non-absorbed energy is concentrated in a specular lobe.
package material

import "math/rand"

// BounceType is the outcome of a material bounce decision. Absorb is
// never directly emitted by Bounce: absorption is modeled as an energy
// attenuation applied to the carried intensity after a Reflect or Refract
// bounce, not as a terminating event.
type BounceType int

const (
	Reflect BounceType = iota
	Refract
	Absorb
)

func (b BounceType) String() string {
	switch b {
	case Reflect:
		return "reflect"
	case Refract:
		return "refract"
	default:
		return "absorb"
	}
}

// NumBands is the number of frequency bands every material coefficient is
// defined over: low, mid, high.
const NumBands = 3

const (
	BandLow = iota
	BandMid
	BandHigh
)

// Material holds per-band reflection, refraction, specularity and derived
// absorption coefficients. Band index 0/1/2 maps to low/mid/high.
type Material struct {
	Name string

	Reflection  [NumBands]float64
	Refraction  [NumBands]float64
	Specularity [NumBands]float64
	Absorption  [NumBands]float64 // derived: 1 - r - t
}

// New builds a Material from reflection coefficients, with optional
// refraction and specularity (both default to zero per band, matching the
// optional flt4 blocks in the container format). It returns an error if
// any derived absorption coefficient would be negative, i.e. r+t > 1.
func New(name string, reflection [NumBands]float64, refraction, specularity *[NumBands]float64) (*Material, error) {
	m := &Material{Name: name, Reflection: reflection}
	if refraction != nil {
		m.Refraction = *refraction
	}
	if specularity != nil {
		m.Specularity = *specularity
	}
	for b := 0; b < NumBands; b++ {
		a := 1 - m.Reflection[b] - m.Refraction[b]
		if a < -1e-9 {
			return nil, &InvalidError{Name: name, Band: b, R: m.Reflection[b], T: m.Refraction[b]}
		}
		if a < 0 {
			a = 0
		}
		m.Absorption[b] = a
	}
	return m, nil
}

// InvalidError reports a material whose reflection+refraction coefficients
// exceed 1 for some band, making the derived absorption negative.
type InvalidError struct {
	Name string
	Band int
	R, T float64
}

func (e *InvalidError) Error() string {
	return "material: invalid coefficients"
}

// IsTransparent reports whether this material has any non-zero refraction
// coefficient, i.e. whether it was defined with a refraction block at all.
func (m *Material) IsTransparent() bool {
	for _, t := range m.Refraction {
		if t != 0 {
			return true
		}
	}
	return false
}

// Bounce decides whether a ray striking this material reflects or
// refracts for the given band. When both reflection and refraction
// coefficients are degenerate (< 1e-4), it always returns Reflect.
func (m *Material) Bounce(band int, random *rand.Rand) BounceType {
	r := m.Reflection[band]
	t := m.Refraction[band]
	if r < 1e-4 && t < 1e-4 {
		return Reflect
	}
	pReflect := r / (r + t)
	if random.Float64() <= pReflect {
		return Reflect
	}
	return Refract
}

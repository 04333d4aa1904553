// Package pathtracer implements the Monte Carlo path sampler: for one
// (source, keyframe, frequency band) tuple it fires num_samples paths off
// the source and, at every bounce, contributes to every listener via
// next-event estimation, then applies the direct-sound lobe.
package pathtracer

import (
	"math"
	"math/rand"

	"github.com/ear-go/ear/pkg/core"
	"github.com/ear-go/ear/pkg/listener"
	"github.com/ear-go/ear/pkg/material"
	"github.com/ear-go/ear/pkg/scene"
	"github.com/ear-go/ear/pkg/source"
)

// specularExponent sharpens the specular lobe's contribution weight at
// next-event-estimation time; E in w = s*(E+1)*spec^E + (1-s)*diff below.
const specularExponent = 1000.0

// maxBounces caps the per-path bounce count.
const maxBounces = 1000

// intensityFloor is the carried intensity below which a path is
// abandoned as perceptually negligible.
const intensityFloor = 1e-8

// Params configures one render task: a single (source, keyframe, band)
// tuple's contribution to a set of listener clones.
type Params struct {
	Scene            *scene.Scene
	Source           *source.Source
	Band             int
	Keyframe         int
	NumSamples       int
	AbsorptionFactor float64 // 1 - absorption[band], per-meter air attenuation
	DryLevel         float64
	Listeners        []*listener.Listener // per-task clones, mutated in place
	Random           *rand.Rand
}

// Render fires p.NumSamples paths from p.Source and accumulates their
// next-event-estimation contributions into p.Listeners, then applies the
// direct-sound lobe and per-path/gain normalization.
func Render(p Params) {
	for i := 0; i < p.NumSamples; i++ {
		renderOnePath(p)
	}

	invN := 1.0 / float64(p.NumSamples)
	for _, l := range p.Listeners {
		for _, track := range l.Tracks() {
			track.Multiply(invN)
		}
	}

	if !p.Source.Location.IsMeshEmitter() {
		recordDirectSound(p)
	}

	gain2 := p.Source.Gain * p.Source.Gain
	for _, l := range p.Listeners {
		for _, track := range l.Tracks() {
			track.Multiply(gain2)
		}
	}
}

func renderOnePath(p Params) {
	kf := p.Keyframe
	intensity := 1.0
	totalPath := 0.0
	prevDir := core.Vec3{}
	ray := p.Source.SoundRay(kf, p.Random)

	for bounce := 0; bounce < maxBounces; bounce++ {
		var normal core.Vec3
		var mat *material.Material
		var bounceType material.BounceType

		if bounce > 0 {
			newRay, n, segLen, m, bt, ok := p.Scene.Bounce(p.Band, ray, p.Random)
			if !ok {
				break
			}
			intensity *= math.Pow(p.AbsorptionFactor, segLen)
			totalPath += segLen
			ray = newRay
			normal, mat, bounceType = n, m, bt
			intensity *= mat.Absorption[p.Band]
		}

		if !isFiniteScalar(intensity) {
			break
		}
		if intensity < intensityFloor {
			break
		}

		contributeToListeners(p, ray, normal, mat, bounceType, prevDir, intensity, totalPath, bounce)

		prevDir = ray.Direction.Normalize()
	}
}

func contributeToListeners(p Params, ray core.Ray, normal core.Vec3, mat *material.Material, bounceType material.BounceType, prevDir core.Vec3, intensity, totalPath float64, bounce int) {
	if bounce == 0 && !p.Source.Location.IsMeshEmitter() {
		return
	}

	kf := p.Keyframe
	for _, l := range p.Listeners {
		seg, ok := p.Scene.Connect(ray.Origin, listenerLocation(l, kf))
		if !ok {
			continue
		}
		lsDir := seg.UnitDir()
		dist := seg.Length()

		dot := 1.0
		if bounce > 0 {
			dot = lsDir.Dot(normal)
		}
		if dot <= 0 {
			continue
		}

		contribution := intensity
		if bounce > 0 {
			specCoef := mat.Specularity[p.Band]
			spec, diff := specDiffWeights(bounceType, prevDir, normal, lsDir)
			w := specCoef*(specularExponent+1)*math.Pow(spec, specularExponent) + (1-specCoef)*diff
			contribution *= w
		}

		contribution *= math.Pow(p.AbsorptionFactor, dist)
		contribution *= 1 / (2 * math.Pi * dist * dist)

		if !isFiniteScalar(contribution) {
			continue
		}
		if bounce%2 == 1 {
			contribution *= -1
		}

		t := (totalPath + dist) / core.SpeedOfSound
		l.Record(lsDir, contribution, t, totalPath+dist, p.Band, kf)
	}
}

// specDiffWeights computes the specular/diffuse weighting terms for a
// bounce whose incoming direction was prevDir, whose surface normal is n,
// and whose outgoing next-event-estimation connection direction is lsDir.
func specDiffWeights(bounceType material.BounceType, prevDir, n, lsDir core.Vec3) (spec, diff float64) {
	if bounceType == material.Refract {
		spec = math.Max(0, prevDir.Dot(lsDir))
		diff = n.Dot(prevDir)
		return spec, diff
	}
	refl := core.Reflect(prevDir, n)
	spec = math.Max(0, refl.Dot(lsDir))
	diff = -n.Dot(prevDir)
	return spec, diff
}

func isFiniteScalar(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func listenerLocation(l *listener.Listener, kf int) core.Vec3 {
	if l.Mono != nil {
		return l.Mono.Location(kf)
	}
	return l.Stereo.Location(kf)
}

func recordDirectSound(p Params) {
	kf := p.Keyframe
	srcLoc := p.Source.Location.At(kf)
	for _, l := range p.Listeners {
		loc := listenerLocation(l, kf)
		seg, ok := p.Scene.Connect(loc, srcLoc)
		if !ok {
			continue
		}
		length := seg.Length()
		if length == 0 {
			continue
		}
		dir := seg.UnitDir()
		amp := 1 / (4 * math.Pi * length * length) * math.Pow(p.AbsorptionFactor, length) * p.DryLevel
		t := length / core.SpeedOfSound
		l.Record(dir, amp, t, length, p.Band, kf)
	}
}

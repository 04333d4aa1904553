package scene

import (
	"github.com/ear-go/ear/pkg/config"
	"github.com/ear-go/ear/pkg/container"
	"github.com/ear-go/ear/pkg/core"
	"github.com/ear-go/ear/pkg/geometry"
	"github.com/ear-go/ear/pkg/keyframe"
	"github.com/ear-go/ear/pkg/listener"
	"github.com/ear-go/ear/pkg/material"
	"github.com/ear-go/ear/pkg/source"
)

// Builder decodes a .EAR container into a Scene plus the engine-level
// Settings it carried. Chunks must appear in file order; MAT chunks must
// precede any MESH that references them by name (ReferenceError
// otherwise).
type Builder struct {
	decoder *container.Decoder

	settings *config.Settings
	keys     keyframe.Keyframes

	materialIndex map[string]int
	materials     []*material.Material

	meshesByName map[string]*geometry.Mesh
	combined     *geometry.Mesh

	sources   []*source.Source
	listeners []*listener.Listener

	pendingFreq *source.CrossoverFreqs
}

// Build decodes every chunk in d and returns the resulting Scene and
// Settings.
func Build(d *container.Decoder) (*Scene, *config.Settings, error) {
	b := &Builder{
		decoder:       d,
		settings:      config.New(),
		materialIndex: make(map[string]int),
		meshesByName:  make(map[string]*geometry.Mesh),
		combined:      geometry.NewMesh(nil, nil),
	}
	if err := b.run(); err != nil {
		return nil, nil, err
	}

	sc := &Scene{
		Mesh:      b.combined,
		Materials: b.materials,
		Sources:   b.sources,
		Listeners: b.listeners,
		Keyframes: b.keys,
	}
	return sc, b.settings, nil
}

func (b *Builder) run() error {
	for !b.decoder.Done() {
		tag, err := b.decoder.Peek()
		if err != nil {
			return err
		}
		switch tag {
		case "SET ":
			if err := b.readSettings(); err != nil {
				return err
			}
		case "VRSN":
			if _, err := b.readChunk(); err != nil {
				return err
			}
		case "KEYS":
			if err := b.readKeyframes(); err != nil {
				return err
			}
		case "FREQ":
			if err := b.readFreq(); err != nil {
				return err
			}
		case "MAT ":
			if err := b.readMaterial(); err != nil {
				return err
			}
		case "MESH":
			if err := b.readMesh(); err != nil {
				return err
			}
		case "OUT1":
			if err := b.readMonoListener(); err != nil {
				return err
			}
		case "OUT2":
			if err := b.readStereoListener(); err != nil {
				return err
			}
		case "SSRC":
			if err := b.readMonoSource(); err != nil {
				return err
			}
		case "3SRC":
			if err := b.readTripleBandSource(); err != nil {
				return err
			}
		default:
			// Unknown top-level chunk: skip its payload and move on.
			if _, err := b.readChunk(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Builder) readChunk() (container.Chunk, error) {
	return b.decoder.ReadChunk()
}

func (b *Builder) absorptionLookup() geometry.AbsorptionLookup {
	return func(materialIndex int) float64 {
		if materialIndex < 0 || materialIndex >= len(b.materials) {
			return 0
		}
		return b.materials[materialIndex].Absorption[material.BandMid]
	}
}

// readSettings decodes a SET chunk: pairs of (str key, value) entries,
// read while the next tag is "str ".
func (b *Builder) readSettings() error {
	chunk, err := b.readChunk()
	if err != nil {
		return err
	}
	b.decoder.Enter(chunk)
	defer b.decoder.Exit()

	for !b.decoder.Done() {
		tag, err := b.decoder.Peek()
		if err != nil {
			return err
		}
		if tag != "str " {
			break
		}
		key, err := b.decoder.ReadString()
		if err != nil {
			return err
		}
		valueChunk, err := b.readChunk()
		if err != nil {
			return err
		}
		v, err := decodeSettingValue(valueChunk)
		if err != nil {
			return err
		}
		b.settings.Set(key, v)
	}
	return nil
}

func decodeSettingValue(chunk container.Chunk) (config.Value, error) {
	switch chunk.ID {
	case "int4":
		n, err := container.DecodeInt32(chunk)
		if err != nil {
			return config.Value{}, err
		}
		return config.Value{Int: &n}, nil
	case "flt4":
		f32, err := container.DecodeFloat32(chunk)
		if err != nil {
			return config.Value{}, err
		}
		f := float64(f32)
		return config.Value{Float: &f}, nil
	case "vec3":
		x, y, z, err := container.DecodeVec3(chunk)
		if err != nil {
			return config.Value{}, err
		}
		v := core.NewVec3(float64(x), float64(y), float64(z))
		return config.Value{Vec: &v}, nil
	case "str ":
		s, err := container.DecodeString(chunk)
		if err != nil {
			return config.Value{}, err
		}
		return config.Value{String: &s}, nil
	default:
		return config.Value{}, &container.DecodeError{Expected: "int4/flt4/vec3/str ", Actual: chunk.ID}
	}
}

func (b *Builder) readKeyframes() error {
	chunk, err := b.readChunk()
	if err != nil {
		return err
	}
	b.decoder.Enter(chunk)
	defer b.decoder.Exit()

	var offsets []float64
	for !b.decoder.Done() {
		f, err := b.decoder.ReadFloat32()
		if err != nil {
			return err
		}
		offsets = append(offsets, float64(f))
	}
	b.keys = keyframe.Keyframes{Offsets: offsets}
	return nil
}

func (b *Builder) readFreq() error {
	chunk, err := b.readChunk()
	if err != nil {
		return err
	}
	b.decoder.Enter(chunk)
	f1, err := b.decoder.ReadFloat32()
	if err != nil {
		b.decoder.Exit()
		return err
	}
	f2, err := b.decoder.ReadFloat32()
	if err != nil {
		b.decoder.Exit()
		return err
	}
	f3, err := b.decoder.ReadFloat32()
	if err != nil {
		b.decoder.Exit()
		return err
	}
	b.decoder.Exit()

	freqs := source.CrossoverFreqs{F1: float64(f1) * 1000, F2: float64(f2) * 1000, F3: float64(f3) * 1000}
	b.pendingFreq = &freqs
	return nil
}

func (b *Builder) takeFreq() source.CrossoverFreqs {
	if b.pendingFreq == nil {
		return source.DefaultCrossoverFreqs
	}
	f := *b.pendingFreq
	b.pendingFreq = nil
	return f
}

func (b *Builder) readMaterial() error {
	chunk, err := b.readChunk()
	if err != nil {
		return err
	}
	b.decoder.Enter(chunk)
	defer b.decoder.Exit()

	name, err := b.decoder.ReadString()
	if err != nil {
		return err
	}
	reflection, err := b.readBandTriple()
	if err != nil {
		return err
	}

	var refraction, specularity *[material.NumBands]float64
	if !b.decoder.Done() {
		t, err := b.readBandTriple()
		if err != nil {
			return err
		}
		refraction = &t
	}
	if !b.decoder.Done() {
		s, err := b.readBandTriple()
		if err != nil {
			return err
		}
		specularity = &s
	}

	mat, err := material.New(name, reflection, refraction, specularity)
	if err != nil {
		return err
	}
	b.materialIndex[name] = len(b.materials)
	b.materials = append(b.materials, mat)
	return nil
}

func (b *Builder) readBandTriple() ([material.NumBands]float64, error) {
	x, y, z, err := b.decoder.ReadVec3()
	if err != nil {
		return [material.NumBands]float64{}, err
	}
	return [material.NumBands]float64{float64(x), float64(y), float64(z)}, nil
}

func (b *Builder) readMesh() error {
	chunk, err := b.readChunk()
	if err != nil {
		return err
	}
	b.decoder.Enter(chunk)
	defer b.decoder.Exit()

	meshName, err := b.decoder.ReadString()
	if err != nil {
		return err
	}
	materialName, err := b.decoder.ReadString()
	if err != nil {
		return err
	}
	idx, ok := b.materialIndex[materialName]
	if !ok {
		return &ReferenceError{Kind: "material", Name: materialName, Msg: "not decoded before the mesh that references it"}
	}

	var triangles []geometry.Triangle
	for !b.decoder.Done() {
		triChunk, err := b.readChunk()
		if err != nil {
			return err
		}
		if triChunk.ID != "tri " {
			return &container.DecodeError{Expected: "tri ", Actual: triChunk.ID}
		}
		b.decoder.Enter(triChunk)
		a, err := b.readVec3Point()
		if err != nil {
			b.decoder.Exit()
			return err
		}
		v, err := b.readVec3Point()
		if err != nil {
			b.decoder.Exit()
			return err
		}
		w, err := b.readVec3Point()
		if err != nil {
			b.decoder.Exit()
			return err
		}
		b.decoder.Exit()
		triangles = append(triangles, geometry.NewTriangle(a, v, w, idx))
	}

	mesh := geometry.NewMesh(triangles, b.absorptionLookup())
	b.meshesByName[meshName] = mesh
	b.combined.Combine(mesh, b.absorptionLookup())
	return nil
}

func (b *Builder) readVec3Point() (core.Vec3, error) {
	x, y, z, err := b.decoder.ReadVec3()
	if err != nil {
		return core.Vec3{}, err
	}
	return core.NewVec3(float64(x), float64(y), float64(z)), nil
}

// readPlacement reads a location that may be a static point or an `anim`
// block of N vec3 values (N = len(keyframes)).
func (b *Builder) readPlacement() (point core.Vec3, animated *keyframe.Animated[core.Vec3], err error) {
	tag, err := b.decoder.Peek()
	if err != nil {
		return core.Vec3{}, nil, err
	}
	if tag != "anim" {
		p, err := b.readVec3Point()
		return p, nil, err
	}

	chunk, err := b.readChunk()
	if err != nil {
		return core.Vec3{}, nil, err
	}
	b.decoder.Enter(chunk)
	defer b.decoder.Exit()

	var values []core.Vec3
	for !b.decoder.Done() {
		p, err := b.readVec3Point()
		if err != nil {
			return core.Vec3{}, nil, err
		}
		values = append(values, p)
	}
	a, err := keyframe.NewAnimated(b.keys, values)
	if err != nil {
		return core.Vec3{}, nil, &ReferenceError{Kind: "keyframe-count", Msg: err.Error()}
	}
	return core.Vec3{}, &a, nil
}

func (b *Builder) readMonoListener() error {
	chunk, err := b.readChunk()
	if err != nil {
		return err
	}
	b.decoder.Enter(chunk)
	defer b.decoder.Exit()

	filename, err := b.decoder.ReadString()
	if err != nil {
		return err
	}
	saveProcessed, err := b.decoder.ReadInt32()
	if err != nil {
		return err
	}
	point, animated, err := b.readPlacement()
	if err != nil {
		return err
	}

	if animated != nil {
		b.listeners = append(b.listeners, listener.NewAnimatedMono(filename, *animated, saveProcessed > 0))
	} else {
		b.listeners = append(b.listeners, listener.NewMono(filename, point, saveProcessed > 0))
	}
	return nil
}

func (b *Builder) readStereoListener() error {
	chunk, err := b.readChunk()
	if err != nil {
		return err
	}
	b.decoder.Enter(chunk)
	defer b.decoder.Exit()

	filename, err := b.decoder.ReadString()
	if err != nil {
		return err
	}
	saveProcessed, err := b.decoder.ReadInt32()
	if err != nil {
		return err
	}
	locPoint, locAnim, err := b.readPlacement()
	if err != nil {
		return err
	}
	earPoint, earAnim, err := b.readPlacement()
	if err != nil {
		return err
	}

	if locAnim != nil || earAnim != nil {
		loc := staticOrAnimated(locPoint, locAnim, b.keys)
		ear := staticOrAnimated(earPoint, earAnim, b.keys)
		b.listeners = append(b.listeners, listener.NewAnimatedStereo(filename, loc, ear, saveProcessed > 0))
	} else {
		b.listeners = append(b.listeners, listener.NewStereo(filename, locPoint, earPoint, saveProcessed > 0))
	}
	return nil
}

// staticOrAnimated widens a possibly-static placement to an Animated
// track (constant across all keyframes) so Stereo's two fields can share
// one animated-or-not branch when either is animated.
func staticOrAnimated(point core.Vec3, animated *keyframe.Animated[core.Vec3], keys keyframe.Keyframes) keyframe.Animated[core.Vec3] {
	if animated != nil {
		return *animated
	}
	values := make([]core.Vec3, keys.Len())
	for i := range values {
		values[i] = point
	}
	return keyframe.Animated[core.Vec3]{Values: values}
}

func (b *Builder) readMonoSource() error {
	chunk, err := b.readChunk()
	if err != nil {
		return err
	}
	b.decoder.Enter(chunk)
	defer b.decoder.Exit()

	wavPath, err := b.decoder.ReadString()
	if err != nil {
		return err
	}
	loc, err := b.readSourceLocation()
	if err != nil {
		return err
	}
	gain, err := b.decoder.ReadFloat32()
	if err != nil {
		return err
	}
	offset, err := b.decoder.ReadInt32()
	if err != nil {
		return err
	}

	// PCM stays nil here: Builder decodes the container only, and
	// pkg/engine loads WavPath via pkg/wavio before rendering.
	s := source.NewMono(nil, 0, loc, float64(gain), int(offset), b.takeFreq())
	s.WavPath = wavPath
	b.sources = append(b.sources, s)
	return nil
}

func (b *Builder) readTripleBandSource() error {
	chunk, err := b.readChunk()
	if err != nil {
		return err
	}
	b.decoder.Enter(chunk)
	defer b.decoder.Exit()

	lowPath, err := b.decoder.ReadString()
	if err != nil {
		return err
	}
	midPath, err := b.decoder.ReadString()
	if err != nil {
		return err
	}
	highPath, err := b.decoder.ReadString()
	if err != nil {
		return err
	}
	loc, err := b.readSourceLocation()
	if err != nil {
		return err
	}
	gain, err := b.decoder.ReadFloat32()
	if err != nil {
		return err
	}
	offset, err := b.decoder.ReadInt32()
	if err != nil {
		return err
	}

	s := source.NewTripleBand(nil, nil, nil, 0, loc, float64(gain), int(offset))
	s.BandPaths = [source.NumBands]string{lowPath, midPath, highPath}
	b.sources = append(b.sources, s)
	return nil
}

// readSourceLocation reads a source's location variant: a static or
// animated point, or (when the next tag is "str ") the name of an
// already-decoded mesh to emit from.
func (b *Builder) readSourceLocation() (source.Location, error) {
	tag, err := b.decoder.Peek()
	if err != nil {
		return source.Location{}, err
	}
	if tag == "str " {
		meshName, err := b.decoder.ReadString()
		if err != nil {
			return source.Location{}, err
		}
		mesh, ok := b.meshesByName[meshName]
		if !ok {
			return source.Location{}, &ReferenceError{Kind: "mesh", Name: meshName, Msg: "not decoded before the source that emits from it"}
		}
		return source.Location{Mesh: mesh}, nil
	}

	point, animated, err := b.readPlacement()
	if err != nil {
		return source.Location{}, err
	}
	if animated != nil {
		return source.Location{Animated: animated}, nil
	}
	return source.Location{Point: &point}, nil
}


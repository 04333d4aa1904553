// Package engine drives the end-to-end flow: decode a scene file, render
// per-(source, keyframe, band) impulse responses, convolve them against
// each source's dry audio, mix the results per listener, and save WAV
// output. It owns every filesystem side effect (WAV reads/writes, debug
// dumps); every other package stays pure.
package engine

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/ear-go/ear/internal/logger"
	"github.com/ear-go/ear/internal/progress"
	"github.com/ear-go/ear/pkg/audio"
	"github.com/ear-go/ear/pkg/config"
	"github.com/ear-go/ear/pkg/container"
	"github.com/ear-go/ear/pkg/core"
	"github.com/ear-go/ear/pkg/listener"
	"github.com/ear-go/ear/pkg/pathtracer"
	"github.com/ear-go/ear/pkg/scene"
	"github.com/ear-go/ear/pkg/scheduler"
	"github.com/ear-go/ear/pkg/source"
	"github.com/ear-go/ear/pkg/wavio"
	"go.uber.org/zap"
)

// defaultSamples is the release-mode path count per render task, applied
// when the scene carries no "samples" setting.
const defaultSamples = 10000

// Engine owns one decoded scene plus the settings that configure how it
// renders, and runs the full render/process/mix/save pipeline.
type Engine struct {
	Scene    *scene.Scene
	Settings *config.Settings

	basePath string // directory the scene file was loaded from, for relative WAV paths
}

// Load decodes path into a Scene and Settings, then loads every source's
// dry PCM from the WAV paths the container referenced.
func Load(path string) (*Engine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &wavio.IOError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	d, err := container.Open(f)
	if err != nil {
		return nil, err
	}
	sc, settings, err := scene.Build(d)
	if err != nil {
		return nil, err
	}

	e := &Engine{Scene: sc, Settings: settings, basePath: filepath.Dir(path)}
	if err := e.loadSourceAudio(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.basePath, p)
}

// loadSourceAudio reads every source's WAV file(s) sequentially. It does
// not split mono sources into bands: the split happens on the first Band
// call, which renderPhase makes on the calling goroutine while building
// its jobs, before any render task starts.
func (e *Engine) loadSourceAudio() error {
	for _, s := range e.Scene.Sources {
		if s.WavPath != "" {
			samples, rate, err := wavio.ReadMono(e.resolve(s.WavPath))
			if err != nil {
				return err
			}
			s.LoadMono(samples, rate)
			continue
		}
		var rate int
		var bands [source.NumBands][]float32
		for i, p := range s.BandPaths {
			if p == "" {
				continue
			}
			samples, r, err := wavio.ReadMono(e.resolve(p))
			if err != nil {
				return err
			}
			bands[i] = samples
			rate = r
		}
		if rate != 0 {
			s.LoadTripleBand(bands[source.BandLow], bands[source.BandMid], bands[source.BandHigh], rate)
		}
	}
	return nil
}

// debug reports whether the "debug" setting is set and truthy.
func (e *Engine) debug() bool {
	v, ok, _ := e.Settings.Bool("debug", config.Ignore)
	return ok && v
}

// sampleCount returns the per-task Monte Carlo path count: the "samples"
// setting divided by 10 in release mode or by 1000 in debug mode (the
// debug divisor trades fidelity for fast iteration), or defaultSamples if
// unset.
func (e *Engine) sampleCount() int {
	n, ok, _ := e.Settings.Int("samples", config.Warn)
	if !ok {
		return defaultSamples
	}
	divisor := int32(10)
	if e.debug() {
		divisor = 1000
	}
	result := int(n) / int(divisor)
	if result < 1 {
		result = 1
	}
	return result
}

func (e *Engine) maxThreads() int {
	n, ok, _ := e.Settings.Int("maxthreads", config.Ignore)
	if !ok {
		return 0
	}
	return int(n)
}

func (e *Engine) dryLevel() float64 {
	v, ok, _ := e.Settings.Float("drylevel", config.Ignore)
	if !ok {
		return 1
	}
	return v
}

func (e *Engine) absorption() [3]float64 {
	v, ok, _ := e.Settings.Vec3("absorption", config.Ignore)
	if !ok {
		return [3]float64{0, 0, 0}
	}
	return [3]float64{v.X, v.Y, v.Z}
}

func (e *Engine) noProcessing() bool {
	v, ok, _ := e.Settings.Bool("noprocessing", config.Ignore)
	return ok && v
}

func (e *Engine) debugDir() (string, bool) {
	v, ok, _ := e.Settings.String("debugdir", config.Ignore)
	return v, ok
}

// numKeyframes returns the scene's keyframe count, or 1 for a static
// (unanimated) scene.
func (e *Engine) numKeyframes() int {
	if n := e.Scene.Keyframes.Len(); n > 0 {
		return n
	}
	return 1
}

// renderCell is one (source, keyframe, band) Render task's output: a
// blank-cloned listener per original listener, each carrying this cell's
// contribution in its IR tracks.
type renderCell struct {
	listeners []*listener.Listener
}

// Run executes the full render -> process -> mix -> save pipeline and
// writes one WAV file per listener whose filename is non-empty.
func (e *Engine) Run(ctx context.Context) error {
	numSources := len(e.Scene.Sources)
	numKf := e.numKeyframes()

	if len(e.Scene.Mesh.Triangles) == 0 {
		logger.Warn("scene has no reflective geometry; rendering direct sound only")
	}

	if e.debug() {
		if err := e.dumpBandDebug(); err != nil {
			return err
		}
	}

	cells := make([][][]*renderCell, numSources) // [source][keyframe][band]
	for si := range cells {
		cells[si] = make([][]*renderCell, numKf)
		for kf := range cells[si] {
			cells[si][kf] = make([]*renderCell, source.NumBands)
		}
	}

	if err := e.renderPhase(ctx, cells); err != nil {
		return err
	}

	e.normalizeAndTruncateIRs(cells)

	if e.noProcessing() {
		return e.saveIRsOnly(cells)
	}

	recorders := e.processPhase(cells)
	return e.mixAndSave(recorders)
}

func (e *Engine) newScheduler(total int) *scheduler.Scheduler {
	bar := progress.New("render", total)
	last := 0
	return &scheduler.Scheduler{
		MaxThreads: e.maxThreads(),
		OnWaveDone: func(completed, total int) {
			bar.Advance(completed - last)
			last = completed
		},
	}
}

// renderPhase runs one Render task per (source, keyframe, band) tuple,
// each producing its own listener clones via pathtracer.Render.
func (e *Engine) renderPhase(ctx context.Context, cells [][][]*renderCell) error {
	type job struct {
		si, kf, band int
	}
	var jobs []job
	for si, s := range e.Scene.Sources {
		for kf := 0; kf < e.numKeyframes(); kf++ {
			for band := 0; band < source.NumBands; band++ {
				if len(s.Band(band).Samples) == 0 {
					continue
				}
				jobs = append(jobs, job{si, kf, band})
			}
		}
	}

	absorb := e.absorption()
	dryLevel := e.dryLevel()
	samples := e.sampleCount()

	tasks := make([]scheduler.Task, len(jobs))
	for i, j := range jobs {
		j := j
		tasks[i] = func(ctx context.Context, index int) error {
			random := core.NewTaskRand(index)
			clones := make([]*listener.Listener, len(e.Scene.Listeners))
			for li, l := range e.Scene.Listeners {
				clones[li] = l.BlankCopy()
			}
			pathtracer.Render(pathtracer.Params{
				Scene:            e.Scene,
				Source:           e.Scene.Sources[j.si],
				Band:             j.band,
				Keyframe:         j.kf,
				NumSamples:       samples,
				AbsorptionFactor: 1 - absorb[j.band],
				DryLevel:         dryLevel,
				Listeners:        clones,
				Random:           random,
			})
			cells[j.si][j.kf][j.band] = &renderCell{listeners: clones}
			return nil
		}
	}

	return e.newScheduler(len(tasks)).Run(ctx, tasks)
}

// normalizeAndTruncateIRs scales every rendered IR track to a shared
// ceiling and truncates trailing silence, before either Process or a
// direct IR dump consumes them.
func (e *Engine) normalizeAndTruncateIRs(cells [][][]*renderCell) {
	const silenceFloor = 1e-6
	for _, perKf := range cells {
		for _, perBand := range perKf {
			for _, cell := range perBand {
				if cell == nil {
					continue
				}
				for _, l := range cell.listeners {
					for _, track := range l.Tracks() {
						track.Normalize(1, -1)
						track.Truncate(track.Length(silenceFloor))
					}
				}
			}
		}
	}
}

// saveIRsOnly writes rendered IR tracks directly to WAV when the
// "noprocessing" setting skips convolution entirely.
func (e *Engine) saveIRsOnly(cells [][][]*renderCell) error {
	dir, hasDebugDir := e.debugDir()
	if !hasDebugDir {
		dir = "."
	}
	for si, perKf := range cells {
		for kf, perBand := range perKf {
			for band, cell := range perBand {
				if cell == nil {
					continue
				}
				for li, l := range cell.listeners {
					name := filepath.Join(dir, fmt.Sprintf("rec-%d.sound-%d.frame-%02d.band-%d.wav", li, si, kf, band))
					if err := writeTrackWAV(name, l.Tracks()); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func writeTrackWAV(path string, tracks []*audio.RecorderTrack) error {
	if len(tracks) == 1 {
		return wavio.WriteMono(path, toFloat32(tracks[0]), true, 1)
	}
	return wavio.WriteStereo(path, toFloat32(tracks[0]), toFloat32(tracks[1]), true)
}

func toFloat32(t *audio.RecorderTrack) []float32 {
	out := make([]float32, t.RealLength)
	for i := range out {
		out[i] = float32(t.At(i))
	}
	return out
}

// processPhase convolves every rendered IR against its source's dry band
// section (interpolating across keyframe boundaries), marking each
// listener clone processed, and returns one Recorder per original
// listener accumulating every convolved contribution.
func (e *Engine) processPhase(cells [][][]*renderCell) []*audio.Recorder {
	recorders := make([]*audio.Recorder, len(e.Scene.Listeners))
	for i, l := range e.Scene.Listeners {
		recorders[i] = audio.NewRecorder(len(l.Tracks()))
	}

	numKf := e.numKeyframes()
	keys := e.Scene.Keyframes

	for si, s := range e.Scene.Sources {
		for band := 0; band < source.NumBands; band++ {
			dry := s.Band(band)
			if len(dry.Samples) == 0 {
				continue
			}

			if numKf == 1 {
				cell := cells[si][0][band]
				if cell == nil {
					continue
				}
				e.convolveCellStraight(dry, dry.Offset, cell, recorders)
				continue
			}

			startSample := 0
			for kf := 0; kf < numKf-1; kf++ {
				segLen := int(math.Round(keys.SegmentLength(kf) * audio.SampleRate))
				section := dry.Section(startSample, segLen)
				primary := cells[si][kf][band]
				secondary := cells[si][kf+1][band]
				if primary != nil && secondary != nil {
					e.convolveCellsBlended(section, section.Offset, primary, secondary, recorders)
				}
				startSample += segLen
			}

			lastCell := cells[si][numKf-1][band]
			if lastCell != nil {
				tail := dry.Section(startSample, len(dry.Samples)-startSample)
				e.convolveCellStraight(tail, tail.Offset, lastCell, recorders)
			}
		}
	}

	return recorders
}

func (e *Engine) convolveCellStraight(dry source.SoundFile, offset int, cell *renderCell, recorders []*audio.Recorder) {
	dryFloat := toFloat64(dry.Samples)
	for li, l := range cell.listeners {
		for ci, track := range l.Tracks() {
			processed := audio.Convolve(dryFloat, track, nil, offset)
			recorders[li].Processed[ci].AddTrack(processed)
		}
		l.IsProcessed = true
	}
}

func (e *Engine) convolveCellsBlended(dry source.SoundFile, offset int, a, b *renderCell, recorders []*audio.Recorder) {
	dryFloat := toFloat64(dry.Samples)
	for li := range a.listeners {
		aTracks := a.listeners[li].Tracks()
		bTracks := b.listeners[li].Tracks()
		for ci := range aTracks {
			processed := audio.Convolve(dryFloat, aTracks[ci], bTracks[ci], offset)
			recorders[li].Processed[ci].AddTrack(processed)
		}
		a.listeners[li].IsProcessed = true
	}
}

func toFloat64(samples []float32) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s)
	}
	return out
}

// mixAndSave normalizes each listener's accumulated Recorder and writes
// its WAV output.
func (e *Engine) mixAndSave(recorders []*audio.Recorder) error {
	for i, l := range e.Scene.Listeners {
		if l.Filename == "" {
			continue
		}
		r := recorders[i]
		r.Power(0.335)
		r.Truncate(r.Length(1e-6))
		r.Normalize(1, -1)

		samples := make([][]float32, len(r.Processed))
		for ci := range r.Processed {
			samples[ci] = r.Samples(ci)
		}
		var err error
		if len(samples) == 1 {
			err = wavio.WriteMono(e.resolve(l.Filename), samples[0], true, 1)
		} else {
			err = wavio.WriteStereo(e.resolve(l.Filename), samples[0], samples[1], true)
		}
		if err != nil {
			return err
		}
		logger.Info("wrote listener output", zap.String("file", l.Filename))
	}
	return nil
}

// dumpBandDebug writes each source's low/mid/high split to debugdir (or
// the current directory if unset), independent of whether IR dumps are
// also requested.
func (e *Engine) dumpBandDebug() error {
	dir, _ := e.debugDir()
	if dir == "" {
		dir = "."
	}
	names := [source.NumBands]string{"lo", "mid", "hi"}
	for si, s := range e.Scene.Sources {
		for band := 0; band < source.NumBands; band++ {
			buf := s.Band(band)
			if len(buf.Samples) == 0 {
				continue
			}
			path := filepath.Join(dir, fmt.Sprintf("sound-%d.band-%d%s.wav", si, band, names[band]))
			if err := wavio.WriteMono(path, buf.Samples, false, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// T60Estimate holds the measured reverberation time alongside the two
// statistical predictions it's checked against.
type T60Estimate struct {
	Ear    float64
	Sabine float64
	Eyring float64
}

// CalcT60 renders a restricted single (mid band, first keyframe, first
// source) IR and reports its measured T60 next to the Sabine and
// Norris-Eyring statistical predictions for the scene's combined mesh.
func (e *Engine) CalcT60(ctx context.Context) (T60Estimate, error) {
	if len(e.Scene.Sources) == 0 {
		return T60Estimate{}, fmt.Errorf("engine: scene defines no sources")
	}

	absorb := e.absorption()
	clones := make([]*listener.Listener, len(e.Scene.Listeners))
	for i, l := range e.Scene.Listeners {
		clones[i] = l.BlankCopy()
	}
	pathtracer.Render(pathtracer.Params{
		Scene:            e.Scene,
		Source:           e.Scene.Sources[0],
		Band:             source.BandMid,
		Keyframe:         0,
		NumSamples:       e.sampleCount(),
		AbsorptionFactor: 1 - absorb[source.BandMid],
		DryLevel:         e.dryLevel(),
		Listeners:        clones,
		Random:           core.NewTaskRand(0),
	})

	var t60 float64
	for _, l := range clones {
		for _, track := range l.Tracks() {
			if v := track.T60(); v > t60 {
				t60 = v
			}
		}
	}

	v := e.Scene.Mesh.Volume()
	s := e.Scene.Mesh.TotalArea
	barA := e.Scene.Mesh.AverageAbsorption()

	sabine := 0.1611 * v / (s * barA)
	eyring := -0.1611 * v / (s * math.Log(1-barA))

	return T60Estimate{Ear: t60, Sabine: sabine, Eyring: eyring}, nil
}

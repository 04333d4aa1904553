// Package wavio reads and writes the 16-bit PCM, 44100 Hz mono/stereo
// WAV files every listener track is persisted as and every triple-band
// source file is loaded from.
package wavio

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// IOError wraps a failure reading or writing a WAV file with the path
// that triggered it.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("wavio: %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ReadMono decodes a 16-bit PCM WAV file to float32 samples in [-1, 1].
// Multi-channel files are downmixed by taking the first channel.
func ReadMono(path string) (samples []float32, sampleRate int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, &IOError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, &IOError{Path: path, Op: "decode", Err: err}
	}

	numChans := buf.Format.NumChannels
	if numChans < 1 {
		numChans = 1
	}
	frames := len(buf.Data) / numChans
	samples = make([]float32, frames)
	for i := 0; i < frames; i++ {
		samples[i] = float32(buf.Data[i*numChans]) / 32768.0
	}
	return samples, buf.Format.SampleRate, nil
}

// WriteMono encodes samples as a 44100 Hz, 16-bit PCM mono WAV file. When
// normalize is true, samples are first scaled by normMax/max(|samples|).
func WriteMono(path string, samples []float32, normalize bool, normMax float64) error {
	if normalize {
		samples = scaleToPeak(samples, normMax)
	}
	return encode(path, 1, samples)
}

// WriteStereo encodes left/right as a 44100 Hz, 16-bit PCM stereo WAV
// file, interleaving the two channels. When normalize is true, both
// channels are scaled together by the same factor so their relative
// levels are preserved.
func WriteStereo(path string, left, right []float32, normalize bool) error {
	if normalize {
		peak := peakOf(left)
		if p := peakOf(right); p > peak {
			peak = p
		}
		if peak > 0 {
			left = scaleBy(left, 1.0/peak)
			right = scaleBy(right, 1.0/peak)
		}
	}

	n := len(left)
	if len(right) > n {
		n = len(right)
	}
	interleaved := make([]float32, 0, n*2)
	for i := 0; i < n; i++ {
		var l, r float32
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		interleaved = append(interleaved, l, r)
	}
	return encode(path, 2, interleaved)
}

func encode(path string, numChans int, interleaved []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Path: path, Op: "create", Err: err}
	}
	defer f.Close()

	const sampleRate = 44100
	enc := wav.NewEncoder(f, sampleRate, 16, numChans, 1)
	intData := make([]int, len(interleaved))
	for i, s := range interleaved {
		v := float64(s) * 32768.0
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		intData[i] = int(v)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: numChans},
		Data:           intData,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return &IOError{Path: path, Op: "write", Err: err}
	}
	if err := enc.Close(); err != nil {
		return &IOError{Path: path, Op: "close", Err: err}
	}
	return nil
}

func peakOf(samples []float32) float64 {
	peak := 0.0
	for _, s := range samples {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	return peak
}

func scaleBy(samples []float32, factor float64) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(float64(s) * factor)
	}
	return out
}

func scaleToPeak(samples []float32, normMax float64) []float32 {
	peak := peakOf(samples)
	if peak == 0 {
		return samples
	}
	return scaleBy(samples, normMax/peak)
}

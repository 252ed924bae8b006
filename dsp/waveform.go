// Package dsp implements the concrete node kinds that run inside the graph:
// the audio-rate Oscillator, the control-rate LFO, and the EffectNode
// family (biquad Filter plus the enriched delay/chorus/distortion/
// compressor variants).
package dsp

import (
	"math"

	"github.com/aaratha/takyon/graph"
)

// SampleRate is the engine's fixed sample rate (spec §4.2).
const SampleRate = 44800.0

const twoPi = 2 * math.Pi

// wave evaluates one of the five waveform shapes at the given phase, which
// must already be wrapped into [0, 2π). Shared by Oscillator and LFO so
// both reproduce identical wave shapes (spec §4.2).
func wave(phase float64, w graph.Waveform) float64 {
	switch w {
	case graph.Sine:
		return math.Sin(phase)
	case graph.Saw:
		return phase/math.Pi - 1
	case graph.InvSaw:
		return 1 - phase/math.Pi
	case graph.Square:
		if phase < math.Pi {
			return 1
		}
		return -1
	case graph.Triangle:
		return 2*math.Abs(phase/math.Pi-1) - 1
	default:
		return math.Sin(phase)
	}
}

// wrapPhase brings phase back into [0, 2π) after advancing it.
func wrapPhase(phase float64) float64 {
	for phase >= twoPi {
		phase -= twoPi
	}
	for phase < 0 {
		phase += twoPi
	}
	return phase
}

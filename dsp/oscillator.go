package dsp

import (
	"sync/atomic"

	"github.com/aaratha/takyon/graph"
)

// Oscillator is an audio-rate signal source. Amp, Freq and Waveform are
// atomics so scripts (or an LFO) can update them between samples without
// blocking the realtime thread.
type Oscillator struct {
	graph.Base

	Amp   graph.Param
	Freq  graph.Param
	Phase float64 // realtime-thread-only; not atomic

	waveform atomic.Int32
}

// NewOscillator constructs an oscillator with the given defaults.
func NewOscillator(amp, freq float32, w graph.Waveform) *Oscillator {
	o := &Oscillator{Base: graph.NewBase(graph.PerVoice)}
	o.Amp.Store(amp)
	o.Freq.Store(freq)
	o.waveform.Store(int32(w))
	return o
}

// Waveform returns the currently selected wave shape.
func (o *Oscillator) Waveform() graph.Waveform {
	return graph.Waveform(o.waveform.Load())
}

// SetWaveform changes the wave shape. Safe from any thread.
func (o *Oscillator) SetWaveform(w graph.Waveform) {
	o.waveform.Store(int32(w))
}

// Update publishes amp*wave(phase) at the current phase, then advances
// phase by one sample. Sample 0 is always at phase 0.
func (o *Oscillator) Update() {
	amp := o.Amp.Load()
	freq := o.Freq.Load()
	o.Publish(amp * float32(wave(o.Phase, o.Waveform())))
	o.Phase = wrapPhase(o.Phase + twoPi*float64(freq)/SampleRate)
}

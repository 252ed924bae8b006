package dsp

import (
	"sync/atomic"

	"github.com/aaratha/takyon/graph"
)

// LFO is a control-rate modulator: base + amp*wave(phase+shift), fanned out
// to every registered target on each sample (spec §3, §4.2).
type LFO struct {
	graph.Base
	ControlNode

	Base_ graph.Param // named Base_ to avoid colliding with the embedded graph.Base field
	Amp   graph.Param
	Freq  graph.Param
	Shift graph.Param
	Phase float64 // realtime-thread-only

	waveform atomic.Int32
}

// NewLFO constructs an LFO with the given defaults.
func NewLFO(base, amp, freq, shift float32, w graph.Waveform) *LFO {
	l := &LFO{Base: graph.NewBase(graph.PerVoice)}
	l.Base_.Store(base)
	l.Amp.Store(amp)
	l.Freq.Store(freq)
	l.Shift.Store(shift)
	l.waveform.Store(int32(w))
	return l
}

// Waveform returns the currently selected wave shape.
func (l *LFO) Waveform() graph.Waveform { return graph.Waveform(l.waveform.Load()) }

// SetWaveform changes the wave shape. Safe from any thread.
func (l *LFO) SetWaveform(w graph.Waveform) { l.waveform.Store(int32(w)) }

// Update publishes base+amp*wave(phase+shift) as its own Out and fans
// that same value out to every registered target, at the current phase,
// then advances phase by one sample. Sample 0 is always at phase 0.
func (l *LFO) Update() {
	base := l.Base_.Load()
	amp := l.Amp.Load()
	freq := l.Freq.Load()
	shift := l.Shift.Load()

	v := base + amp*float32(wave(wrapPhase(l.Phase+float64(shift)), l.Waveform()))
	l.Publish(v)
	l.fanOut(v)
	l.Phase = wrapPhase(l.Phase + twoPi*float64(freq)/SampleRate)
}

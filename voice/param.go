package voice

import "github.com/aaratha/takyon/graph"

// ParamKind names a bindable parameter on one of the dsp node kinds. The
// dense enum lets VoiceTemplate.Params address any node's controls by a
// small int instead of a string.
type ParamKind int

const (
	OscFreq ParamKind = iota
	OscAmp
	OscWaveform
	LfoBase
	LfoAmp
	LfoFreq
	LfoShift
	LfoWaveform
	FilterCutoff
	FilterQ
	DelayWet
	ChorusWet
	DistortionDrive
	CompressorThreshold
)

// WaveformHolder is implemented by node kinds with a selectable wave
// shape (Oscillator, LFO). OscWaveform/LfoWaveform bindings resolve to
// this instead of a *graph.Param since waveform is an atomic.Int32, not
// an atomic float.
type WaveformHolder interface {
	Waveform() graph.Waveform
	SetWaveform(graph.Waveform)
}

// ParamBinding is a tagged pointer to the atomic a ParamSpec names, once
// resolved against a realized voice instance. At most one of Param or
// Wave is set, depending on Kind; neither is set when Kind does not name a
// control of the bound node's type.
type ParamBinding struct {
	Kind  ParamKind
	Param *graph.Param
	Wave  WaveformHolder
}

// Set writes v to the bound float parameter. No-op if this binding is a
// waveform binding; use SetWaveform for those.
func (b ParamBinding) Set(v float32) {
	if b.Param != nil {
		b.Param.Store(v)
	}
}

// SetWaveform writes w to the bound waveform parameter. No-op if this
// binding is a float binding.
func (b ParamBinding) SetWaveform(w graph.Waveform) {
	if b.Wave != nil {
		b.Wave.SetWaveform(w)
	}
}

package graph

import "sync/atomic"

// Waveform selects the oscillator/LFO wave shape. Values match the host
// interface's waveform integers (spec §6).
type Waveform int32

const (
	Sine Waveform = iota
	Saw
	InvSaw
	Square
	Triangle
)

// SyncMode controls how a voice template instantiates a node: fresh per
// voice, or created once per template and shared across all voices derived
// from it.
type SyncMode int

const (
	PerVoice SyncMode = iota
	Shared
)

// Node is the interface every DSP element implements. update() advances the
// node by one sample and publishes Out; OutParam exposes the stable address
// of that published value so other nodes (effects, control fan-out) can hold
// a pointer to it across renders.
type Node interface {
	Update()
	OutParam() *Param
	Out() float32
	Sinked() bool
	SetSinked(bool)
	SyncMode() SyncMode
}

// Base is embedded by every concrete node kind. It supplies the Out/Sinked/
// SyncMode bookkeeping common to all nodes so dsp types only need to
// implement Update().
type Base struct {
	out      Param
	sinked   atomic.Bool
	syncMode SyncMode
}

// NewBase constructs a Base with the given sync mode. Nodes call this from
// their own constructors.
func NewBase(mode SyncMode) Base {
	return Base{syncMode: mode}
}

func (b *Base) OutParam() *Param   { return &b.out }
func (b *Base) Out() float32       { return b.out.Load() }
func (b *Base) Sinked() bool       { return b.sinked.Load() }
func (b *Base) SetSinked(v bool)   { b.sinked.Store(v) }
func (b *Base) SyncMode() SyncMode { return b.syncMode }

// Publish stores the node's freshly-computed sample so Out()/OutParam()
// observe it. Called by dsp node Update() implementations in another
// package, hence exported.
func (b *Base) Publish(v float32) { b.out.Store(v) }

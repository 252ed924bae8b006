// Package graph implements the node graph: storage, adjacency, topological
// ordering, and the lock-free publication of that ordering to the realtime
// render thread.
package graph

import (
	"math"
	"sync/atomic"
)

// Param is a scalar control point on a node: a direct atomic float32 that
// either scripts write to directly, or that an LFO overwrites every sample.
// Every Param has a stable address for the lifetime of its owning node, so
// control nodes can fan writes out to a *Param living on another node.
type Param struct {
	bits atomic.Uint32
}

// NewParam returns a Param initialized to v.
func NewParam(v float32) *Param {
	p := &Param{}
	p.Store(v)
	return p
}

// Load reads the current value with relaxed-equivalent semantics (Go gives
// no weaker-than-acquire/release guarantee on atomics, but callers rely only
// on eventual visibility, never on ordering against other memory).
func (p *Param) Load() float32 {
	return math.Float32frombits(p.bits.Load())
}

// Store writes v. Two stores without an intervening Load collapse to the
// latest value — the "last writer wins" contract of spec §5.
func (p *Param) Store(v float32) {
	p.bits.Store(math.Float32bits(v))
}

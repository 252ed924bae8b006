package dsp

import (
	"sync/atomic"

	"github.com/aaratha/takyon/graph"
)

// ControlNode is the base for nodes (LFO) that fan their computed value out
// to target parameters living on other nodes. The target list is published
// as a copy-on-write snapshot so AddTarget (control thread) never blocks or
// races with a concurrent realtime read of the list (spec §4.2, §9).
type ControlNode struct {
	targets atomic.Pointer[[]*graph.Param]
}

// AddTarget registers p to receive this node's value on every Update.
// Safe to call while the realtime thread is mid-callback: the swap is a
// single atomic store, and any in-flight iteration finishes against the
// snapshot it already loaded.
func (c *ControlNode) AddTarget(p *graph.Param) {
	old := c.targets.Load()
	var next []*graph.Param
	if old != nil {
		next = append(next, (*old)...)
	}
	next = append(next, p)
	c.targets.Store(&next)
}

// fanOut writes v into every registered target with a relaxed store. The
// realtime thread is the sole writer of LFO-driven parameters; any racing
// scalar write from a script is explicitly last-writer-wins (spec §4.2).
func (c *ControlNode) fanOut(v float32) {
	list := c.targets.Load()
	if list == nil {
		return
	}
	for _, p := range *list {
		p.Store(v)
	}
}

// EffectNode is the base for nodes (Filter and friends) that sum one or
// more upstream Out values as their input. Inputs use the same copy-on-
// write publication technique as ControlNode's targets.
type EffectNode struct {
	inputs atomic.Pointer[[]*graph.Param]
}

// AddInput registers p (an upstream node's OutParam) as a source this
// effect sums on every Update.
func (e *EffectNode) AddInput(p *graph.Param) {
	old := e.inputs.Load()
	var next []*graph.Param
	if old != nil {
		next = append(next, (*old)...)
	}
	next = append(next, p)
	e.inputs.Store(&next)
}

// sumInputs adds up every registered input's current value.
func (e *EffectNode) sumInputs() float32 {
	list := e.inputs.Load()
	if list == nil {
		return 0
	}
	var sum float32
	for _, p := range *list {
		sum += p.Load()
	}
	return sum
}

// Package render implements the per-frame bridge between the node graph
// and an audio device: the realtime-safe loop that the device callback
// invokes.
package render

import "github.com/aaratha/takyon/graph"

// Renderer drives one Graph frame by frame. It holds no lock and performs
// no allocation in Process — the whole method touches only the graph's
// published snapshot and each node's own atomic fields.
type Renderer struct {
	graph *graph.Graph
}

// New returns a Renderer over g.
func New(g *graph.Graph) *Renderer {
	return &Renderer{graph: g}
}

// Process fills dst with interleaved stereo f32 frames: len(dst)/2 frames,
// mono signal duplicated into both channels. Implements
// audio.SampleSource so a Renderer can be handed straight to an
// audio.Player.
//
// For each frame: traverse the cached topological order invoking
// Update(), sum the sinked nodes' Out(), write that sample into both
// channels. No allocation, no locks, no script host calls.
func (r *Renderer) Process(dst []float32) {
	frames := len(dst) / 2
	for i := 0; i < frames; i++ {
		r.graph.Traverse(updateNode)
		sample := r.graph.MixSinks()
		dst[2*i] = sample
		dst[2*i+1] = sample
	}
}

// updateNode is a package-level, non-capturing callback so Process never
// allocates a closure per frame.
func updateNode(n graph.Node) { n.Update() }

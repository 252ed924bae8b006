package dsp

import (
	"math"

	"github.com/aaratha/takyon/graph"
)

// Filter is a biquad low-pass EffectNode. Coefficients are recomputed from
// cutoff/q/SampleRate on every sample — simple and correct, not cached, per
// spec §4.2 ("a production version would cache; the contract does not
// require it"). x1,x2,y1,y2 are plain floats: only the realtime thread ever
// touches filter history.
type Filter struct {
	graph.Base
	EffectNode

	Cutoff graph.Param
	Q      graph.Param

	x1, x2, y1, y2 float64
}

// NewFilter constructs a low-pass filter with the given cutoff/q.
func NewFilter(cutoff, q float32) *Filter {
	f := &Filter{Base: graph.NewBase(graph.PerVoice)}
	f.Cutoff.Store(cutoff)
	f.Q.Store(q)
	return f
}

// Update computes the standard direct-form-I biquad low-pass recurrence
// against the summed input and publishes y0.
func (f *Filter) Update() {
	cutoff := float64(f.Cutoff.Load())
	q := float64(f.Q.Load())
	x0 := float64(f.sumInputs())

	b0, b1, b2, a1, a2 := lowPassCoeffs(cutoff, q, SampleRate)

	y0 := b0*x0 + b1*f.x1 + b2*f.x2 - a1*f.y1 - a2*f.y2

	f.x2 = f.x1
	f.x1 = x0
	f.y2 = f.y1
	f.y1 = y0

	f.Publish(float32(y0))
}

// lowPassCoeffs derives normalized RBJ biquad low-pass coefficients
// (b0,b1,b2,a1,a2; a0 already divided out).
func lowPassCoeffs(cutoff, q, sampleRate float64) (b0, b1, b2, a1, a2 float64) {
	if cutoff <= 0 {
		cutoff = 1
	}
	if q <= 0 {
		q = 0.0001
	}
	w0 := 2 * math.Pi * cutoff / sampleRate
	cosW0, sinW0 := math.Cos(w0), math.Sin(w0)
	alpha := sinW0 / (2 * q)

	a0 := 1 + alpha
	b0 = ((1 - cosW0) / 2) / a0
	b1 = (1 - cosW0) / a0
	b2 = b0
	a1 = (-2 * cosW0) / a0
	a2 = (1 - alpha) / a0
	return
}

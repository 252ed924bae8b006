package dsp

import (
	"math"

	"github.com/aaratha/takyon/graph"
)

// Delay, Chorus, Distortion, and Compressor are mono EffectNode graph
// citizens alongside Filter: each sums its registered inputs the same
// way Filter does, runs its per-sample recurrence on that single signal,
// and publishes the result as Out.

// Delay is a feedback delay line with wet/dry mix.
type Delay struct {
	graph.Base
	EffectNode

	buf      []float32
	pos      int
	Feedback graph.Param
	Wet      graph.Param
}

// NewDelay creates a delay of delayMs at the given sample rate.
func NewDelay(delayMs float64, feedback, wet float32) *Delay {
	samples := int(delayMs * SampleRate / 1000.0)
	if samples < 1 {
		samples = 1
	}
	d := &Delay{Base: graph.NewBase(graph.PerVoice), buf: make([]float32, samples)}
	d.Feedback.Store(clampf(feedback, 0, 0.95))
	d.Wet.Store(clampf(wet, 0, 1))
	return d
}

func (d *Delay) Update() {
	x := d.sumInputs()
	feedback := d.Feedback.Load()
	wet := d.Wet.Load()

	delayed := d.buf[d.pos]
	d.buf[d.pos] = x + delayed*feedback
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
	d.Publish(x*(1-wet) + delayed*wet)
}

// Chorus is a modulated delay used for chorus/flanger coloration.
type Chorus struct {
	graph.Base
	EffectNode

	buf      []float32
	size     int
	pos      int
	depth    float32
	rate     float64
	phase    float64
	Feedback graph.Param
	Wet      graph.Param
}

// NewChorus creates a chorus effect. The buffer holds delayMs+depthMs (plus
// two samples), and the read delay swings by ±depthMs around half that
// buffer length, so the centre delay is about (delayMs+depthMs)/2 rather
// than delayMs.
func NewChorus(delayMs, feedback, depthMs, rateHz, wet float32) *Chorus {
	baseSamples := int(float64(delayMs) * SampleRate / 1000.0)
	depthSamples := float64(depthMs) * SampleRate / 1000.0
	size := baseSamples + int(depthSamples) + 2
	if size < 4 {
		size = 4
	}
	c := &Chorus{
		Base:  graph.NewBase(graph.PerVoice),
		buf:   make([]float32, size),
		size:  size,
		depth: float32(depthSamples),
		rate:  twoPi * float64(rateHz) / SampleRate,
	}
	c.Feedback.Store(clampf(feedback, 0, 0.9))
	c.Wet.Store(clampf(wet, 0, 1))
	return c
}

func (c *Chorus) Update() {
	x := c.sumInputs()
	feedback := c.Feedback.Load()
	wet := c.Wet.Load()

	mod := float32(math.Sin(c.phase)) * c.depth
	c.phase += c.rate
	if c.phase > twoPi {
		c.phase -= twoPi
	}
	c.buf[c.pos] = x

	delay := float32(c.size/2) + mod
	readPos := float32(c.pos) - delay
	for readPos < 0 {
		readPos += float32(c.size)
	}
	idx := int(readPos)
	frac := readPos - float32(idx)
	idx2 := idx + 1
	if idx2 >= c.size {
		idx2 = 0
	}
	delayed := c.buf[idx]*(1-frac) + c.buf[idx2]*frac
	c.buf[c.pos] += delayed * feedback

	c.pos++
	if c.pos >= c.size {
		c.pos = 0
	}
	c.Publish(x*(1-wet) + delayed*wet)
}

// Distortion is tanh waveshaping with pre/post gain and an optional
// post-clip lowpass.
type Distortion struct {
	graph.Base
	EffectNode

	PreGain  graph.Param
	PostGain graph.Param
	lpfAlpha float32
	lpf      float32
}

// NewDistortion creates a distortion effect; lpfCutoff of 0 disables the
// post-clip lowpass.
func NewDistortion(preGain, postGain, lpfCutoff float32) *Distortion {
	d := &Distortion{Base: graph.NewBase(graph.PerVoice)}
	d.PreGain.Store(preGain)
	d.PostGain.Store(postGain)
	if lpfCutoff > 0 && lpfCutoff < SampleRate/2 {
		rc := 1.0 / (2.0 * math.Pi * float64(lpfCutoff))
		dt := 1.0 / float64(SampleRate)
		d.lpfAlpha = float32(dt / (rc + dt))
	}
	return d
}

func (d *Distortion) Update() {
	x := d.sumInputs() * d.PreGain.Load()
	y := float32(math.Tanh(float64(x))) * d.PostGain.Load()
	if d.lpfAlpha > 0 {
		d.lpf += d.lpfAlpha * (y - d.lpf)
		y = d.lpf
	}
	d.Publish(y)
}

// Compressor is a basic feed-forward dynamic range compressor. Threshold
// is kept as a linear-amplitude Param (set once from a dB value at
// construction) so voice templates can bind and modulate it like any
// other node parameter.
type Compressor struct {
	graph.Base
	EffectNode

	Threshold graph.Param
	ratio     float32
	attack    float32
	release   float32
	makeup    float32
	env       float32
}

// NewCompressor creates a compressor with thresholdDB/ratio/attackMs/
// releaseMs/makeupDB matching internal/effects.Compressor's parameter
// shape.
func NewCompressor(thresholdDB, ratio, attackMs, releaseMs, makeupDB float32) *Compressor {
	c := &Compressor{
		Base:    graph.NewBase(graph.PerVoice),
		ratio:   ratio,
		attack:  float32(1 - math.Exp(-1.0/(float64(attackMs)*SampleRate/1000.0))),
		release: float32(1 - math.Exp(-1.0/(float64(releaseMs)*SampleRate/1000.0))),
		makeup:  float32(math.Pow(10, float64(makeupDB)/20)),
	}
	c.Threshold.Store(float32(math.Pow(10, float64(thresholdDB)/20)))
	return c
}

func (c *Compressor) Update() {
	x := c.sumInputs()
	threshold := c.Threshold.Load()
	absX := float32(math.Abs(float64(x)))
	if absX > c.env {
		c.env += c.attack * (absX - c.env)
	} else {
		c.env += c.release * (absX - c.env)
	}
	gain := float32(1.0)
	if c.env > threshold && threshold > 0 {
		over := c.env / threshold
		gain = float32(math.Pow(float64(over), float64(1.0/c.ratio-1)))
	}
	c.Publish(x * gain * c.makeup)
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

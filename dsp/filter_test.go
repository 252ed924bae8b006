package dsp

import (
	"math"
	"testing"

	"github.com/aaratha/takyon/graph"
)

func TestFilterAttenuatesAboveCutoff(t *testing.T) {
	f := NewFilter(200, 0.707)
	osc := NewOscillator(1.0, 8000, graph.Sine)
	f.AddInput(osc.OutParam())

	var maxOut float32
	for i := 0; i < 2000; i++ {
		osc.Update()
		f.Update()
		if v := f.Out(); v > maxOut {
			maxOut = v
		} else if -v > maxOut {
			maxOut = -v
		}
	}
	if maxOut > 0.5 {
		t.Errorf("low-pass failed to attenuate 8kHz through a 200Hz cutoff: max amplitude %f", maxOut)
	}
}

func TestFilterPassesBelowCutoff(t *testing.T) {
	f := NewFilter(5000, 0.707)
	osc := NewOscillator(1.0, 100, graph.Sine)
	f.AddInput(osc.OutParam())

	var maxOut float32
	for i := 0; i < 2000; i++ {
		osc.Update()
		f.Update()
		if v := f.Out(); v > maxOut {
			maxOut = v
		} else if -v > maxOut {
			maxOut = -v
		}
	}
	if maxOut < 0.5 {
		t.Errorf("low-pass over-attenuated a 100Hz tone through a 5kHz cutoff: max amplitude %f", maxOut)
	}
}

func TestLowPassCoeffsClampDegenerateCutoffAndQ(t *testing.T) {
	b0, _, _, _, _ := lowPassCoeffs(0, 0, SampleRate)
	if math.IsNaN(float64(b0)) || math.IsInf(float64(b0), 0) {
		t.Errorf("degenerate cutoff/q produced non-finite b0: %f", b0)
	}
}

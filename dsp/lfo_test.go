package dsp

import (
	"math"
	"testing"

	"github.com/aaratha/takyon/graph"
)

func TestLFOFirstSampleMatchesBasePlusShiftedWave(t *testing.T) {
	l := NewLFO(0.5, 1.0, 5, 0, graph.Sine)
	l.Update()
	if math.Abs(float64(l.Out())-0.5) > 1e-6 {
		t.Errorf("lfo first sample: got %f, want 0.5 (sin(0)=0)", l.Out())
	}
}

func TestLFOFansOutToRegisteredTargets(t *testing.T) {
	l := NewLFO(0, 1.0, 10, 0, graph.Square)
	target := graph.NewParam(0)
	l.AddTarget(target)
	l.Update()
	if target.Load() != l.Out() {
		t.Errorf("target not updated: got %f, want %f", target.Load(), l.Out())
	}
}

func TestLFOFansOutToMultipleTargets(t *testing.T) {
	l := NewLFO(1, 1.0, 10, 0, graph.Sine)
	a := graph.NewParam(0)
	b := graph.NewParam(0)
	l.AddTarget(a)
	l.AddTarget(b)
	l.Update()
	if a.Load() != b.Load() {
		t.Errorf("targets diverged: a=%f b=%f", a.Load(), b.Load())
	}
}

func TestLFOShiftOffsetsPhase(t *testing.T) {
	withShift := NewLFO(0, 1.0, 0, math.Pi/2, graph.Sine)
	withShift.Update()
	noShift := NewLFO(0, 1.0, 0, 0, graph.Sine)
	noShift.Update()
	if math.Abs(float64(withShift.Out())-float64(noShift.Out())) < 1e-6 {
		t.Errorf("shift had no effect: with=%f without=%f", withShift.Out(), noShift.Out())
	}
}

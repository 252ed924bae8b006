package dsp

import (
	"math"
	"testing"

	"github.com/aaratha/takyon/graph"
)

func TestOscillatorSineStartsAtZero(t *testing.T) {
	o := NewOscillator(1.0, 1.0, graph.Sine)
	o.Update()
	if math.Abs(float64(o.Out())) > 1e-6 {
		t.Errorf("sine first sample: got %f, want ~0", o.Out())
	}
}

func TestOscillatorAmpScalesOutput(t *testing.T) {
	o := NewOscillator(0.5, 100, graph.Square)
	o.Update()
	if math.Abs(float64(o.Out())-0.5) > 1e-6 {
		t.Errorf("square*0.5 first sample: got %f, want 0.5", o.Out())
	}
}

func TestOscillatorPhaseWrapsAcrossManySamples(t *testing.T) {
	o := NewOscillator(1.0, 440, graph.Sine)
	for i := 0; i < int(SampleRate); i++ {
		o.Update()
	}
	if o.Phase < 0 || o.Phase >= twoPi {
		t.Errorf("phase escaped [0, 2pi): got %f", o.Phase)
	}
}

func TestOscillatorSetWaveformChangesShape(t *testing.T) {
	o := NewOscillator(1.0, 0, graph.Sine)
	if o.Waveform() != graph.Sine {
		t.Fatalf("expected Sine, got %v", o.Waveform())
	}
	o.SetWaveform(graph.Square)
	if o.Waveform() != graph.Square {
		t.Errorf("expected Square after SetWaveform, got %v", o.Waveform())
	}
}

func TestOscillatorFreqIsAtomicAndLive(t *testing.T) {
	o := NewOscillator(1.0, 10, graph.Saw)
	o.Freq.Store(880)
	if o.Freq.Load() != 880 {
		t.Errorf("expected freq 880 after Store, got %f", o.Freq.Load())
	}
}

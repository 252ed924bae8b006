package voice

import (
	"testing"

	"github.com/aaratha/takyon/dsp"
	"github.com/aaratha/takyon/graph"
)

func oscTemplate() *Template {
	return &Template{
		Nodes: []NodeSpec{
			{SyncMode: graph.PerVoice, Factory: func() graph.Node {
				return dsp.NewOscillator(1, 440, graph.Sine)
			}},
		},
		Params: []ParamSpec{{Kind: OscFreq, NodeIdx: 0}},
	}
}

func TestAllocateVoiceReturnsSentinelWhenVoicesExhausted(t *testing.T) {
	g := graph.New()
	m := NewManager(g, 1)
	tplID := m.RegisterTemplate(oscTemplate())

	a := m.AllocateVoice(tplID)
	if a == -1 {
		t.Fatalf("expected first allocation to succeed")
	}
	b := m.AllocateVoice(tplID)
	if b != -1 {
		t.Errorf("expected -1 when no free slots remain, got %d", b)
	}
}

func TestAllocateVoiceRejectsUnknownTemplate(t *testing.T) {
	g := graph.New()
	m := NewManager(g, 4)
	if id := m.AllocateVoice(99); id != -1 {
		t.Errorf("expected -1 for unknown template, got %d", id)
	}
}

func TestPerVoiceNodesAreDisjointAcrossVoices(t *testing.T) {
	g := graph.New()
	m := NewManager(g, 4)
	tplID := m.RegisterTemplate(oscTemplate())

	a := m.AllocateVoice(tplID)
	b := m.AllocateVoice(tplID)
	instA := m.Instance(a)
	instB := m.Instance(b)

	if instA.NodeIDs[0] == instB.NodeIDs[0] {
		t.Errorf("expected disjoint PerVoice node ids, both got %d", instA.NodeIDs[0])
	}
}

func TestFreeVoiceRemovesOnlyPerVoiceNodes(t *testing.T) {
	g := graph.New()
	m := NewManager(g, 4)
	tplID := m.RegisterTemplate(oscTemplate())

	a := m.AllocateVoice(tplID)
	inst := m.Instance(a)
	nodeID := inst.NodeIDs[0]

	m.FreeVoice(a)

	if g.NodeAt(nodeID) != nil {
		t.Errorf("expected PerVoice node %d removed after FreeVoice", nodeID)
	}
	if m.Instance(a) != nil {
		t.Errorf("expected instance slot cleared after FreeVoice")
	}
}

func TestAllocateVoiceReusesFreedSlotBeforeFailing(t *testing.T) {
	g := graph.New()
	m := NewManager(g, 1)
	tplID := m.RegisterTemplate(oscTemplate())

	a := m.AllocateVoice(tplID)
	m.FreeVoice(a)
	b := m.AllocateVoice(tplID)
	if b == -1 {
		t.Fatalf("expected freed slot to be reusable")
	}
}

func sharedLFOTemplate() *Template {
	return &Template{
		Nodes: []NodeSpec{
			{SyncMode: graph.PerVoice, Factory: func() graph.Node {
				return dsp.NewOscillator(1, 440, graph.Sine)
			}},
			{SyncMode: graph.Shared, Factory: func() graph.Node {
				return dsp.NewLFO(0, 1, 5, 0, graph.Sine)
			}},
		},
		Edges: []EdgeSpec{{ParentIdx: 1, ChildIdx: 0}},
		Params: []ParamSpec{
			{Kind: OscAmp, NodeIdx: 0},
		},
	}
}

func TestSharedNodeIsMemoizedAcrossVoices(t *testing.T) {
	g := graph.New()
	m := NewManager(g, 4)
	tplID := m.RegisterTemplate(sharedLFOTemplate())

	a := m.AllocateVoice(tplID)
	b := m.AllocateVoice(tplID)
	instA := m.Instance(a)
	instB := m.Instance(b)

	if instA.NodeIDs[1] != instB.NodeIDs[1] {
		t.Errorf("expected shared LFO node id equal across voices: got %d and %d", instA.NodeIDs[1], instB.NodeIDs[1])
	}
	if instA.NodeIDs[0] == instB.NodeIDs[0] {
		t.Errorf("expected PerVoice oscillator ids to differ: both got %d", instA.NodeIDs[0])
	}
}

func TestFreeVoiceLeavesSharedNodeAlive(t *testing.T) {
	g := graph.New()
	m := NewManager(g, 4)
	tplID := m.RegisterTemplate(sharedLFOTemplate())

	a := m.AllocateVoice(tplID)
	inst := m.Instance(a)
	lfoID := inst.NodeIDs[1]

	m.FreeVoice(a)

	if g.NodeAt(lfoID) == nil {
		t.Errorf("expected shared LFO node %d to survive FreeVoice", lfoID)
	}
}

func TestSharedLFOFansOutToEachVoicesBoundParam(t *testing.T) {
	g := graph.New()
	m := NewManager(g, 4)
	tplID := m.RegisterTemplate(sharedLFOTemplate())

	a := m.AllocateVoice(tplID)
	b := m.AllocateVoice(tplID)
	instA := m.Instance(a)
	instB := m.Instance(b)

	lfo := g.NodeAt(instA.NodeIDs[1]).(*dsp.LFO)
	oscA := g.NodeAt(instA.NodeIDs[0]).(*dsp.Oscillator)
	oscB := g.NodeAt(instB.NodeIDs[0]).(*dsp.Oscillator)

	lfo.Update()

	want := lfo.Out()
	if oscA.Amp.Load() != want {
		t.Errorf("expected voice a's amp to track the shared LFO: got %f want %f", oscA.Amp.Load(), want)
	}
	if oscB.Amp.Load() != want {
		t.Errorf("expected voice b's amp to track the shared LFO: got %f want %f", oscB.Amp.Load(), want)
	}
}

func TestFreeAllVoicesResetsFreeQueue(t *testing.T) {
	g := graph.New()
	m := NewManager(g, 2)
	tplID := m.RegisterTemplate(oscTemplate())

	m.AllocateVoice(tplID)
	m.AllocateVoice(tplID)
	m.FreeAllVoices()

	a := m.AllocateVoice(tplID)
	b := m.AllocateVoice(tplID)
	if a == -1 || b == -1 {
		t.Fatalf("expected both slots free after FreeAllVoices, got a=%d b=%d", a, b)
	}
}

func TestParamBindingResolvesToLiveOscillatorFreq(t *testing.T) {
	g := graph.New()
	m := NewManager(g, 1)
	tplID := m.RegisterTemplate(oscTemplate())

	a := m.AllocateVoice(tplID)
	inst := m.Instance(a)
	binding := inst.ParamBinds[0]

	binding.Set(880)

	node := g.NodeAt(inst.NodeIDs[0]).(*dsp.Oscillator)
	if node.Freq.Load() != 880 {
		t.Errorf("expected binding write to reach oscillator freq: got %f", node.Freq.Load())
	}
}

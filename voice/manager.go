package voice

import (
	"errors"
	"sync"

	"github.com/aaratha/takyon/dsp"
	"github.com/aaratha/takyon/graph"
)

// ErrBadTemplate names the out-of-range templateId condition. AllocateVoice
// does not return it: out-of-voices and bad-template both surface only
// through the same -1 sentinel, and nothing in this package reports which
// of the two occurred.
var ErrBadTemplate = errors.New("voice: unknown template id")

// Manager owns templates, the fixed-capacity instance slots, the free-id
// queue, and the per-template shared-node memoization table. All methods
// run on the control thread; nothing here is safe to call from the
// realtime callback.
type Manager struct {
	mu sync.Mutex

	graph     *graph.Graph
	maxVoices int

	freeVoiceIDs []int
	templates    []*Template
	sharedNodes  [][]int // sharedNodes[templateId][nodeIdx] = graph id, -1 if not yet created
	instances    []*Instance
}

// NewManager returns a Manager with maxVoices free slots over g.
func NewManager(g *graph.Graph, maxVoices int) *Manager {
	m := &Manager{
		graph:        g,
		maxVoices:    maxVoices,
		freeVoiceIDs: make([]int, maxVoices),
		instances:    make([]*Instance, maxVoices),
	}
	for i := 0; i < maxVoices; i++ {
		m.freeVoiceIDs[i] = maxVoices - 1 - i // pop from the back, so slot 0 is handed out first
	}
	return m
}

// RegisterTemplate stores tpl and returns its templateId. Pushes a fresh
// sharedNodes row, one entry per NodeSpec, all initialized to -1 (not yet
// created).
func (m *Manager) RegisterTemplate(tpl *Template) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := len(m.templates)
	m.templates = append(m.templates, tpl)

	row := make([]int, len(tpl.Nodes))
	for i := range row {
		row[i] = -1
	}
	m.sharedNodes = append(m.sharedNodes, row)
	return id
}

// instantiateNodes realizes every NodeSpec of templateId, creating
// per-voice nodes fresh and reusing (or creating and memoizing) shared
// ones, wires the template's edges, and resorts the graph.
func (m *Manager) instantiateNodes(templateId int) ([]int, error) {
	tpl := m.templates[templateId]
	nodeIDs := make([]int, len(tpl.Nodes))

	for i, ns := range tpl.Nodes {
		switch ns.SyncMode {
		case graph.PerVoice:
			nodeIDs[i] = m.graph.AddNode(ns.Factory())
		case graph.Shared:
			if existing := m.sharedNodes[templateId][i]; existing != -1 {
				nodeIDs[i] = existing
			} else {
				id := m.graph.AddNode(ns.Factory())
				m.sharedNodes[templateId][i] = id
				nodeIDs[i] = id
			}
		}
	}

	for _, es := range tpl.Edges {
		m.graph.AddEdge(nodeIDs[es.ParentIdx], nodeIDs[es.ChildIdx])
	}

	if err := m.graph.Sort(); err != nil {
		return nil, err
	}
	return nodeIDs, nil
}

// instantiateParams resolves every ParamSpec of templateId against the
// just-realized nodeIDs, producing one ParamBinding per spec in the same
// order (so the result is indexable by the template-local paramId).
func (m *Manager) instantiateParams(templateId int, nodeIDs []int) []ParamBinding {
	tpl := m.templates[templateId]
	bindings := make([]ParamBinding, len(tpl.Params))

	for i, ps := range tpl.Params {
		node := m.graph.NodeAt(nodeIDs[ps.NodeIdx])
		bindings[i] = resolveBinding(ps.Kind, node)
	}
	return bindings
}

// controller is any node that fans its value out to registered targets
// (dsp.LFO via dsp.ControlNode).
type controller interface {
	graph.Node
	AddTarget(p *graph.Param)
}

// wireControlTargets registers every bound child param as a fan-out target
// on its controller parent, for every template edge whose parent node is a
// controller. This is what lets a Shared LFO drive each voice's own
// per-voice param (e.g. oscillator amp) once that voice is allocated.
func (m *Manager) wireControlTargets(tpl *Template, nodeIDs []int, bindings []ParamBinding) {
	for _, es := range tpl.Edges {
		ctrl, ok := m.graph.NodeAt(nodeIDs[es.ParentIdx]).(controller)
		if !ok {
			continue
		}
		for i, ps := range tpl.Params {
			if ps.NodeIdx != es.ChildIdx || bindings[i].Param == nil {
				continue
			}
			ctrl.AddTarget(bindings[i].Param)
		}
	}
}

// resolveBinding maps a (Kind, node) pair to the concrete atomic it names
// (OscFreq->Oscillator.freq, LfoWaveform->LFO.type, ...).
func resolveBinding(kind ParamKind, node graph.Node) ParamBinding {
	switch n := node.(type) {
	case *dsp.Oscillator:
		switch kind {
		case OscFreq:
			return ParamBinding{Kind: kind, Param: &n.Freq}
		case OscAmp:
			return ParamBinding{Kind: kind, Param: &n.Amp}
		case OscWaveform:
			return ParamBinding{Kind: kind, Wave: n}
		}
	case *dsp.LFO:
		switch kind {
		case LfoBase:
			return ParamBinding{Kind: kind, Param: &n.Base_}
		case LfoAmp:
			return ParamBinding{Kind: kind, Param: &n.Amp}
		case LfoFreq:
			return ParamBinding{Kind: kind, Param: &n.Freq}
		case LfoShift:
			return ParamBinding{Kind: kind, Param: &n.Shift}
		case LfoWaveform:
			return ParamBinding{Kind: kind, Wave: n}
		}
	case *dsp.Filter:
		switch kind {
		case FilterCutoff:
			return ParamBinding{Kind: kind, Param: &n.Cutoff}
		case FilterQ:
			return ParamBinding{Kind: kind, Param: &n.Q}
		}
	case *dsp.Delay:
		if kind == DelayWet {
			return ParamBinding{Kind: kind, Param: &n.Wet}
		}
	case *dsp.Chorus:
		if kind == ChorusWet {
			return ParamBinding{Kind: kind, Param: &n.Wet}
		}
	case *dsp.Distortion:
		if kind == DistortionDrive {
			return ParamBinding{Kind: kind, Param: &n.PreGain}
		}
	case *dsp.Compressor:
		if kind == CompressorThreshold {
			return ParamBinding{Kind: kind, Param: &n.Threshold}
		}
	}
	return ParamBinding{Kind: kind}
}

// AllocateVoice instantiates templateId into a free slot and returns its
// voiceId, or -1 if there is no free slot or templateId is out of range —
// callers retry after a FreeVoice.
func (m *Manager) AllocateVoice(templateId int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.freeVoiceIDs) == 0 {
		return -1
	}
	if templateId < 0 || templateId >= len(m.templates) {
		return -1
	}

	nodeIDs, err := m.instantiateNodes(templateId)
	if err != nil {
		return -1
	}
	bindings := m.instantiateParams(templateId, nodeIDs)
	m.wireControlTargets(m.templates[templateId], nodeIDs, bindings)

	n := len(m.freeVoiceIDs)
	voiceID := m.freeVoiceIDs[n-1]
	m.freeVoiceIDs = m.freeVoiceIDs[:n-1]

	m.instances[voiceID] = &Instance{
		VoiceID:    voiceID,
		TemplateID: templateId,
		NodeIDs:    nodeIDs,
		ParamBinds: bindings,
		State:      Active,
	}
	return voiceID
}

// FreeVoice removes the instance's PerVoice nodes from the graph (Shared
// nodes persist until FreeAllVoices), clears the slot, and re-queues the
// voiceId. No-op on an out-of-range or already-free voiceId.
func (m *Manager) FreeVoice(voiceID int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if voiceID < 0 || voiceID >= m.maxVoices || m.instances[voiceID] == nil {
		return
	}
	instance := m.instances[voiceID]
	tpl := m.templates[instance.TemplateID]

	for i, nodeID := range instance.NodeIDs {
		if tpl.Nodes[i].SyncMode == graph.PerVoice {
			m.graph.RemoveNode(nodeID)
		}
	}

	m.instances[voiceID] = nil
	m.freeVoiceIDs = append(m.freeVoiceIDs, voiceID)
}

// FreeAllVoices drops every instance and resets the free queue to
// {0..maxVoices-1}. Shared nodes are left in the graph; nothing requires
// collecting them here.
func (m *Manager) FreeAllVoices() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.instances {
		m.instances[i] = nil
	}
	m.freeVoiceIDs = m.freeVoiceIDs[:0]
	for i := m.maxVoices - 1; i >= 0; i-- {
		m.freeVoiceIDs = append(m.freeVoiceIDs, i)
	}
}

// Instance returns the live instance for voiceId, or nil if the slot is
// free or out of range.
func (m *Manager) Instance(voiceID int) *Instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	if voiceID < 0 || voiceID >= m.maxVoices {
		return nil
	}
	return m.instances[voiceID]
}

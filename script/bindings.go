package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/aaratha/takyon/dsp"
	"github.com/aaratha/takyon/graph"
)

const (
	oscType        = "takyon.osc"
	lfoType        = "takyon.lfo"
	filterType     = "takyon.filter"
	delayType      = "takyon.delay"
	chorusType     = "takyon.chorus"
	distortionType = "takyon.distortion"
	compressorType = "takyon.compressor"
	builderType    = "takyon.sound_builder"
)

// nodeHandle is the userdata Value every node constructor pushes: just the
// stable graph id, resolved against the Host's graph on every method call.
type nodeHandle struct {
	id int
}

// controller is any node that accepts fanned-out control writes (LFO).
type controller interface {
	graph.Node
	AddTarget(p *graph.Param)
}

// effect is any node that sums registered inputs (Filter and the
// delay/chorus/distortion/compressor variants).
type effect interface {
	graph.Node
	AddInput(p *graph.Param)
}

// soundBuilder is the userdata Value behind the sound(...) chain: the
// original oscillator plus the current tip of the effect chain.
type soundBuilder struct {
	sourceID  int
	currentID int
}

func (h *Host) register() {
	registerWaveformGlobals(h.L)
	h.createOscMetatable()
	h.createLfoMetatable()
	h.createFilterMetatable()
	h.createDelayMetatable()
	h.createChorusMetatable()
	h.createDistortionMetatable()
	h.createCompressorMetatable()
	h.createBuilderMetatable()

	h.L.SetGlobal("osc", h.L.NewFunction(h.luaCreateOsc))
	h.L.SetGlobal("lfo", h.L.NewFunction(h.luaCreateLfo))
	h.L.SetGlobal("filter", h.L.NewFunction(h.luaCreateFilter))
	h.L.SetGlobal("delay", h.L.NewFunction(h.luaCreateDelay))
	h.L.SetGlobal("chorus", h.L.NewFunction(h.luaCreateChorus))
	h.L.SetGlobal("distortion", h.L.NewFunction(h.luaCreateDistortion))
	h.L.SetGlobal("compressor", h.L.NewFunction(h.luaCreateCompressor))
	h.L.SetGlobal("sound", h.L.NewFunction(h.luaSoundBuilder))
}

func registerWaveformGlobals(L *lua.LState) {
	L.SetGlobal("Sine", lua.LNumber(graph.Sine))
	L.SetGlobal("Saw", lua.LNumber(graph.Saw))
	L.SetGlobal("InvSaw", lua.LNumber(graph.InvSaw))
	L.SetGlobal("Square", lua.LNumber(graph.Square))
	L.SetGlobal("Triangle", lua.LNumber(graph.Triangle))
	L.SetGlobal("PI", lua.LNumber(3.14159265358979323846))
}

func toWaveform(L *lua.LState, idx int) graph.Waveform {
	v := L.Get(idx)
	if v == lua.LNil {
		return graph.Sine
	}
	n, ok := v.(lua.LNumber)
	if !ok {
		L.ArgError(idx, "expected waveform number")
		return graph.Sine
	}
	wf := graph.Waveform(int32(n))
	if wf < graph.Sine || wf > graph.Triangle {
		L.RaiseError("invalid waveform id %d", int32(n))
	}
	return wf
}

func pushNodeHandle(L *lua.LState, id int, mtName string) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = &nodeHandle{id: id}
	L.SetMetatable(ud, L.GetTypeMetatable(mtName))
	L.Push(ud)
	return ud
}

func checkNodeHandle(L *lua.LState, idx int, mtName string) *nodeHandle {
	ud := L.CheckUserData(idx)
	if ud.Metatable != L.GetTypeMetatable(mtName) {
		L.ArgError(idx, mtName+" expected")
	}
	return ud.Value.(*nodeHandle)
}

// asController returns node as a controller if it is one, else nil.
func asController(node graph.Node) controller {
	c, _ := node.(controller)
	return c
}

// setScalarOrControl stores argIdx into param directly if it is a number,
// or — if it is an LFO handle — attaches that LFO as a live control source
// and wires a graph edge from it to ownerID.
func (h *Host) setScalarOrControl(L *lua.LState, param *graph.Param, ownerID, argIdx int) {
	v := L.Get(argIdx)
	if ud, ok := v.(*lua.LUserData); ok {
		if nh, ok2 := ud.Value.(*nodeHandle); ok2 {
			if ctrl := asController(h.graph.NodeAt(nh.id)); ctrl != nil {
				ctrl.AddTarget(param)
				h.graph.AddEdge(nh.id, ownerID)
				return
			}
		}
	}
	n, ok := v.(lua.LNumber)
	if !ok {
		L.ArgError(argIdx, "expected number or control node")
		return
	}
	param.Store(float32(n))
}

func optFloat(L *lua.LState, idx int, def float32) float32 {
	v := L.Get(idx)
	if v == lua.LNil {
		return def
	}
	n, ok := v.(lua.LNumber)
	if !ok {
		L.ArgError(idx, "expected number")
		return def
	}
	return float32(n)
}

// --- Oscillator --------------------------------------------------------

func (h *Host) createOscMetatable() {
	mt := h.L.NewTypeMetatable(oscType)
	methods := h.L.NewTable()
	h.L.SetFuncs(methods, map[string]lua.LGFunction{
		"freq": h.oscFreq,
		"amp":  h.oscAmp,
		"type": h.oscType,
	})
	h.L.SetField(mt, "__index", methods)
}

func (h *Host) oscOf(L *lua.LState, idx int) (*nodeHandle, *dsp.Oscillator) {
	nh := checkNodeHandle(L, idx, oscType)
	osc, ok := h.graph.NodeAt(nh.id).(*dsp.Oscillator)
	if !ok {
		L.RaiseError("invalid oscillator handle")
	}
	return nh, osc
}

func (h *Host) oscFreq(L *lua.LState) int {
	nh, osc := h.oscOf(L, 1)
	h.setScalarOrControl(L, &osc.Freq, nh.id, 2)
	L.SetTop(1)
	return 1
}

func (h *Host) oscAmp(L *lua.LState) int {
	nh, osc := h.oscOf(L, 1)
	h.setScalarOrControl(L, &osc.Amp, nh.id, 2)
	L.SetTop(1)
	return 1
}

func (h *Host) oscType(L *lua.LState) int {
	_, osc := h.oscOf(L, 1)
	osc.SetWaveform(toWaveform(L, 2))
	L.SetTop(1)
	return 1
}

func (h *Host) luaCreateOsc(L *lua.LState) int {
	amp := optFloat(L, 1, 1.0)
	freq := optFloat(L, 2, 440.0)
	wf := toWaveform(L, 3)
	id := h.graph.AddNode(dsp.NewOscillator(amp, freq, wf))
	pushNodeHandle(L, id, oscType)
	return 1
}

// --- LFO -----------------------------------------------------------------

func (h *Host) createLfoMetatable() {
	mt := h.L.NewTypeMetatable(lfoType)
	methods := h.L.NewTable()
	h.L.SetFuncs(methods, map[string]lua.LGFunction{
		"base":  h.lfoBase,
		"amp":   h.lfoAmp,
		"freq":  h.lfoFreq,
		"shift": h.lfoShift,
		"type":  h.lfoType,
	})
	h.L.SetField(mt, "__index", methods)
}

func (h *Host) lfoOf(L *lua.LState, idx int) (*nodeHandle, *dsp.LFO) {
	nh := checkNodeHandle(L, idx, lfoType)
	l, ok := h.graph.NodeAt(nh.id).(*dsp.LFO)
	if !ok {
		L.RaiseError("invalid lfo handle")
	}
	return nh, l
}

func (h *Host) lfoBase(L *lua.LState) int {
	nh, l := h.lfoOf(L, 1)
	h.setScalarOrControl(L, &l.Base_, nh.id, 2)
	L.SetTop(1)
	return 1
}

func (h *Host) lfoAmp(L *lua.LState) int {
	nh, l := h.lfoOf(L, 1)
	h.setScalarOrControl(L, &l.Amp, nh.id, 2)
	L.SetTop(1)
	return 1
}

func (h *Host) lfoFreq(L *lua.LState) int {
	nh, l := h.lfoOf(L, 1)
	h.setScalarOrControl(L, &l.Freq, nh.id, 2)
	L.SetTop(1)
	return 1
}

func (h *Host) lfoShift(L *lua.LState) int {
	nh, l := h.lfoOf(L, 1)
	h.setScalarOrControl(L, &l.Shift, nh.id, 2)
	L.SetTop(1)
	return 1
}

func (h *Host) lfoType(L *lua.LState) int {
	_, l := h.lfoOf(L, 1)
	l.SetWaveform(toWaveform(L, 2))
	L.SetTop(1)
	return 1
}

func (h *Host) luaCreateLfo(L *lua.LState) int {
	base := optFloat(L, 1, 0.0)
	amp := optFloat(L, 2, 1.0)
	freq := optFloat(L, 3, 5.0)

	shiftIsControl := isControlArg(L, h.graph, 4)
	var shift float32
	if !shiftIsControl {
		shift = optFloat(L, 4, 0.0)
	}
	wf := toWaveform(L, 5)

	id := h.graph.AddNode(dsp.NewLFO(base, amp, freq, shift, wf))
	pushNodeHandle(L, id, lfoType)

	if shiftIsControl {
		l := h.graph.NodeAt(id).(*dsp.LFO)
		h.setScalarOrControl(L, &l.Shift, id, 4)
	}
	return 1
}

// isControlArg reports whether argument idx is a node handle resolving to
// a controller (an LFO), without consuming or erroring on non-handle
// values.
func isControlArg(L *lua.LState, g *graph.Graph, idx int) bool {
	ud, ok := L.Get(idx).(*lua.LUserData)
	if !ok {
		return false
	}
	nh, ok := ud.Value.(*nodeHandle)
	if !ok {
		return false
	}
	return asController(g.NodeAt(nh.id)) != nil
}

// --- Filter ----------------------------------------------------------------

func (h *Host) createFilterMetatable() {
	mt := h.L.NewTypeMetatable(filterType)
	methods := h.L.NewTable()
	h.L.SetFuncs(methods, map[string]lua.LGFunction{
		"cutoff": h.filterCutoff,
		"q":      h.filterQ,
	})
	h.L.SetField(mt, "__index", methods)
}

func (h *Host) filterOf(L *lua.LState, idx int) (*nodeHandle, *dsp.Filter) {
	nh := checkNodeHandle(L, idx, filterType)
	f, ok := h.graph.NodeAt(nh.id).(*dsp.Filter)
	if !ok {
		L.RaiseError("invalid filter handle")
	}
	return nh, f
}

func (h *Host) filterCutoff(L *lua.LState) int {
	nh, f := h.filterOf(L, 1)
	h.setScalarOrControl(L, &f.Cutoff, nh.id, 2)
	L.SetTop(1)
	return 1
}

func (h *Host) filterQ(L *lua.LState) int {
	nh, f := h.filterOf(L, 1)
	h.setScalarOrControl(L, &f.Q, nh.id, 2)
	L.SetTop(1)
	return 1
}

func (h *Host) luaCreateFilter(L *lua.LState) int {
	cutoff := optFloat(L, 1, 1000.0)
	q := optFloat(L, 2, 1.0)
	id := h.graph.AddNode(dsp.NewFilter(cutoff, q))
	pushNodeHandle(L, id, filterType)
	return 1
}

// --- Delay / Chorus / Distortion / Compressor ------------------------------

func (h *Host) createDelayMetatable() {
	mt := h.L.NewTypeMetatable(delayType)
	methods := h.L.NewTable()
	h.L.SetFuncs(methods, map[string]lua.LGFunction{
		"feedback": h.delayFeedback,
		"wet":      h.delayWet,
	})
	h.L.SetField(mt, "__index", methods)
}

func (h *Host) delayOf(L *lua.LState, idx int) (*nodeHandle, *dsp.Delay) {
	nh := checkNodeHandle(L, idx, delayType)
	d, ok := h.graph.NodeAt(nh.id).(*dsp.Delay)
	if !ok {
		L.RaiseError("invalid delay handle")
	}
	return nh, d
}

func (h *Host) delayFeedback(L *lua.LState) int {
	nh, d := h.delayOf(L, 1)
	h.setScalarOrControl(L, &d.Feedback, nh.id, 2)
	L.SetTop(1)
	return 1
}

func (h *Host) delayWet(L *lua.LState) int {
	nh, d := h.delayOf(L, 1)
	h.setScalarOrControl(L, &d.Wet, nh.id, 2)
	L.SetTop(1)
	return 1
}

func (h *Host) luaCreateDelay(L *lua.LState) int {
	ms := float64(optFloat(L, 1, 250))
	feedback := optFloat(L, 2, 0.3)
	wet := optFloat(L, 3, 0.5)
	id := h.graph.AddNode(dsp.NewDelay(ms, feedback, wet))
	pushNodeHandle(L, id, delayType)
	return 1
}

func (h *Host) createChorusMetatable() {
	mt := h.L.NewTypeMetatable(chorusType)
	methods := h.L.NewTable()
	h.L.SetFuncs(methods, map[string]lua.LGFunction{
		"feedback": h.chorusFeedback,
		"wet":      h.chorusWet,
	})
	h.L.SetField(mt, "__index", methods)
}

func (h *Host) chorusOf(L *lua.LState, idx int) (*nodeHandle, *dsp.Chorus) {
	nh := checkNodeHandle(L, idx, chorusType)
	c, ok := h.graph.NodeAt(nh.id).(*dsp.Chorus)
	if !ok {
		L.RaiseError("invalid chorus handle")
	}
	return nh, c
}

func (h *Host) chorusFeedback(L *lua.LState) int {
	nh, c := h.chorusOf(L, 1)
	h.setScalarOrControl(L, &c.Feedback, nh.id, 2)
	L.SetTop(1)
	return 1
}

func (h *Host) chorusWet(L *lua.LState) int {
	nh, c := h.chorusOf(L, 1)
	h.setScalarOrControl(L, &c.Wet, nh.id, 2)
	L.SetTop(1)
	return 1
}

func (h *Host) luaCreateChorus(L *lua.LState) int {
	ms := optFloat(L, 1, 15)
	feedback := optFloat(L, 2, 0.2)
	depth := optFloat(L, 3, 3)
	rate := optFloat(L, 4, 0.5)
	wet := optFloat(L, 5, 0.5)
	id := h.graph.AddNode(dsp.NewChorus(ms, feedback, depth, rate, wet))
	pushNodeHandle(L, id, chorusType)
	return 1
}

func (h *Host) createDistortionMetatable() {
	mt := h.L.NewTypeMetatable(distortionType)
	methods := h.L.NewTable()
	h.L.SetFuncs(methods, map[string]lua.LGFunction{
		"pregain":  h.distortionPreGain,
		"postgain": h.distortionPostGain,
	})
	h.L.SetField(mt, "__index", methods)
}

func (h *Host) distortionOf(L *lua.LState, idx int) (*nodeHandle, *dsp.Distortion) {
	nh := checkNodeHandle(L, idx, distortionType)
	d, ok := h.graph.NodeAt(nh.id).(*dsp.Distortion)
	if !ok {
		L.RaiseError("invalid distortion handle")
	}
	return nh, d
}

func (h *Host) distortionPreGain(L *lua.LState) int {
	nh, d := h.distortionOf(L, 1)
	h.setScalarOrControl(L, &d.PreGain, nh.id, 2)
	L.SetTop(1)
	return 1
}

func (h *Host) distortionPostGain(L *lua.LState) int {
	nh, d := h.distortionOf(L, 1)
	h.setScalarOrControl(L, &d.PostGain, nh.id, 2)
	L.SetTop(1)
	return 1
}

func (h *Host) luaCreateDistortion(L *lua.LState) int {
	preGain := optFloat(L, 1, 2)
	postGain := optFloat(L, 2, 1)
	lpf := optFloat(L, 3, 0)
	id := h.graph.AddNode(dsp.NewDistortion(preGain, postGain, lpf))
	pushNodeHandle(L, id, distortionType)
	return 1
}

func (h *Host) createCompressorMetatable() {
	mt := h.L.NewTypeMetatable(compressorType)
	methods := h.L.NewTable()
	h.L.SetFuncs(methods, map[string]lua.LGFunction{
		"threshold": h.compressorThreshold,
	})
	h.L.SetField(mt, "__index", methods)
}

func (h *Host) compressorOf(L *lua.LState, idx int) (*nodeHandle, *dsp.Compressor) {
	nh := checkNodeHandle(L, idx, compressorType)
	c, ok := h.graph.NodeAt(nh.id).(*dsp.Compressor)
	if !ok {
		L.RaiseError("invalid compressor handle")
	}
	return nh, c
}

func (h *Host) compressorThreshold(L *lua.LState) int {
	nh, c := h.compressorOf(L, 1)
	h.setScalarOrControl(L, &c.Threshold, nh.id, 2)
	L.SetTop(1)
	return 1
}

func (h *Host) luaCreateCompressor(L *lua.LState) int {
	thresholdDB := optFloat(L, 1, -12)
	ratio := optFloat(L, 2, 4)
	attack := optFloat(L, 3, 5)
	release := optFloat(L, 4, 50)
	makeup := optFloat(L, 5, 0)
	id := h.graph.AddNode(dsp.NewCompressor(thresholdDB, ratio, attack, release, makeup))
	pushNodeHandle(L, id, compressorType)
	return 1
}

// --- Sound builder -----------------------------------------------------

func (h *Host) createBuilderMetatable() {
	mt := h.L.NewTypeMetatable(builderType)
	methods := h.L.NewTable()
	h.L.SetFuncs(methods, map[string]lua.LGFunction{
		"freq":   h.builderFreq,
		"amp":    h.builderAmp,
		"effect": h.builderEffect,
		"cutoff": h.builderCutoff,
		"play":   h.builderPlay,
	})
	h.L.SetField(mt, "__index", methods)
}

func checkBuilder(L *lua.LState, idx int) *soundBuilder {
	ud := L.CheckUserData(idx)
	b, ok := ud.Value.(*soundBuilder)
	if !ok {
		L.ArgError(idx, "sound builder expected")
	}
	return b
}

func (h *Host) builderFreq(L *lua.LState) int {
	b := checkBuilder(L, 1)
	osc, ok := h.graph.NodeAt(b.sourceID).(*dsp.Oscillator)
	if !ok {
		L.RaiseError("builder source is not an oscillator")
	}
	h.setScalarOrControl(L, &osc.Freq, b.sourceID, 2)
	L.SetTop(1)
	return 1
}

func (h *Host) builderAmp(L *lua.LState) int {
	b := checkBuilder(L, 1)
	osc, ok := h.graph.NodeAt(b.sourceID).(*dsp.Oscillator)
	if !ok {
		L.RaiseError("builder source is not an oscillator")
	}
	h.setScalarOrControl(L, &osc.Amp, b.sourceID, 2)
	L.SetTop(1)
	return 1
}

func (h *Host) builderEffect(L *lua.LState) int {
	b := checkBuilder(L, 1)
	ud := L.CheckUserData(2)
	nh, ok := ud.Value.(*nodeHandle)
	if !ok {
		L.ArgError(2, "effect handle expected")
	}
	eff, ok := h.graph.NodeAt(nh.id).(effect)
	if !ok {
		L.RaiseError("handle is not an effect node")
	}
	upstream := h.graph.NodeAt(b.currentID)
	if upstream == nil {
		L.RaiseError("builder has invalid node")
	}
	eff.AddInput(upstream.OutParam())
	h.graph.AddEdge(b.currentID, nh.id)
	b.currentID = nh.id
	L.SetTop(1)
	return 1
}

func (h *Host) builderCutoff(L *lua.LState) int {
	b := checkBuilder(L, 1)
	f, ok := h.graph.NodeAt(b.currentID).(*dsp.Filter)
	if !ok {
		L.RaiseError("builder tip is not a filter")
	}
	h.setScalarOrControl(L, &f.Cutoff, b.currentID, 2)
	L.SetTop(1)
	return 1
}

func (h *Host) builderPlay(L *lua.LState) int {
	b := checkBuilder(L, 1)
	if h.graph.NodeAt(b.currentID) == nil {
		L.RaiseError("cannot play: invalid node")
	}
	if err := h.graph.SetSink(b.currentID); err != nil {
		L.RaiseError("cannot play: %v", err)
	}
	return 0
}

func (h *Host) luaSoundBuilder(L *lua.LState) int {
	nh := checkNodeHandle(L, 1, oscType)
	ud := L.NewUserData()
	ud.Value = &soundBuilder{sourceID: nh.id, currentID: nh.id}
	L.SetMetatable(ud, L.GetTypeMetatable(builderType))
	L.Push(ud)
	return 1
}

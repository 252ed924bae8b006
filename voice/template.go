package voice

import "github.com/aaratha/takyon/graph"

// NodeSpec describes one node slot in a VoiceTemplate: how to build it
// (factory) and whether it is realized fresh per voice or shared across
// every voice derived from the template.
type NodeSpec struct {
	SyncMode graph.SyncMode
	Factory  func() graph.Node
}

// EdgeSpec is an edge between two NodeSpecs, addressed by their
// template-local index.
type EdgeSpec struct {
	ParentIdx int
	ChildIdx  int
}

// ParamSpec names a parameter exposed by the template at a dense
// template-local paramId: which node (by template-local index) and which
// of that node's controls (Kind).
type ParamSpec struct {
	Kind    ParamKind
	NodeIdx int
}

// Template is a patch blueprint: parallel Nodes/Edges/Params collections.
type Template struct {
	Nodes  []NodeSpec
	Edges  []EdgeSpec
	Params []ParamSpec
}

package voice

// State is the lifecycle stage of a realized voice.
type State int

const (
	Active State = iota
	Releasing
	Inactive
)

// Instance is a realized Template: the graph ids of its nodes (in
// template-local order) and the resolved param bindings, indexed the same
// way as the originating Template.Params. The edges it added are not
// recorded here.
type Instance struct {
	VoiceID      int
	TemplateID   int
	NodeIDs      []int
	ParamBinds   []ParamBinding
	State        State
}

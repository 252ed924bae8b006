// Package pattern sketches an event/cue subsystem that was never finished.
// This is an honest stub: the types below describe the intended wire
// shape for note-on/off/param/kill-all events timestamped in samples, but
// nothing here is wired into render.Renderer or voice.Manager. A real
// implementation would drain Queue from the realtime callback before each
// frame, mutating only atomic params and voice slot state through
// lock-free primitives.
package pattern

// EventType identifies the kind of payload an Event carries.
type EventType int

const (
	NoteOn EventType = iota
	NoteOff
	SetParam
	KillAll
)

// NoteOnPayload requests a new voice from templateId at the given pitch
// and velocity.
type NoteOnPayload struct {
	TemplateID int
	Pitch      float32
	Velocity   float32
}

// NoteOffPayload requests release of an active voice.
type NoteOffPayload struct {
	VoiceID int
}

// SetParamPayload requests a scalar write to one of a voice's bound
// params.
type SetParamPayload struct {
	VoiceID int
	ParamID int
	Value   float32
}

// Event is a single timestamped entry in the pattern queue. Exactly one
// of the payload fields is meaningful, selected by Type.
type Event struct {
	Type       EventType
	TSSamples  uint64
	NoteOn     NoteOnPayload
	NoteOff    NoteOffPayload
	SetParam   SetParamPayload
}

// Queue holds pending events in push order plus a map from cue name to
// queue position. It has no synchronization and no operation that removes
// or consumes events, so it is not safe to share between goroutines.
type Queue struct {
	events  []Event
	cueMap  map[string]int
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	return &Queue{cueMap: make(map[string]int)}
}

// Push appends ev to the queue.
func (q *Queue) Push(ev Event) {
	q.events = append(q.events, ev)
}

// Cue returns the queue position recorded for name by SetCue, mirroring
// PatternEngine's cueMap. Lookup only; nothing currently resolves a cue
// back into playback.
func (q *Queue) Cue(name string) (int, bool) {
	pos, ok := q.cueMap[name]
	return pos, ok
}

// SetCue records name as pointing at position pos.
func (q *Queue) SetCue(name string, pos int) {
	q.cueMap[name] = pos
}

// Len reports the number of pending events.
func (q *Queue) Len() int {
	return len(q.events)
}

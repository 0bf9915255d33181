package sim

// TraceEntry is one observation of a run: the state after a step, the record
// the step emitted, the step's time value, and the action taken. The initial
// entry carries only the state.
type TraceEntry struct {
	State     State
	Record    StepRecord
	TimeValue any
	Action    Action
}

// Recorder observes a run step by step. Recorders must not alter control
// flow; the engine ignores anything they do.
type Recorder interface {
	Record(entry TraceEntry)
}

// NoRecorder discards all observations. This is the path the evaluator takes
// for repeated calls from a search loop.
type NoRecorder struct{}

// Record implements Recorder by doing nothing
func (NoRecorder) Record(TraceEntry) {}

// TraceRecorder retains every observation as a full step-by-step trace
type TraceRecorder struct {
	Entries []TraceEntry
}

// NewTraceRecorder creates a trace recorder pre-sized for n steps plus the
// initial entry.
func NewTraceRecorder(n int) *TraceRecorder {
	return &TraceRecorder{Entries: make([]TraceEntry, 0, n+1)}
}

// Record implements Recorder by appending the entry
func (r *TraceRecorder) Record(entry TraceEntry) {
	r.Entries = append(r.Entries, entry)
}

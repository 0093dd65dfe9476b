package model

// EventType names the payload carried by an Event.
type EventType string

const (
	EventProgress  EventType = "progress"
	EventSucceeded EventType = "succeeded"
	EventFailed    EventType = "failed"
	EventCancelled EventType = "cancelled"
)

// Event is the unit exchanged between a running pipeline and its consumer.
// Progress events fill Index, Total and Item; success fills Destination;
// failure fills Message and Detail; cancellation fills Processed.
type Event struct {
	Type        EventType `json:"type"`
	JobID       string    `json:"job_id,omitempty"`
	Index       int       `json:"index,omitempty"`
	Total       int       `json:"total,omitempty"`
	Item        string    `json:"item,omitempty"`
	Destination string    `json:"destination,omitempty"`
	Message     string    `json:"msg,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	Processed   int       `json:"processed,omitempty"`
}

// Terminal reports whether the event ends a run.
func (e Event) Terminal() bool {
	return e.Type == EventSucceeded || e.Type == EventFailed || e.Type == EventCancelled
}

// RunState is the observable state of the current run.
type RunState string

const (
	StateIdle      RunState = "idle"
	StateRunning   RunState = "running"
	StateSucceeded RunState = "succeeded"
	StateFailed    RunState = "failed"
	StateCancelled RunState = "cancelled"
)

// ProgressSnapshot is what a polling consumer exposes after applying events.
type ProgressSnapshot struct {
	JobID       string   `json:"job_id,omitempty"`
	State       RunState `json:"state"`
	Index       int      `json:"index"`
	Total       int      `json:"total"`
	Item        string   `json:"item,omitempty"`
	Percent     float64  `json:"percent"`
	Destination string   `json:"destination,omitempty"`
	Message     string   `json:"msg,omitempty"`
	Detail      string   `json:"detail,omitempty"`
}

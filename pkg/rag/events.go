package rag

// EventKind distinguishes progress from per-item problems and terminal
// outcomes. Everything but EventFatal and EventComplete means the run is
// still going.
type EventKind int

const (
	// EventInfo is a routine progress step.
	EventInfo EventKind = iota
	// EventWarn is a recoverable per-URL problem (extraction came up empty).
	EventWarn
	// EventError is a recoverable per-URL failure (fetch failed).
	EventError
	// EventFatal ends the run unsuccessfully. The index holds no chunks
	// from this run.
	EventFatal
	// EventComplete ends the run successfully.
	EventComplete
)

// Event is one human-readable progress message from an ingestion run.
// Events arrive strictly in the order the steps happen.
type Event struct {
	Kind    EventKind
	Message string
}

// Terminal reports whether this event ends the run.
func (e Event) Terminal() bool {
	return e.Kind == EventFatal || e.Kind == EventComplete
}

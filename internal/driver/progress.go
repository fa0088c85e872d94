package driver

// Phase names a driver phase.
type Phase uint8

const (
	PhaseParse Phase = iota
	PhaseDeclare
	PhaseBind
	PhaseResolveVariables
	PhaseAnalyze
	PhaseEmit
)

func (p Phase) String() string {
	switch p {
	case PhaseParse:
		return "parse"
	case PhaseDeclare:
		return "declare"
	case PhaseBind:
		return "bind"
	case PhaseResolveVariables:
		return "resolve-variables"
	case PhaseAnalyze:
		return "analyze"
	case PhaseEmit:
		return "emit"
	}
	return "unknown"
}

// Status is the progress of one routine within a phase.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusWorking:
		return "working"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Event reports progress. Routine is empty for phase-wide events.
type Event struct {
	Routine string
	Phase   Phase
	Status  Status
}

// ProgressSink receives driver events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events to a channel and drops them when it is full,
// so a slow consumer never blocks the driver.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	select {
	case s.Ch <- evt:
	default:
	}
}

type nopSink struct{}

func (nopSink) OnEvent(Event) {}

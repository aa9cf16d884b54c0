package ingestion

// State is a stage of a pipeline run.
type State int

const (
	StateIdle State = iota
	StateSegmenting
	StateExtracting
	StateRefining
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSegmenting:
		return "segmenting"
	case StateExtracting:
		return "extracting"
	case StateRefining:
		return "refining"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// next lists the legal successors of each state. Failed is only reachable
// from Segmenting.
var next = map[State][]State{
	StateIdle:       {StateSegmenting},
	StateSegmenting: {StateExtracting, StateFailed},
	StateExtracting: {StateRefining},
	StateRefining:   {StateDone},
}

// CanTransition reports whether a run may move from s to to.
func (s State) CanTransition(to State) bool {
	for _, candidate := range next[s] {
		if candidate == to {
			return true
		}
	}
	return false
}

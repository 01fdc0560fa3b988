package runtime

// Phase is the lifecycle stage of a single transition.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePlanned
	PhaseSubstituted
	PhaseDelegated
	PhaseCommitted
	PhaseRolledBack
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePlanned:
		return "planned"
	case PhaseSubstituted:
		return "substituted"
	case PhaseDelegated:
		return "delegated"
	case PhaseCommitted:
		return "committed"
	case PhaseRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Settled reports whether the phase is terminal.
func (p Phase) Settled() bool {
	return p == PhaseCommitted || p == PhaseRolledBack
}

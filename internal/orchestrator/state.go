package orchestrator

import "time"

// State is the position of a descriptor in the registration sequence.
type State int

const (
	Pending State = iota
	Resolving
	Constructing
	Hooking
	Registered
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolving:
		return "resolving"
	case Constructing:
		return "constructing"
	case Hooking:
		return "hooking"
	case Registered:
		return "registered"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Registered || s == Failed
}

// Outcome is the record of one processed descriptor.
type Outcome struct {
	Name    string
	Package string
	Symbol  string
	Version string
	State   State
	// Service is set when the factory returned no instance.
	Service bool
	Err     error
	Elapsed time.Duration
}

// Registered reports whether the descriptor ended in Registered.
func (o Outcome) Registered() bool {
	return o.State == Registered
}

func (o *Outcome) transition(s State) {
	if o.State.Terminal() {
		return
	}
	o.State = s
}

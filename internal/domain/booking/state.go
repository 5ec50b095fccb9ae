package booking

import (
	"time"

	"github.com/shareloop/service-sharing/pkg/domain"
)

// State is a query-time listing filter. It is derived from a booking's
// status and temporal bounds relative to "now"; it is never persisted.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

// statePredicates holds the match rule for each filter, so all six
// predicates stay centrally testable.
var statePredicates = map[State]func(status Status, start, end, now time.Time) bool{
	StateAll: func(Status, time.Time, time.Time, time.Time) bool {
		return true
	},
	StateCurrent: func(_ Status, start, end, now time.Time) bool {
		return !start.After(now) && !end.Before(now)
	},
	StatePast: func(_ Status, _, end, now time.Time) bool {
		return end.Before(now)
	},
	StateFuture: func(_ Status, start, _, now time.Time) bool {
		return start.After(now)
	},
	StateWaiting: func(status Status, _, _, _ time.Time) bool {
		return status == StatusWaiting
	},
	StateRejected: func(status Status, _, _, _ time.Time) bool {
		return status == StatusRejected
	},
}

// ParseState converts the textual filter into a State. Unrecognized values
// yield an unsupported-state error, which is distinct from plain validation
// failures at the transport boundary.
func ParseState(s string) (State, error) {
	state := State(s)
	if _, ok := statePredicates[state]; !ok {
		return "", domain.NewUnsupportedStateError(s)
	}
	return state, nil
}

// Matches reports whether a booking with the given status and bounds
// satisfies this filter at the given instant.
func (s State) Matches(status Status, start, end, now time.Time) bool {
	pred, ok := statePredicates[s]
	if !ok {
		return false
	}
	return pred(status, start, end, now)
}

// Classify returns the temporal bucket of a booking at the given instant:
// PAST when the window has closed, FUTURE when it has not opened, CURRENT
// otherwise. Status-based filters (WAITING, REJECTED) overlap these buckets
// and are answered by Matches.
func Classify(status Status, start, end, now time.Time) State {
	switch {
	case StatePast.Matches(status, start, end, now):
		return StatePast
	case StateFuture.Matches(status, start, end, now):
		return StateFuture
	default:
		return StateCurrent
	}
}

package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareloop/service-sharing/pkg/domain"
)

func TestParseState(t *testing.T) {
	for _, s := range []string{"ALL", "CURRENT", "PAST", "FUTURE", "WAITING", "REJECTED"} {
		state, err := ParseState(s)
		require.NoError(t, err)
		assert.Equal(t, State(s), state)
	}

	for _, s := range []string{"", "all", "Current", "APPROVED", "UNKNOWN"} {
		_, err := ParseState(s)
		require.Error(t, err, "state %q", s)
		assert.True(t, domain.IsKind(err, domain.KindUnsupportedState))
		assert.Contains(t, err.Error(), "Unknown state: "+s)
	}
}

func TestStateMatches(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-2 * time.Hour)
	recent := now.Add(-time.Hour)
	soon := now.Add(time.Hour)
	later := now.Add(2 * time.Hour)

	tests := []struct {
		name   string
		state  State
		status Status
		start  time.Time
		end    time.Time
		want   bool
	}{
		{"all matches anything", StateAll, StatusRejected, past, recent, true},

		{"current spanning now", StateCurrent, StatusApproved, recent, soon, true},
		{"current starting exactly now", StateCurrent, StatusApproved, now, soon, true},
		{"current ending exactly now", StateCurrent, StatusApproved, recent, now, true},
		{"current excludes ended", StateCurrent, StatusApproved, past, recent, false},
		{"current excludes upcoming", StateCurrent, StatusApproved, soon, later, false},
		{"current ignores status", StateCurrent, StatusRejected, recent, soon, true},

		{"past when ended", StatePast, StatusApproved, past, recent, true},
		{"past excludes ending now", StatePast, StatusApproved, past, now, false},
		{"past excludes ongoing", StatePast, StatusApproved, recent, soon, false},

		{"future when not started", StateFuture, StatusWaiting, soon, later, true},
		{"future excludes starting now", StateFuture, StatusWaiting, now, later, false},

		{"waiting by status", StateWaiting, StatusWaiting, soon, later, true},
		{"waiting excludes approved", StateWaiting, StatusApproved, soon, later, false},
		{"waiting ignores time", StateWaiting, StatusWaiting, past, recent, true},

		{"rejected by status", StateRejected, StatusRejected, soon, later, true},
		{"rejected excludes waiting", StateRejected, StatusWaiting, soon, later, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Matches(tt.status, tt.start, tt.end, now))
		})
	}
}

func TestClassify(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, StatePast, Classify(StatusApproved, now.Add(-2*time.Hour), now.Add(-time.Hour), now))
	assert.Equal(t, StateFuture, Classify(StatusWaiting, now.Add(time.Hour), now.Add(2*time.Hour), now))
	assert.Equal(t, StateCurrent, Classify(StatusApproved, now.Add(-time.Hour), now.Add(time.Hour), now))
	assert.Equal(t, StateCurrent, Classify(StatusApproved, now, now.Add(time.Hour), now))
	assert.Equal(t, StateCurrent, Classify(StatusApproved, now.Add(-time.Hour), now, now))
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusWaiting.CanTransitionTo(StatusApproved))
	assert.True(t, StatusWaiting.CanTransitionTo(StatusRejected))
	assert.False(t, StatusApproved.CanTransitionTo(StatusRejected))
	assert.False(t, StatusApproved.CanTransitionTo(StatusWaiting))
	assert.False(t, StatusRejected.CanTransitionTo(StatusApproved))

	assert.False(t, StatusWaiting.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
}

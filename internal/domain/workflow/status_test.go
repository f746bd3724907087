package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name     string
		current  Status
		decision Decision
		want     Status
		wantErr  error
	}{
		{"approve pending", StatusPending, DecisionApprove, StatusApproved, nil},
		{"reject pending", StatusPending, DecisionReject, StatusRejected, nil},
		{"approve approved", StatusApproved, DecisionApprove, StatusApproved, ErrAlreadyReviewed},
		{"reject approved", StatusApproved, DecisionReject, StatusApproved, ErrAlreadyReviewed},
		{"approve rejected", StatusRejected, DecisionApprove, StatusRejected, ErrAlreadyReviewed},
		{"unknown decision", StatusPending, Decision("maybe"), StatusPending, ErrInvalidDecision},
		{"unknown status", Status("cancelled"), DecisionApprove, Status("cancelled"), ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.current, tt.decision)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDecision(t *testing.T) {
	d, err := ParseDecision("approved")
	assert.NoError(t, err)
	assert.Equal(t, DecisionApprove, d)

	_, err = ParseDecision("APPROVE")
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
}

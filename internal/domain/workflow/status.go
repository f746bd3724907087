package workflow

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyReviewed = errors.New("request has already been reviewed")
	ErrInvalidDecision = errors.New("invalid review decision")
	ErrInvalidStatus   = errors.New("invalid request status")
)

// Status is the lifecycle state shared by leave, overtime and comp-off requests.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Decision is what a reviewing manager can do with a pending request.
type Decision string

const (
	DecisionApprove Decision = "approved"
	DecisionReject  Decision = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionApprove, DecisionReject:
		return Decision(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDecision, s)
}

// IsTerminal reports whether no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected:
		return true
	case StatusPending:
		return false
	}
	return false
}

// Transition returns the status a request moves to when decision is applied to
// current. Only pending requests can be reviewed.
func Transition(current Status, decision Decision) (Status, error) {
	switch current {
	case StatusPending:
	case StatusApproved, StatusRejected:
		return current, ErrAlreadyReviewed
	default:
		return current, fmt.Errorf("%w: %q", ErrInvalidStatus, current)
	}

	switch decision {
	case DecisionApprove:
		return StatusApproved, nil
	case DecisionReject:
		return StatusRejected, nil
	}
	return current, fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
}

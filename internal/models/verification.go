package models

import (
	"errors"
	"fmt"
	"strings"
)

type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusApproved VerificationStatus = "approved"
	StatusRejected VerificationStatus = "rejected"
)

// Statuses lists every verification status in display order.
var Statuses = []VerificationStatus{StatusPending, StatusApproved, StatusRejected}

func ParseVerificationStatus(s string) (VerificationStatus, error) {
	switch VerificationStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	}
	return "", &ValidationError{Field: "verificationStatus", Message: "Verification status must be pending, approved or rejected"}
}

// Action is an admin decision on a therapist registration.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

var ErrInvalidTransition = errors.New("invalid verification transition")

// transitions is the guarded state machine. Re-applying an action to an
// account already in its target state is allowed and changes nothing.
var transitions = map[VerificationStatus]map[Action]VerificationStatus{
	StatusPending: {
		ActionApprove: StatusApproved,
		ActionReject:  StatusRejected,
	},
	StatusApproved: {
		ActionApprove: StatusApproved,
		ActionReject:  StatusRejected,
	},
	StatusRejected: {
		ActionApprove: StatusApproved,
		ActionReject:  StatusRejected,
	},
}

// NextStatus returns the status reached by applying action in state from.
func NextStatus(from VerificationStatus, action Action) (VerificationStatus, error) {
	next, ok := transitions[from][action]
	if !ok {
		return "", fmt.Errorf("%w: %s from %q", ErrInvalidTransition, action, from)
	}
	return next, nil
}

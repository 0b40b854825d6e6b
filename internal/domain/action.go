package domain

import (
	"fmt"
	"math/big"
)

// Action is a state-changing farm operation offered to the user.
type Action int

const (
	ActionApprove Action = iota
	ActionStake
	ActionExit
)

// action string constants to avoid magic strings
const (
	actionStringApprove = "approve"
	actionStringStake   = "stake"
	actionStringExit    = "exit"
)

// ParseAction converts a renderer-facing action name into an Action.
func ParseAction(s string) (Action, bool) {
	switch s {
	case actionStringApprove:
		return ActionApprove, true
	case actionStringStake:
		return ActionStake, true
	case actionStringExit:
		return ActionExit, true
	}
	return 0, false
}

// String returns the string representation of the action
func (a Action) String() string {
	switch a {
	case ActionApprove:
		return actionStringApprove
	case ActionStake:
		return actionStringStake
	case ActionExit:
		return actionStringExit
	default:
		return "unknown"
	}
}

// MarshalText lets actions travel as plain strings in JSON views.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	parsed, ok := ParseAction(string(text))
	if !ok {
		return fmt.Errorf("unknown action %q", text)
	}
	*a = parsed
	return nil
}

// OfferedActions implements the unlock gate: an allowance strictly above
// ApprovalThreshold unlocks staking, anything else still needs an approval.
// Exit is always offered.
func OfferedActions(approved *big.Int) []Action {
	if approved != nil && approved.Cmp(ApprovalThreshold()) > 0 {
		return []Action{ActionStake, ActionExit}
	}
	return []Action{ActionApprove, ActionExit}
}

// Offers reports whether action is part of the set.
func Offers(actions []Action, action Action) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

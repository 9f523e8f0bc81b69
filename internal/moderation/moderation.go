// Package moderation holds the approval and featuring rules for wishes and
// gallery images. It is pure logic: callers persist the resulting flags.
package moderation

import (
	"errors"
	"fmt"
)

type State string

const (
	Pending  State = "pending"
	Approved State = "approved"
	Featured State = "featured"
)

type Action string

const (
	Approve   Action = "approve"
	Revoke    Action = "revoke"
	Feature   Action = "feature"
	Unfeature Action = "unfeature"
)

var (
	ErrNotApproved       = errors.New("wish must be approved before it can be featured")
	ErrUnknownAction     = errors.New("unknown moderation action")
	ErrUnsupportedAction = errors.New("action not supported for gallery images")
)

// ParseAction accepts the action names used in routes and key bindings.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case Approve, Revoke, Feature, Unfeature:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// StateOf derives the state from stored flags. A featured flag without
// approval is treated as pending, the only safe reading of such a row.
func StateOf(approved, featured bool) State {
	switch {
	case !approved:
		return Pending
	case featured:
		return Featured
	default:
		return Approved
	}
}

// Flags returns the (is_approved, is_featured) pair for s.
func (s State) Flags() (approved, featured bool) {
	switch s {
	case Approved:
		return true, false
	case Featured:
		return true, true
	default:
		return false, false
	}
}

// Next applies a to s. No-op transitions return s unchanged with a nil error.
// Featuring a pending wish is refused: s is returned with ErrNotApproved.
func Next(s State, a Action) (State, error) {
	switch a {
	case Approve:
		if s == Pending {
			return Approved, nil
		}
		return s, nil
	case Revoke:
		return Pending, nil
	case Feature:
		if s == Pending {
			return s, ErrNotApproved
		}
		return Featured, nil
	case Unfeature:
		if s == Featured {
			return Approved, nil
		}
		return s, nil
	}
	return s, fmt.Errorf("%w: %q", ErrUnknownAction, a)
}

// NextImage applies a to a gallery image's featured flag. Images have no
// approval step, so feature and unfeature are unconditional.
func NextImage(featured bool, a Action) (bool, error) {
	switch a {
	case Feature:
		return true, nil
	case Unfeature:
		return false, nil
	case Approve, Revoke:
		return featured, ErrUnsupportedAction
	}
	return featured, fmt.Errorf("%w: %q", ErrUnknownAction, a)
}

// Toggle picks the action that flips the featured flag, used by key bindings.
func Toggle(s State) Action {
	if s == Featured {
		return Unfeature
	}
	return Feature
}

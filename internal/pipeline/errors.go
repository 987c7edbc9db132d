package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamRequest marks a failed or empty text/image generation call.
	ErrUpstreamRequest = errors.New("upstream request failed")
	// ErrPersistence marks a failed read or write of the ledger or artifacts.
	ErrPersistence = errors.New("persistence failed")
)

// Error reports the state a run failed in. errors.Is matches both Kind and
// the underlying cause.
type Error struct {
	Kind  error
	State State
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s (%s)", e.Kind, e.State)
	}
	return fmt.Sprintf("%s (%s): %v", e.Kind, e.State, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// kindFor classifies a failure by the state it happened in.
func kindFor(s State) error {
	switch s {
	case StateRequestingText, StateRequestingImage:
		return ErrUpstreamRequest
	default:
		return ErrPersistence
	}
}

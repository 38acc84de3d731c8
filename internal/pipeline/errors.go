package pipeline

import "fmt"

// ValidationError rejects unusable input before any pipeline work starts
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid claim: " + e.Reason
}

// StageError tags a fatal failure with the stage that produced it, so a
// failed run can state where it died without leaking internals.
type StageError struct {
	State State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.State, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

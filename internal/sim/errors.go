package sim

import "fmt"

// InterfaceNotImplementedError reports a required callback that the concrete
// type in use does not supply. This is a programming error: it is raised
// immediately and never retried.
type InterfaceNotImplementedError struct {
	Method    string // missing method name
	Receiver  string // concrete type that should implement it
	Signature string // minimal implementing signature
}

func (e *InterfaceNotImplementedError) Error() string {
	return fmt.Sprintf("interface not implemented: %s does not implement %s; expected signature: %s", e.Receiver, e.Method, e.Signature)
}

// TimeAxisTypeError reports a time axis that is not homogeneously typed
type TimeAxisTypeError struct {
	Index int    // offending 0-based position within the axis
	Want  string // element type established by the first entry
	Got   string // element type found at Index
}

func (e *TimeAxisTypeError) Error() string {
	return fmt.Sprintf("time axis is not homogeneously typed: element %d is %s, expected %s", e.Index, e.Got, e.Want)
}

// ValidationError reports a malformed problem setup, detected before any
// simulation work begins.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

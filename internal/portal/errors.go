package portal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBusy is returned when a session already has a call outstanding.
var ErrBusy = errors.New("another request is already in progress")

// RejectionError reports a client-side refusal, such as a file of the wrong type.
type RejectionError struct {
	Kind   AssetKind
	Name   string
	Reason string
}

func (e *RejectionError) Error() string {
	if e.Name == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s rejected: %s", e.Name, e.Reason)
}

// APIError is a non-2xx answer from the portal. Message is the backend's
// {message} body and is meant to be shown verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// NetworkError wraps a transport failure where no response was received.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// MissingFieldsError lists every required form field that was empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

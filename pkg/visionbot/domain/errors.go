package domain

import (
	"errors"
	"fmt"
)

// ErrNoImage is returned when a command is issued in a conversation which has no image yet.
var ErrNoImage = errors.New("no image in this conversation")

// DecodeError malformed or unsupported image bytes. Fatal to the current command, never retried.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TransportError a network/endpoint failure which persisted after all attempts.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError the command is missing a required parameter (or is malformed). Reported before any network call.
type ValidationError struct {
	Field string
	// Message a human-readable message which can be shown to the user as is.
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// DeliveryPermissionError the chat transport refused to perform a side action, such as deleting a message.
type DeliveryPermissionError struct {
	Action string
	Err    error
}

func (e *DeliveryPermissionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("not permitted to %s", e.Action)
	}
	return fmt.Sprintf("not permitted to %s: %v", e.Action, e.Err)
}

func (e *DeliveryPermissionError) Unwrap() error {
	return e.Err
}

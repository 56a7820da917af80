package jira

import (
	"errors"
	"fmt"
)

var (
	// ErrUpdateFailed is matched by every error returned from PostUpdate and Submit.
	ErrUpdateFailed = errors.New("jira: update failed")

	// ErrInvalidEndpoint is returned by NewAPI for a template without exactly one %s slot.
	ErrInvalidEndpoint = errors.New("jira: invalid endpoint template")
)

// ErrorKind classifies why an update failed.
type ErrorKind int

const (
	KindSerialization ErrorKind = iota + 1
	KindTransport
	KindErrorResponse
	KindEmptyBody
	KindDeserialization
)

func (k ErrorKind) String() string {
	switch k {
	case KindSerialization:
		return "payload_serialization"
	case KindTransport:
		return "transport"
	case KindErrorResponse:
		return "error_response"
	case KindEmptyBody:
		return "empty_body"
	case KindDeserialization:
		return "response_deserialization"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// SubmitError describes a failed update. StatusCode is zero when no response
// was received. The body of an error response is logged, never carried here.
type SubmitError struct {
	Kind       ErrorKind
	SiteURL    string
	StatusCode int
	Message    string
	Err        error
}

func (e *SubmitError) Error() string {
	return e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Is makes every SubmitError match ErrUpdateFailed.
func (e *SubmitError) Is(target error) bool {
	return target == ErrUpdateFailed
}

// IsUpdateFailed reports whether err signals a failed update.
func IsUpdateFailed(err error) bool { return errors.Is(err, ErrUpdateFailed) }

// KindOf returns the classification carried by err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var se *SubmitError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

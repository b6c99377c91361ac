package remote

import (
	"errors"
	"fmt"
)

// Class is the outcome class of one remote call.
type Class string

const (
	ClassOK          Class = "ok"
	ClassTimeout     Class = "timeout"
	ClassRejected    Class = "rejected"
	ClassUnreachable Class = "unreachable"
)

// Sentinels matched by errors.Is against any *Error of the same class.
var (
	ErrTimeout     = errors.New("remote call timed out")
	ErrRejected    = errors.New("remote call rejected")
	ErrUnreachable = errors.New("remote target unreachable")
)

// Error describes a failed call. For ClassRejected, StatusCode, Code and
// Message come from the target's own error response.
type Error struct {
	Class      Class
	Method     string
	Target     string
	StatusCode int
	Code       string
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	switch e.Class {
	case ClassRejected:
		return fmt.Sprintf("%s %s rejected (%d): %s", e.Method, e.Target, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s %s %s: %s", e.Method, e.Target, e.Class, e.Message)
	}
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Class == ClassTimeout
	case ErrRejected:
		return e.Class == ClassRejected
	case ErrUnreachable:
		return e.Class == ClassUnreachable
	}
	return false
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ClassOf returns the outcome class of err, ClassOK for nil.
func ClassOf(err error) Class {
	if err == nil {
		return ClassOK
	}
	var rErr *Error
	if errors.As(err, &rErr) {
		return rErr.Class
	}
	return ClassUnreachable
}

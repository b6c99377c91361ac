// Package apperrors holds the error taxonomy shared by the registries and the
// orchestrator. Callers wrap one of the sentinels with fmt.Errorf("%w: ...")
// and test with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jcmexdev/purchase-sagas/internal/pkg/remote"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrNotRefundable         = errors.New("not refundable")
	ErrUpstreamUnavailable   = errors.New("upstream unavailable")
	ErrReconciliationPending = errors.New("reconciliation pending")
)

// Error codes carried in the "error" field of registry error bodies.
const (
	CodeInvalidAmount  = "invalid_amount"
	CodeInvalidRequest = "invalid_request"
	CodeInvalidStatus  = "invalid_status"
	CodeNotFound       = "not_found"
	CodeDuplicateEmail = "duplicate_email"
	CodeNotRefundable  = "not_refundable"
	CodeInvalidState   = "invalid_transition"
)

// Error pairs a sentinel with the human-readable message that must reach the
// caller unchanged.
type Error struct {
	Kind    error
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an Error of the given kind.
func New(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewCoded builds an Error carrying an explicit wire code.
func NewCoded(kind error, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Message returns the message to show to a caller. For an *Error it is the
// original message, otherwise the error string.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Any reports whether err matches at least one of targets.
func Any(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// FromRemote translates a Remote Call Gateway failure into the taxonomy.
// Errors that did not come from the gateway are returned untouched.
func FromRemote(err error) error {
	if err == nil {
		return nil
	}
	var rErr *remote.Error
	if !errors.As(err, &rErr) {
		return err
	}

	kind := ErrUpstreamUnavailable
	if rErr.Class == remote.ClassRejected {
		switch rErr.StatusCode {
		case http.StatusNotFound:
			kind = ErrNotFound
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			kind = ErrInvalidInput
		case http.StatusConflict:
			kind = ErrConflict
			if rErr.Code == CodeNotRefundable {
				kind = ErrNotRefundable
			}
		}
	}

	return &Error{Kind: kind, Code: rErr.Code, Message: rErr.Message, Cause: err}
}

// HTTPStatus maps an error of the taxonomy to the status code the
// orchestrator answers with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrReconciliationPending):
		return http.StatusAccepted
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrNotRefundable):
		return http.StatusConflict
	case errors.Is(err, remote.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the short machine-readable code for an error of the taxonomy.
func Code(err error) string {
	if errors.Is(err, ErrReconciliationPending) {
		return "reconciliation_pending"
	}
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Code != "" && !errors.Is(err, ErrUpstreamUnavailable) {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrNotRefundable):
		return CodeNotRefundable
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	default:
		return "internal_error"
	}
}

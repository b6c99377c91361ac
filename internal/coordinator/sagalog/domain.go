// Package sagalog records every state transition a purchase saga goes
// through.
//
// The log is an audit trail: it lets an operator see where a saga stopped
// and correlate it with a distributed trace through trace_id. It is never
// read back to resume a saga.
package sagalog

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("saga not found")

// SagaLog is a single transition of a saga execution.
type SagaLog struct {
	// SagaID identifies one purchase attempt.
	SagaID string `json:"saga_id"`

	// State is the state the saga reached, or tried to reach when Error is
	// set.
	State string `json:"state"`

	// Step is the name of the step that produced the transition.
	Step string `json:"step"`

	// Payload is the JSON-serialised purchase request. Only set on the first
	// entry of a saga.
	Payload string `json:"payload,omitempty"`

	// ErrorMessages is a JSON array of failure details.
	ErrorMessages string `json:"error_messages"`

	TraceID string `json:"trace_id,omitempty"`
	SpanID  string `json:"span_id,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Repository persists saga log entries. Entries are appended, never updated.
type Repository interface {
	Save(ctx context.Context, entry *SagaLog) error

	// History returns every entry of a saga in the order it was saved.
	History(ctx context.Context, sagaID string) ([]SagaLog, error)
}

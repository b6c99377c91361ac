package constants

type contextKey string

const (
	HeaderXRequestId = "X-Request-Id"

	ContextKeyRequestID contextKey = "x-request-id"
)

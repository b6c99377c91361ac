package interceptors

import (
	"context"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/purchase-sagas/internal/pkg/interceptors/constants"
)

// WithRequestID stores id in ctx so outgoing remote calls carry it.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, constants.ContextKeyRequestID, id)
}

// RequestID returns the request id attached to ctx, falling back to the one
// generated by chi's RequestID middleware.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok && id != "" {
		return id
	}
	return middleware.GetReqID(ctx)
}

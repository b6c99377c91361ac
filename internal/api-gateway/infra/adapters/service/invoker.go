package service

import (
	"context"
	"strings"
)

// Invoker is the subset of remote.Client the adapters need.
type Invoker interface {
	Invoke(ctx context.Context, method, target string, body, out any) error
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

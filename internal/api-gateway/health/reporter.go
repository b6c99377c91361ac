// Package health aggregates the liveness of the registries behind the
// orchestrator.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusUnknown   = "unknown"

	serviceName = "gateway"
)

// Invoker is the subset of remote.Client the reporter needs.
type Invoker interface {
	Invoke(ctx context.Context, method, target string, body, out any) error
}

// Target is one registry to probe.
type Target struct {
	Name    string
	BaseURL string
}

type Report struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Services map[string]string `json:"services"`
}

type Reporter struct {
	client  Invoker
	targets []Target
}

func NewReporter(client Invoker, targets ...Target) *Reporter {
	return &Reporter{client: client, targets: targets}
}

// Check probes every target concurrently. A probe that fails for any reason
// marks its target unhealthy; the overall status is healthy only when every
// target reports healthy. Each probe is bounded by the invoker's deadline.
func (r *Reporter) Check(ctx context.Context) Report {
	statuses := make([]string, len(r.targets))

	var g errgroup.Group
	for i, t := range r.targets {
		g.Go(func() error {
			statuses[i] = r.probe(ctx, t)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{
		Status:   StatusHealthy,
		Service:  serviceName,
		Services: make(map[string]string, len(r.targets)),
	}
	for i, t := range r.targets {
		report.Services[t.Name] = statuses[i]
		if statuses[i] != StatusHealthy {
			report.Status = StatusDegraded
		}
	}
	return report
}

func (r *Reporter) probe(ctx context.Context, t Target) string {
	var body struct {
		Status string `json:"status"`
	}
	target := strings.TrimRight(t.BaseURL, "/") + "/health"
	if err := r.client.Invoke(ctx, http.MethodGet, target, nil, &body); err != nil {
		slog.WarnContext(ctx, "health probe failed", "service", t.Name, "error", err)
		return StatusUnhealthy
	}
	if body.Status == "" {
		return StatusUnknown
	}
	return body.Status
}

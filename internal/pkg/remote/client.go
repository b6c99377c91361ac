// Package remote is the request/response invoker used to reach the registries.
//
// Every call runs under a bounded deadline and fails with exactly one of three
// classes: timeout, rejected (the target answered with an error status) or
// unreachable (transport failure). The client never retries; retry policy
// belongs to the caller.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/purchase-sagas/internal/pkg/interceptors"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/interceptors/constants"
)

const (
	DefaultTimeout = 5 * time.Second

	maxBodyBytes = 1 << 20
)

// Observer receives one notification per finished call.
type Observer interface {
	ObserveCall(target, method string, class Class, elapsed time.Duration)
}

// Client invokes remote targets over HTTP with JSON payloads.
type Client struct {
	http     *http.Client
	timeout  time.Duration
	logger   *slog.Logger
	observer Observer
}

type Option func(*Client)

// WithTimeout overrides the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the pooled client built by NewClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient returns a Client backed by a pooled transport instrumented with
// OpenTelemetry.
func NewClient(opts ...Option) *Client {
	hc := cleanhttp.DefaultPooledClient()
	hc.Transport = otelhttp.NewTransport(hc.Transport)

	c := &Client{
		http:    hc,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout returns the per-call deadline.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Invoke sends body (JSON-encoded, may be nil) to target and decodes a
// successful response into out (may be nil).
func (c *Client) Invoke(ctx context.Context, method, target string, body, out any) error {
	start := time.Now()
	err := c.invoke(ctx, method, target, body, out)
	elapsed := time.Since(start)

	class := ClassOf(err)
	attrs := []any{
		"method", method,
		"target", target,
		"elapsed_ms", elapsed.Milliseconds(),
		"outcome", string(class),
	}
	if err != nil {
		c.logger.WarnContext(ctx, "remote call failed", append(attrs, "error", err)...)
	} else {
		c.logger.InfoContext(ctx, "remote call", attrs...)
	}
	if c.observer != nil {
		c.observer.ObserveCall(hostOf(target), method, class, elapsed)
	}
	return err
}

func (c *Client) invoke(ctx context.Context, method, target string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: encode request for %s %s: %w", method, target, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("remote: build request %s %s: %w", method, target, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := interceptors.RequestID(ctx); id != "" {
		req.Header.Set(constants.HeaderXRequestId, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(ctx, method, target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return transportError(ctx, method, target, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		code, msg := parseErrorBody(raw, resp.Status)
		return &Error{
			Class:      ClassRejected,
			Method:     method,
			Target:     target,
			StatusCode: resp.StatusCode,
			Code:       code,
			Message:    msg,
		}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return &Error{
			Class:   ClassUnreachable,
			Method:  method,
			Target:  target,
			Message: "malformed response: empty body",
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{
			Class:   ClassUnreachable,
			Method:  method,
			Target:  target,
			Message: "malformed response: " + err.Error(),
			Cause:   err,
		}
	}
	return nil
}

func transportError(ctx context.Context, method, target string, err error) *Error {
	class := ClassUnreachable
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		class = ClassTimeout
	}
	return &Error{
		Class:   class,
		Method:  method,
		Target:  target,
		Message: err.Error(),
		Cause:   err,
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// parseErrorBody extracts the target's own error message. Bodies that are not
// in the expected shape are surfaced raw.
func parseErrorBody(raw []byte, status string) (code, msg string) {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		switch {
		case eb.Message != "":
			return eb.Error, eb.Message
		case eb.Detail != "":
			return eb.Error, eb.Detail
		case eb.Error != "":
			return eb.Error, eb.Error
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return "", text
	}
	return "", status
}

func hostOf(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return target
	}
	return u.Host
}

// Package httpx holds the HTTP plumbing shared by every service: the base
// chi router, JSON responses and the error body format.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/purchase-sagas/internal/pkg/apperrors"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/interceptors"
)

const maxRequestBytes = 1 << 20

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// NewRouter returns a chi router with request ids, access logging and panic
// recovery installed.
func NewRouter(service string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(interceptors.TraceServerMiddleware(service))
	r.Use(middleware.Recoverer)
	return r
}

// Health answers a liveness probe for service.
func Health(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Service: service})
	}
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteErrorCode(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

// WriteError renders err using the shared taxonomy.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	WriteErrorCode(w, status, apperrors.Code(err), apperrors.Message(err))
}

// DecodeJSON reads a JSON request body into v.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewCoded(apperrors.ErrInvalidInput, apperrors.CodeInvalidRequest, "request body is required")
		}
		return apperrors.NewCoded(apperrors.ErrInvalidInput, apperrors.CodeInvalidRequest, "invalid json: %v", err)
	}
	return nil
}

// IDParam parses the named URL parameter as a positive integer id.
func IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewCoded(apperrors.ErrInvalidInput, apperrors.CodeInvalidRequest, "%s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}

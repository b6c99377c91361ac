package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/purchase-sagas/internal/pkg/interceptors/constants"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/money"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/remote"
)

func TestDemo_RunsFullFlow(t *testing.T) {
	var (
		paths      []string
		requestIDs = map[string]bool{}
		purchase   map[string]any
	)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			paths = append(paths, req.Method+" "+req.URL.Path)
			requestIDs[req.Header.Get(constants.HeaderXRequestId)] = true
			w.Header().Set("Content-Type", "application/json")
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status":"healthy","service":"gateway","services":{}}`)
	})
	user := `{"message":"ok","user":{"user_id":1,"name":"Ana","email":"ana@demo.local"}}`
	r.Post("/gateway/register", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, user)
	})
	r.Post("/gateway/login", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, user)
	})
	r.Post("/gateway/purchase", func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewDecoder(req.Body).Decode(&purchase)
		_, _ = io.WriteString(w, `{"saga_id":"s-1","purchase_status":"completed","reconciled":true,
			"order":{"order_id":1000,"status":"completed"},
			"transaction":{"transaction_id":5000,"status":"paid"}}`)
	})
	r.Get("/gateway/user/{id}/orders", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"orders":[],"total_orders":1}`)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	var out bytes.Buffer
	d := &demo{client: remote.NewClient(), base: srv.URL + "/", out: &out}
	err := d.run(context.Background(), demoInput{
		Name:          "Ana",
		Email:         "ana@demo.local",
		Amount:        money.MustParse("150.00"),
		ProductName:   "Widget",
		PaymentMethod: "credit_card",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{
		"GET /health",
		"POST /gateway/register",
		"POST /gateway/login",
		"POST /gateway/purchase",
		"GET /gateway/user/1/orders",
	}, paths)
	assert.Len(t, requestIDs, 5)
	assert.Equal(t, float64(1), purchase["user_id"])
	assert.Equal(t, 150.0, purchase["amount"])
	assert.Contains(t, out.String(), "saga s-1: completed (order 1000 completed, transaction 5000 paid)")
}

func TestDemo_StopsOnFirstFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"upstream_unavailable","message":"identity down"}`)
	}))
	defer srv.Close()

	d := &demo{client: remote.NewClient(), base: srv.URL, out: io.Discard}
	err := d.run(context.Background(), demoInput{Name: "Ana", Amount: money.MustParse("1")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "health")
	assert.Contains(t, err.Error(), "identity down")
}

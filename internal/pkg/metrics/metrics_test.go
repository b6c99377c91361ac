package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jcmexdev/purchase-sagas/internal/pkg/remote"
)

func TestRegistry_CountsCallsAndSagas(t *testing.T) {
	r := NewRegistry()

	r.ObserveCall("localhost:8001", http.MethodGet, remote.ClassOK, 10*time.Millisecond)
	r.ObserveCall("localhost:8001", http.MethodGet, remote.ClassOK, 12*time.Millisecond)
	r.ObserveCall("localhost:8003", http.MethodPost, remote.ClassTimeout, time.Second)
	r.ObserveSaga("completed", 30*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(r.RemoteCalls.WithLabelValues("localhost:8001", "GET", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.RemoteCalls.WithLabelValues("localhost:8003", "POST", "timeout")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.Sagas.WithLabelValues("completed")))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gateway_sagas_total")
}

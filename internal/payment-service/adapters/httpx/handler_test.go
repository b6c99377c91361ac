package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/purchase-sagas/internal/payment-service/app"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/storage"
)

func newServer(t *testing.T, approver app.Approver) http.Handler {
	t.Helper()
	registry, err := app.NewRegistryFromBackend(storage.NewMemoryStore(), approver)
	require.NoError(t, err)
	return NewRouter(NewHandler(registry))
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestHandler_ChargeAndRefund(t *testing.T) {
	srv := newServer(t, app.AlwaysApprove)

	rec := do(srv, http.MethodPost, "/billing/charge", `{"order_id":1000,"amount":150.00,"payment_method":"credit_card"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"transaction_id":5000`)
	assert.Contains(t, rec.Body.String(), `"status":"paid"`)

	rec = do(srv, http.MethodGet, "/billing/transaction/5000", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(srv, http.MethodGet, "/billing/order/1000", "")
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = do(srv, http.MethodPost, "/billing/refund/5000", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"refunded"`)

	rec = do(srv, http.MethodPost, "/billing/refund/5000", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"not_refundable"`)

	rec = do(srv, http.MethodPost, "/billing/refund/9999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(srv, http.MethodGet, "/billing/transactions", "")
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestHandler_DeclinedChargeIsCreated(t *testing.T) {
	rec := do(newServer(t, app.AlwaysDecline), http.MethodPost, "/billing/charge", `{"order_id":1000,"amount":20}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"failed"`)
}

func TestHandler_InvalidAmount(t *testing.T) {
	rec := do(newServer(t, app.AlwaysApprove), http.MethodPost, "/billing/charge", `{"order_id":1000,"amount":-1}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"invalid_amount"`)
}

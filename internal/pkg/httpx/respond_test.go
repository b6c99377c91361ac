package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/purchase-sagas/internal/pkg/apperrors"
)

func TestWriteError_UsesTaxonomy(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/1", nil)

	WriteError(rec, req, apperrors.NewCoded(apperrors.ErrInvalidInput, apperrors.CodeInvalidAmount, "amount must be greater than zero"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid_amount","message":"amount must be greater than zero"}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	require.NoError(t, DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana"}`)), &v))
	assert.Equal(t, "Ana", v.Name)

	err := DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &v)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	err = DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{")), &v)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRouter_HealthAndIDParam(t *testing.T) {
	r := NewRouter("orders")
	r.Get("/health", Health("orders"))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := IDParam(r, "id")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]int64{"id": id})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"orders"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	assert.JSONEq(t, `{"id":42}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/core/domain/entity"
	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/health"
	"github.com/jcmexdev/purchase-sagas/internal/coordinator"
	"github.com/jcmexdev/purchase-sagas/internal/coordinator/sagalog"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/apperrors"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/money"
)

type stubOrchestrator struct {
	outcome *coordinator.Outcome
	err     error
	got     coordinator.PurchaseRequest
}

func (s *stubOrchestrator) Purchase(_ context.Context, req coordinator.PurchaseRequest) (*coordinator.Outcome, error) {
	s.got = req
	return s.outcome, s.err
}

func (s *stubOrchestrator) ListOrdersForIdentity(_ context.Context, userID int64) (*coordinator.IdentityOrders, error) {
	if userID != 1 {
		return nil, apperrors.New(apperrors.ErrNotFound, "user %d not found", userID)
	}
	return &coordinator.IdentityOrders{User: &entity.User{ID: 1, Name: "Ana"}, Orders: []entity.Order{}, TotalOrders: 0}, nil
}

func (s *stubOrchestrator) Register(_ context.Context, name, email string) (*entity.User, error) {
	return &entity.User{ID: 1, Name: name, Email: email}, nil
}

func (s *stubOrchestrator) Login(_ context.Context, email string) (*entity.User, error) {
	return nil, apperrors.New(apperrors.ErrNotFound, "user with email %s not found", email)
}

func (s *stubOrchestrator) Order(_ context.Context, id int64) (*entity.Order, error) {
	return &entity.Order{ID: id, Status: entity.OrderCompleted}, nil
}

func (s *stubOrchestrator) Transaction(_ context.Context, id int64) (*entity.Transaction, error) {
	return nil, apperrors.New(apperrors.ErrUpstreamUnavailable, "billing unreachable")
}

func (s *stubOrchestrator) Refund(_ context.Context, id int64) (*entity.Transaction, error) {
	return nil, apperrors.NewCoded(apperrors.ErrNotRefundable, apperrors.CodeNotRefundable, "only paid transactions can be refunded")
}

func (s *stubOrchestrator) SagaHistory(_ context.Context, sagaID string) ([]sagalog.SagaLog, error) {
	return []sagalog.SagaLog{{SagaID: sagaID, State: "init"}, {SagaID: sagaID, State: "completed"}}, nil
}

type stubHealth struct{}

func (stubHealth) Check(context.Context) health.Report {
	return health.Report{Status: health.StatusDegraded, Service: "gateway", Services: map[string]string{"billing": health.StatusUnhealthy}}
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func paidOutcome() *coordinator.Outcome {
	return &coordinator.Outcome{
		SagaID:         "saga-1",
		Message:        "purchase processed successfully",
		PurchaseStatus: entity.TransactionPaid,
		Reconciled:     true,
		User:           &entity.User{ID: 1},
		Order:          &entity.Order{ID: 1000, Amount: money.MustParse("150"), Status: entity.OrderCompleted},
		Transaction:    &entity.Transaction{ID: 5000, Amount: money.MustParse("150"), Status: entity.TransactionPaid},
	}
}

func TestPurchase_Success(t *testing.T) {
	orch := &stubOrchestrator{outcome: paidOutcome()}
	router := NewRouter(NewHandler(orch, stubHealth{}), nil)

	rec := serve(router, http.MethodPost, "/gateway/purchase", `{"user_id":1,"amount":150.00,"product_name":"Widget","payment_method":"credit_card"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"purchase_status":"paid"`)
	assert.Equal(t, int64(1), orch.got.UserID)
	assert.True(t, orch.got.Amount.Equal(money.MustParse("150")))
	assert.Equal(t, "Widget", orch.got.ProductName)
}

func TestPurchase_PartialSuccessAnswers202WithOutcome(t *testing.T) {
	out := paidOutcome()
	out.Reconciled = false
	orch := &stubOrchestrator{outcome: out, err: apperrors.New(apperrors.ErrReconciliationPending, "order 1000 could not be set")}
	router := NewRouter(NewHandler(orch, stubHealth{}), nil)

	rec := serve(router, http.MethodPost, "/gateway/purchase", `{"user_id":1,"amount":150}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reconciled":false`)
}

func TestPurchase_ErrorsUseTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "not found", err: apperrors.New(apperrors.ErrNotFound, "user 99999 not found"), status: http.StatusNotFound, code: "not_found"},
		{name: "invalid", err: apperrors.NewCoded(apperrors.ErrInvalidInput, apperrors.CodeInvalidAmount, "amount must be greater than zero"), status: http.StatusBadRequest, code: "invalid_amount"},
		{name: "unavailable", err: apperrors.New(apperrors.ErrUpstreamUnavailable, "connection refused"), status: http.StatusServiceUnavailable, code: "upstream_unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(NewHandler(&stubOrchestrator{err: tt.err}, stubHealth{}), nil)

			rec := serve(router, http.MethodPost, "/gateway/purchase", `{"user_id":1,"amount":1}`)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error":"`+tt.code+`"`)
			assert.Contains(t, rec.Body.String(), apperrors.Message(tt.err))
		})
	}
}

func TestPurchase_MalformedBody(t *testing.T) {
	router := NewRouter(NewHandler(&stubOrchestrator{}, stubHealth{}), nil)

	rec := serve(router, http.MethodPost, "/gateway/purchase", `{"amount":"abc"`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadAndPassThroughRoutes(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("# metrics")) })
	router := NewRouter(NewHandler(&stubOrchestrator{}, stubHealth{}), metrics)

	tests := []struct {
		method, path, body string
		status             int
		contains           string
	}{
		{http.MethodGet, "/health", "", http.StatusOK, `"status":"degraded"`},
		{http.MethodGet, "/metrics", "", http.StatusOK, "# metrics"},
		{http.MethodPost, "/gateway/register", `{"name":"Ana","email":"ana@example.com"}`, http.StatusCreated, `"message":"user created successfully"`},
		{http.MethodPost, "/gateway/login", `{"email":"ghost@example.com"}`, http.StatusNotFound, `"error":"not_found"`},
		{http.MethodGet, "/gateway/user/1/orders", "", http.StatusOK, `"total_orders":0`},
		{http.MethodGet, "/gateway/user/7/orders", "", http.StatusNotFound, "user 7 not found"},
		{http.MethodGet, "/gateway/orders/1000", "", http.StatusOK, `"status":"completed"`},
		{http.MethodGet, "/gateway/transactions/5000", "", http.StatusServiceUnavailable, "billing unreachable"},
		{http.MethodPost, "/gateway/refund/5000", "", http.StatusConflict, `"error":"not_refundable"`},
		{http.MethodGet, "/gateway/sagas/abc", "", http.StatusOK, `"state":"completed"`},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := serve(router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

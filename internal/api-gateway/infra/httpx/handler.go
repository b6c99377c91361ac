package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/core/domain/entity"
	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/health"
	"github.com/jcmexdev/purchase-sagas/internal/coordinator"
	"github.com/jcmexdev/purchase-sagas/internal/coordinator/sagalog"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/apperrors"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/httpx"
)

// Orchestrator is the purchase surface the handler exposes.
type Orchestrator interface {
	Purchase(ctx context.Context, req coordinator.PurchaseRequest) (*coordinator.Outcome, error)
	ListOrdersForIdentity(ctx context.Context, userID int64) (*coordinator.IdentityOrders, error)
	Register(ctx context.Context, name, email string) (*entity.User, error)
	Login(ctx context.Context, email string) (*entity.User, error)
	Order(ctx context.Context, id int64) (*entity.Order, error)
	Transaction(ctx context.Context, id int64) (*entity.Transaction, error)
	Refund(ctx context.Context, id int64) (*entity.Transaction, error)
	SagaHistory(ctx context.Context, sagaID string) ([]sagalog.SagaLog, error)
}

type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

// Handler serves the orchestrator's HTTP API.
type Handler struct {
	orchestrator Orchestrator
	health       HealthChecker
}

func NewHandler(o Orchestrator, h HealthChecker) *Handler {
	return &Handler{orchestrator: o, health: h}
}

// Health reports the aggregate status. It always answers 200; degradation is
// carried in the body.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.health.Check(r.Context()))
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	user, err := h.orchestrator.Register(r.Context(), req.Name, req.Email)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, UserResponse{Message: "user created successfully", User: user})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	user, err := h.orchestrator.Login(r.Context(), req.Email)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, UserResponse{Message: "login successful", User: user})
}

// Purchase runs the saga synchronously. A reconciliation failure still
// returns the outcome, with 202 and reconciled=false.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	outcome, err := h.orchestrator.Purchase(r.Context(), req.toCommand())
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, outcome)
	case outcome != nil:
		httpx.WriteJSON(w, apperrors.HTTPStatus(err), outcome)
	default:
		httpx.WriteError(w, r, err)
	}
}

func (h *Handler) UserOrders(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	view, err := h.orchestrator.ListOrdersForIdentity(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	order, err := h.orchestrator.Order(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	tx, err := h.orchestrator.Transaction(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tx)
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	tx, err := h.orchestrator.Refund(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, RefundResponse{Message: "refund processed successfully", Transaction: tx})
}

func (h *Handler) GetSaga(w http.ResponseWriter, r *http.Request) {
	sagaID := chi.URLParam(r, "id")

	history, err := h.orchestrator.SagaHistory(r.Context(), sagaID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, SagaResponse{
		SagaID:      sagaID,
		State:       history[len(history)-1].State,
		Transitions: history,
	})
}

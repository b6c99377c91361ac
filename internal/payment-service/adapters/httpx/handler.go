package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/purchase-sagas/internal/payment-service/domain"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/httpx"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/money"
)

const ServiceName = "billing"

type Registry interface {
	Charge(ctx context.Context, charge domain.Charge) (*domain.Transaction, error)
	Fetch(ctx context.Context, id int64) (*domain.Transaction, error)
	Refund(ctx context.Context, id int64) (*domain.Transaction, error)
	ListByOrder(ctx context.Context, orderID int64) ([]domain.Transaction, error)
	List(ctx context.Context) ([]domain.Transaction, error)
}

type ChargeRequest struct {
	OrderID       int64        `json:"order_id"`
	Amount        money.Amount `json:"amount"`
	PaymentMethod string       `json:"payment_method"`
}

type ListTransactionsResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
	Total        int                  `json:"total"`
}

type Handler struct {
	registry Registry
}

func NewHandler(registry Registry) *Handler {
	return &Handler{registry: registry}
}

func NewRouter(h *Handler) http.Handler {
	r := httpx.NewRouter(ServiceName)
	r.Get("/health", httpx.Health(ServiceName))
	r.Route("/billing", func(r chi.Router) {
		r.Post("/charge", h.Charge)
		r.Get("/transaction/{id}", h.GetTransaction)
		r.Get("/order/{order_id}", h.ListOrderTransactions)
		r.Get("/transactions", h.ListTransactions)
		r.Post("/refund/{id}", h.Refund)
	})
	return r
}

// Charge answers 201 for both paid and failed transactions; a declined
// payment is a business outcome, not a request error.
func (h *Handler) Charge(w http.ResponseWriter, r *http.Request) {
	var req ChargeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	tx, err := h.registry.Charge(r.Context(), domain.Charge{
		OrderID:       req.OrderID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, tx)
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	tx, err := h.registry.Fetch(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tx)
}

func (h *Handler) ListOrderTransactions(w http.ResponseWriter, r *http.Request) {
	orderID, err := httpx.IDParam(r, "order_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	txs, err := h.registry.ListByOrder(r.Context(), orderID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ListTransactionsResponse{Transactions: txs, Total: len(txs)})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.registry.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ListTransactionsResponse{Transactions: txs, Total: len(txs)})
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	tx, err := h.registry.Refund(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tx)
}

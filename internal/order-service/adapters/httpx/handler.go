package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/purchase-sagas/internal/order-service/domain"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/apperrors"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/httpx"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/money"
)

const ServiceName = "orders"

type Registry interface {
	Create(ctx context.Context, userID int64, amount money.Amount, productName string) (*domain.Order, error)
	Fetch(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}

type CreateOrderRequest struct {
	UserID      int64        `json:"user_id"`
	Amount      money.Amount `json:"amount"`
	ProductName string       `json:"product_name"`
}

type ListOrdersResponse struct {
	Orders []domain.Order `json:"orders"`
	Total  int            `json:"total"`
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
	r.Route("/orders", func(r chi.Router) {
		r.Post("/create", h.CreateOrder)
		r.Get("/user/{user_id}", h.ListUserOrders)
		r.Get("/{id}", h.GetOrder)
		r.Put("/{id}/status", h.UpdateStatus)
		r.Get("/", h.ListOrders)
	})
	return r
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	order, err := h.registry.Create(r.Context(), req.UserID, req.Amount, req.ProductName)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, order)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	order, err := h.registry.Fetch(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

// UpdateStatus takes the new status from the "status" query parameter.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	status, err := domain.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		httpx.WriteError(w, r, apperrors.NewCoded(apperrors.ErrInvalidInput, apperrors.CodeInvalidStatus,
			"status must be one of pending, completed, payment_failed"))
		return
	}

	order, err := h.registry.UpdateStatus(r.Context(), id, status)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.IDParam(r, "user_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	orders, err := h.registry.ListByUser(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ListOrdersResponse{Orders: orders, Total: len(orders)})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.registry.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ListOrdersResponse{Orders: orders, Total: len(orders)})
}

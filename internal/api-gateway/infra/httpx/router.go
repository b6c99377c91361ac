package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/purchase-sagas/internal/pkg/httpx"
)

const ServiceName = "gateway"

// NewRouter mounts the gateway API. metrics may be nil.
func NewRouter(handler *Handler, metrics http.Handler) http.Handler {
	r := httpx.NewRouter(ServiceName)

	r.Get("/health", handler.Health)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/gateway", func(r chi.Router) {
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)
		r.Post("/purchase", handler.Purchase)
		r.Get("/user/{id}/orders", handler.UserOrders)
		r.Get("/orders/{id}", handler.GetOrder)
		r.Get("/transactions/{id}", handler.GetTransaction)
		r.Post("/refund/{id}", handler.Refund)
		r.Get("/sagas/{id}", handler.GetSaga)
	})
	return r
}

package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/purchase-sagas/internal/identity-service/domain"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/httpx"
)

const ServiceName = "identity"

// Registry is the application surface the handler serves.
type Registry interface {
	Create(ctx context.Context, name, email string) (*domain.Identity, error)
	Fetch(ctx context.Context, id int64) (*domain.Identity, error)
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	List(ctx context.Context) ([]domain.Identity, error)
}

type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LoginRequest struct {
	Email string `json:"email"`
}

type ListUsersResponse struct {
	Users []domain.Identity `json:"users"`
	Total int               `json:"total"`
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
	r.Route("/users", func(r chi.Router) {
		r.Post("/create", h.CreateUser)
		r.Post("/login", h.Login)
		r.Get("/{id}", h.GetUser)
		r.Get("/", h.ListUsers)
	})
	return r
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	identity, err := h.registry.Create(r.Context(), req.Name, req.Email)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, identity)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	identity, err := h.registry.FindByEmail(r.Context(), req.Email)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, identity)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	identity, err := h.registry.Fetch(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, identity)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.registry.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ListUsersResponse{Users: users, Total: len(users)})
}

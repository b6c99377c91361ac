package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/core/domain/entity"
	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/core/ports"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/apperrors"
)

var _ ports.OrderService = (*HTTPOrderService)(nil)

// HTTPOrderService talks to the order registry.
type HTTPOrderService struct {
	client  Invoker
	baseURL string
}

func NewHTTPOrderService(client Invoker, baseURL string) *HTTPOrderService {
	return &HTTPOrderService{client: client, baseURL: baseURL}
}

func (s *HTTPOrderService) CreateOrder(ctx context.Context, req entity.CreateOrder) (*entity.Order, error) {
	var order entity.Order
	if err := s.client.Invoke(ctx, http.MethodPost, joinURL(s.baseURL, "/orders/create"), req, &order); err != nil {
		return nil, apperrors.FromRemote(err)
	}
	return &order, nil
}

func (s *HTTPOrderService) GetOrder(ctx context.Context, id int64) (*entity.Order, error) {
	var order entity.Order
	if err := s.client.Invoke(ctx, http.MethodGet, joinURL(s.baseURL, fmt.Sprintf("/orders/%d", id)), nil, &order); err != nil {
		return nil, apperrors.FromRemote(err)
	}
	return &order, nil
}

func (s *HTTPOrderService) UpdateOrderStatus(ctx context.Context, id int64, status string) (*entity.Order, error) {
	var order entity.Order
	target := joinURL(s.baseURL, fmt.Sprintf("/orders/%d/status?status=%s", id, url.QueryEscape(status)))
	if err := s.client.Invoke(ctx, http.MethodPut, target, nil, &order); err != nil {
		return nil, apperrors.FromRemote(err)
	}
	return &order, nil
}

func (s *HTTPOrderService) ListUserOrders(ctx context.Context, userID int64) ([]entity.Order, error) {
	var res struct {
		Orders []entity.Order `json:"orders"`
		Total  int            `json:"total"`
	}
	if err := s.client.Invoke(ctx, http.MethodGet, joinURL(s.baseURL, fmt.Sprintf("/orders/user/%d", userID)), nil, &res); err != nil {
		return nil, apperrors.FromRemote(err)
	}
	if res.Orders == nil {
		res.Orders = []entity.Order{}
	}
	return res.Orders, nil
}

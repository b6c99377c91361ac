package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/core/domain/entity"
	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/core/ports"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/apperrors"
)

var _ ports.PaymentService = (*HTTPPaymentService)(nil)

// HTTPPaymentService talks to the payment registry.
type HTTPPaymentService struct {
	client  Invoker
	baseURL string
}

func NewHTTPPaymentService(client Invoker, baseURL string) *HTTPPaymentService {
	return &HTTPPaymentService{client: client, baseURL: baseURL}
}

func (s *HTTPPaymentService) Charge(ctx context.Context, req entity.Charge) (*entity.Transaction, error) {
	var tx entity.Transaction
	if err := s.client.Invoke(ctx, http.MethodPost, joinURL(s.baseURL, "/billing/charge"), req, &tx); err != nil {
		return nil, apperrors.FromRemote(err)
	}
	return &tx, nil
}

func (s *HTTPPaymentService) GetTransaction(ctx context.Context, id int64) (*entity.Transaction, error) {
	var tx entity.Transaction
	if err := s.client.Invoke(ctx, http.MethodGet, joinURL(s.baseURL, fmt.Sprintf("/billing/transaction/%d", id)), nil, &tx); err != nil {
		return nil, apperrors.FromRemote(err)
	}
	return &tx, nil
}

func (s *HTTPPaymentService) Refund(ctx context.Context, id int64) (*entity.Transaction, error) {
	var tx entity.Transaction
	if err := s.client.Invoke(ctx, http.MethodPost, joinURL(s.baseURL, fmt.Sprintf("/billing/refund/%d", id)), nil, &tx); err != nil {
		return nil, apperrors.FromRemote(err)
	}
	return &tx, nil
}

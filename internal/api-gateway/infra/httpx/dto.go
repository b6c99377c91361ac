package httpx

import (
	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/core/domain/entity"
	"github.com/jcmexdev/purchase-sagas/internal/coordinator"
	"github.com/jcmexdev/purchase-sagas/internal/coordinator/sagalog"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/money"
)

type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LoginRequest struct {
	Email string `json:"email"`
}

type UserResponse struct {
	Message string       `json:"message"`
	User    *entity.User `json:"user"`
}

type PurchaseRequest struct {
	UserID        int64        `json:"user_id"`
	Amount        money.Amount `json:"amount"`
	ProductName   string       `json:"product_name"`
	PaymentMethod string       `json:"payment_method"`
}

func (r PurchaseRequest) toCommand() coordinator.PurchaseRequest {
	return coordinator.PurchaseRequest{
		UserID:        r.UserID,
		Amount:        r.Amount,
		ProductName:   r.ProductName,
		PaymentMethod: r.PaymentMethod,
	}
}

type RefundResponse struct {
	Message     string              `json:"message"`
	Transaction *entity.Transaction `json:"transaction"`
}

type SagaResponse struct {
	SagaID      string            `json:"saga_id"`
	State       string            `json:"state"`
	Transitions []sagalog.SagaLog `json:"transitions"`
}

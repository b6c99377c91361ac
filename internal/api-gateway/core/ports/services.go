package ports

import (
	"context"

	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/core/domain/entity"
)

// Every method returns errors already translated to the apperrors taxonomy.

type IdentityService interface {
	Register(ctx context.Context, name, email string) (*entity.User, error)
	Login(ctx context.Context, email string) (*entity.User, error)
	GetUser(ctx context.Context, id int64) (*entity.User, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, req entity.CreateOrder) (*entity.Order, error)
	GetOrder(ctx context.Context, id int64) (*entity.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) (*entity.Order, error)
	ListUserOrders(ctx context.Context, userID int64) ([]entity.Order, error)
}

type PaymentService interface {
	Charge(ctx context.Context, req entity.Charge) (*entity.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (*entity.Transaction, error)
	Refund(ctx context.Context, id int64) (*entity.Transaction, error)
}

package domain

import (
	"fmt"
	"time"

	"github.com/jcmexdev/purchase-sagas/internal/pkg/money"
)

// FirstOrderID is the first identifier handed out by the registry.
const FirstOrderID int64 = 1000

const DefaultProductName = "Generic product"

type Order struct {
	ID          int64        `json:"order_id"`
	UserID      int64        `json:"user_id"`
	Amount      money.Amount `json:"amount"`
	ProductName string       `json:"product_name"`
	Status      OrderStatus  `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
}

type OrderStatus string

const (
	StatusPending       OrderStatus = "pending"
	StatusCompleted     OrderStatus = "completed"
	StatusPaymentFailed OrderStatus = "payment_failed"
)

func ParseStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case StatusPending, StatusCompleted, StatusPaymentFailed:
		return st, nil
	default:
		return "", fmt.Errorf("unknown order status %q", s)
	}
}

// CanTransition reports whether an order in status from may be moved to to.
// Re-applying the current status is allowed so reconciliation can be retried.
func (from OrderStatus) CanTransition(to OrderStatus) bool {
	return from == to || from == StatusPending
}

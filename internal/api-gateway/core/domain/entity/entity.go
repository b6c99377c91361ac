// Package entity holds the orchestrator's view of registry records. The
// shapes mirror the registries' JSON bodies; the orchestrator never owns them.
package entity

import (
	"time"

	"github.com/jcmexdev/purchase-sagas/internal/pkg/money"
)

type User struct {
	ID    int64  `json:"user_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Order struct {
	ID          int64        `json:"order_id"`
	UserID      int64        `json:"user_id"`
	Amount      money.Amount `json:"amount"`
	ProductName string       `json:"product_name"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
}

type Transaction struct {
	ID            int64        `json:"transaction_id"`
	OrderID       int64        `json:"order_id"`
	Amount        money.Amount `json:"amount"`
	Status        string       `json:"status"`
	PaymentMethod string       `json:"payment_method"`
	ProcessedAt   time.Time    `json:"processed_at"`
	Message       string       `json:"message"`
}

// Order statuses written by the orchestrator during reconciliation.
const (
	OrderPending       = "pending"
	OrderCompleted     = "completed"
	OrderPaymentFailed = "payment_failed"
)

// Transaction statuses reported by the payment registry.
const (
	TransactionPaid     = "paid"
	TransactionFailed   = "failed"
	TransactionRefunded = "refunded"
)

type CreateOrder struct {
	UserID      int64        `json:"user_id"`
	Amount      money.Amount `json:"amount"`
	ProductName string       `json:"product_name"`
}

type Charge struct {
	OrderID       int64        `json:"order_id"`
	Amount        money.Amount `json:"amount"`
	PaymentMethod string       `json:"payment_method"`
}

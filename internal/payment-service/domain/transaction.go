package domain

import (
	"time"

	"github.com/jcmexdev/purchase-sagas/internal/pkg/money"
)

// FirstTransactionID is the first identifier handed out by the registry.
const FirstTransactionID int64 = 5000

const DefaultPaymentMethod = "credit_card"

type Transaction struct {
	ID            int64             `json:"transaction_id"`
	OrderID       int64             `json:"order_id"`
	Amount        money.Amount      `json:"amount"`
	Status        TransactionStatus `json:"status"`
	PaymentMethod string            `json:"payment_method"`
	ProcessedAt   time.Time         `json:"processed_at"`
	Message       string            `json:"message"`
}

type TransactionStatus string

// A charge is synchronous and terminal: it yields paid or failed, never a
// pending state. Only paid may later become refunded.
const (
	StatusPaid     TransactionStatus = "paid"
	StatusFailed   TransactionStatus = "failed"
	StatusRefunded TransactionStatus = "refunded"
)

func (s TransactionStatus) Refundable() bool {
	return s == StatusPaid
}

type Charge struct {
	OrderID       int64
	Amount        money.Amount
	PaymentMethod string
}

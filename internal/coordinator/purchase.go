package coordinator

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/core/domain/entity"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/apperrors"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/money"
)

const (
	DefaultProductName   = "Generic product"
	DefaultPaymentMethod = "credit_card"
)

type PurchaseRequest struct {
	UserID        int64        `json:"user_id"`
	Amount        money.Amount `json:"amount"`
	ProductName   string       `json:"product_name"`
	PaymentMethod string       `json:"payment_method"`
}

// Normalize fills defaults and validates r. It fails with ErrInvalidInput
// before any registry is contacted.
func (r *PurchaseRequest) Normalize() error {
	r.ProductName = strings.TrimSpace(r.ProductName)
	if r.ProductName == "" {
		r.ProductName = DefaultProductName
	}
	r.PaymentMethod = strings.TrimSpace(r.PaymentMethod)
	if r.PaymentMethod == "" {
		r.PaymentMethod = DefaultPaymentMethod
	}

	if !money.Positive(r.Amount) {
		return apperrors.NewCoded(apperrors.ErrInvalidInput, apperrors.CodeInvalidAmount, "amount must be greater than zero")
	}
	if err := validation.Validate(r.UserID, validation.Required, validation.Min(int64(1))); err != nil {
		return apperrors.NewCoded(apperrors.ErrInvalidInput, apperrors.CodeInvalidRequest, "user_id: %v", err)
	}
	return nil
}

// Purchase is the context one saga threads through its steps. Each step
// fills the record it obtained.
type Purchase struct {
	SagaID      string
	Request     PurchaseRequest
	State       State
	User        *entity.User
	Order       *entity.Order
	Transaction *entity.Transaction
	Reconciled  bool
}

func NewPurchase(sagaID string, req PurchaseRequest) *Purchase {
	return &Purchase{SagaID: sagaID, Request: req, State: StateInit}
}

// Paid reports whether the charge resolved as paid.
func (p *Purchase) Paid() bool {
	return p.Transaction != nil && p.Transaction.Status == entity.TransactionPaid
}

// Outcome is the result returned to the caller of a purchase.
type Outcome struct {
	SagaID         string              `json:"saga_id"`
	Message        string              `json:"message"`
	PurchaseStatus string              `json:"purchase_status"`
	Reconciled     bool                `json:"reconciled"`
	User           *entity.User        `json:"user"`
	Order          *entity.Order       `json:"order"`
	Transaction    *entity.Transaction `json:"transaction"`
}

const (
	msgPurchaseSucceeded = "purchase processed successfully"
	msgPaymentFailed     = "payment failed"
)

// Outcome assembles the caller-facing result. purchase_status mirrors the
// transaction status.
func (p *Purchase) Outcome() *Outcome {
	out := &Outcome{
		SagaID:      p.SagaID,
		Message:     msgPaymentFailed,
		Reconciled:  p.Reconciled,
		User:        p.User,
		Order:       p.Order,
		Transaction: p.Transaction,
	}
	if p.Transaction != nil {
		out.PurchaseStatus = p.Transaction.Status
	}
	if p.Paid() {
		out.Message = msgPurchaseSucceeded
	}
	return out
}

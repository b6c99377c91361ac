package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jcmexdev/purchase-sagas/internal/payment-service/domain"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/apperrors"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/money"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/storage"
)

const (
	transactionPrefix = "transaction"

	msgPaid     = "payment processed successfully"
	msgFailed   = "payment was declined"
	msgRefunded = "refund processed successfully"
)

// Registry owns transaction records.
type Registry struct {
	mu       sync.Mutex
	store    storage.Store
	seq      storage.Sequence
	approver Approver
	now      func() time.Time
}

func NewRegistry(store storage.Store, seq storage.Sequence, approver Approver) *Registry {
	if approver == nil {
		approver = AlwaysApprove
	}
	return &Registry{store: store, seq: seq, approver: approver, now: time.Now}
}

func NewRegistryFromBackend(backend storage.Backend, approver Approver) (*Registry, error) {
	seq, err := backend.Sequence(transactionPrefix, domain.FirstTransactionID)
	if err != nil {
		return nil, fmt.Errorf("transaction sequence: %w", err)
	}
	return NewRegistry(backend, seq, approver), nil
}

// Charge resolves a payment synchronously; the resulting transaction is
// either paid or failed.
func (r *Registry) Charge(ctx context.Context, charge domain.Charge) (*domain.Transaction, error) {
	if !money.Positive(charge.Amount) {
		slog.WarnContext(ctx, "invalid charge amount", "order_id", charge.OrderID, "amount", charge.Amount.String())
		return nil, apperrors.NewCoded(apperrors.ErrInvalidInput, apperrors.CodeInvalidAmount, "amount must be greater than zero")
	}
	charge.PaymentMethod = strings.TrimSpace(charge.PaymentMethod)
	if charge.PaymentMethod == "" {
		charge.PaymentMethod = domain.DefaultPaymentMethod
	}

	status, message := domain.StatusFailed, msgFailed
	if r.approver.Approve(ctx, charge) {
		status, message = domain.StatusPaid, msgPaid
	}

	id, err := r.seq.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate transaction id: %w", err)
	}

	tx := &domain.Transaction{
		ID:            id,
		OrderID:       charge.OrderID,
		Amount:        charge.Amount,
		Status:        status,
		PaymentMethod: charge.PaymentMethod,
		ProcessedAt:   r.now().UTC(),
		Message:       message,
	}
	if err := storage.PutJSON(ctx, r.store, storage.Key(transactionPrefix, id), tx); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "charge resolved", "transaction_id", id, "order_id", charge.OrderID, "status", status)
	return tx, nil
}

func (r *Registry) Fetch(ctx context.Context, id int64) (*domain.Transaction, error) {
	tx, err := storage.GetJSON[domain.Transaction](ctx, r.store, storage.Key(transactionPrefix, id))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NewCoded(apperrors.ErrNotFound, apperrors.CodeNotFound, "transaction %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// Refund moves a paid transaction to refunded. Any other status is rejected,
// which also makes a second refund fail.
func (r *Registry) Refund(ctx context.Context, id int64) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tx.Status.Refundable() {
		slog.WarnContext(ctx, "transaction not refundable", "transaction_id", id, "status", tx.Status)
		return nil, apperrors.NewCoded(apperrors.ErrNotRefundable, apperrors.CodeNotRefundable,
			"only paid transactions can be refunded, transaction %d is %s", id, tx.Status)
	}

	tx.Status = domain.StatusRefunded
	tx.Message = msgRefunded
	if err := storage.PutJSON(ctx, r.store, storage.Key(transactionPrefix, id), tx); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "transaction refunded", "transaction_id", id)
	return tx, nil
}

func (r *Registry) ListByOrder(ctx context.Context, orderID int64) ([]domain.Transaction, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Transaction, 0, len(all))
	for _, tx := range all {
		if tx.OrderID == orderID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *Registry) List(ctx context.Context) ([]domain.Transaction, error) {
	return storage.ScanJSON[domain.Transaction](ctx, r.store, transactionPrefix+"/")
}

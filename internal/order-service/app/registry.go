package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jcmexdev/purchase-sagas/internal/order-service/domain"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/apperrors"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/money"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/storage"
)

const orderPrefix = "order"

// Registry owns order records. The identity foreign key is not enforced.
type Registry struct {
	mu    sync.Mutex
	store storage.Store
	seq   storage.Sequence
	now   func() time.Time
}

func NewRegistry(store storage.Store, seq storage.Sequence) *Registry {
	return &Registry{store: store, seq: seq, now: time.Now}
}

func NewRegistryFromBackend(backend storage.Backend) (*Registry, error) {
	seq, err := backend.Sequence(orderPrefix, domain.FirstOrderID)
	if err != nil {
		return nil, fmt.Errorf("order sequence: %w", err)
	}
	return NewRegistry(backend, seq), nil
}

func (r *Registry) Create(ctx context.Context, userID int64, amount money.Amount, productName string) (*domain.Order, error) {
	if !money.Positive(amount) {
		slog.WarnContext(ctx, "invalid order amount", "amount", amount.String())
		return nil, apperrors.NewCoded(apperrors.ErrInvalidInput, apperrors.CodeInvalidAmount, "amount must be greater than zero")
	}
	productName = strings.TrimSpace(productName)
	if productName == "" {
		productName = domain.DefaultProductName
	}

	id, err := r.seq.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate order id: %w", err)
	}

	order := &domain.Order{
		ID:          id,
		UserID:      userID,
		Amount:      amount,
		ProductName: productName,
		Status:      domain.StatusPending,
		CreatedAt:   r.now().UTC(),
	}
	if err := storage.PutJSON(ctx, r.store, storage.Key(orderPrefix, id), order); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order created", "order_id", id, "user_id", userID)
	return order, nil
}

func (r *Registry) Fetch(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := storage.GetJSON[domain.Order](ctx, r.store, storage.Key(orderPrefix, id))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NewCoded(apperrors.ErrNotFound, apperrors.CodeNotFound, "order %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus moves a pending order to its reconciled status. Setting the
// status an order already has is a no-op.
func (r *Registry) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, err := r.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransition(status) {
		return nil, apperrors.NewCoded(apperrors.ErrConflict, apperrors.CodeInvalidState,
			"order %d is already %s", id, order.Status)
	}
	if order.Status == status {
		return order, nil
	}

	order.Status = status
	if err := storage.PutJSON(ctx, r.store, storage.Key(orderPrefix, id), order); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order status updated", "order_id", id, "status", status)
	return order, nil
}

func (r *Registry) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(all))
	for _, o := range all {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *Registry) List(ctx context.Context) ([]domain.Order, error) {
	return storage.ScanJSON[domain.Order](ctx, r.store, orderPrefix+"/")
}

package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/core/domain/entity"
	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/core/ports"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/apperrors"
)

// --- ValidateIdentityStep ---

type ValidateIdentityStep struct {
	identity ports.IdentityService
}

func NewValidateIdentityStep(identity ports.IdentityService) *ValidateIdentityStep {
	return &ValidateIdentityStep{identity: identity}
}

func (s *ValidateIdentityStep) Name() string  { return "validate_identity" }
func (s *ValidateIdentityStep) Target() State { return StateUserValidated }

func (s *ValidateIdentityStep) Execute(ctx context.Context, p *Purchase) error {
	user, err := s.identity.GetUser(ctx, p.Request.UserID)
	if err != nil {
		return err
	}
	p.User = user
	return nil
}

// --- CreateOrderStep ---

type CreateOrderStep struct {
	orders ports.OrderService
}

func NewCreateOrderStep(orders ports.OrderService) *CreateOrderStep {
	return &CreateOrderStep{orders: orders}
}

func (s *CreateOrderStep) Name() string  { return "create_order" }
func (s *CreateOrderStep) Target() State { return StateOrderCreated }

func (s *CreateOrderStep) Execute(ctx context.Context, p *Purchase) error {
	order, err := s.orders.CreateOrder(ctx, entity.CreateOrder{
		UserID:      p.User.ID,
		Amount:      p.Request.Amount,
		ProductName: p.Request.ProductName,
	})
	if err != nil {
		return err
	}
	p.Order = order
	return nil
}

// --- ChargePaymentStep ---

// ChargePaymentStep charges the amount recorded on the order so both
// registries hold the same value. A declined charge is a resolved payment,
// not a step failure.
type ChargePaymentStep struct {
	payments ports.PaymentService
}

func NewChargePaymentStep(payments ports.PaymentService) *ChargePaymentStep {
	return &ChargePaymentStep{payments: payments}
}

func (s *ChargePaymentStep) Name() string  { return "charge_payment" }
func (s *ChargePaymentStep) Target() State { return StatePaymentResolved }

func (s *ChargePaymentStep) Execute(ctx context.Context, p *Purchase) error {
	tx, err := s.payments.Charge(ctx, entity.Charge{
		OrderID:       p.Order.ID,
		Amount:        p.Order.Amount,
		PaymentMethod: p.Request.PaymentMethod,
	})
	if err != nil {
		return err
	}
	p.Transaction = tx
	return nil
}

// --- ReconcileStep ---

// ReconcileStep writes the order's final status from the charge result.
// Setting the same status twice is harmless, so the call may be retried.
type ReconcileStep struct {
	orders   ports.OrderService
	attempts uint
	delay    time.Duration
}

func NewReconcileStep(orders ports.OrderService, attempts uint, delay time.Duration) *ReconcileStep {
	if attempts == 0 {
		attempts = 1
	}
	return &ReconcileStep{orders: orders, attempts: attempts, delay: delay}
}

func (s *ReconcileStep) Name() string  { return "reconcile_order" }
func (s *ReconcileStep) Target() State { return StateReconciled }

func (s *ReconcileStep) Execute(ctx context.Context, p *Purchase) error {
	status := entity.OrderPaymentFailed
	if p.Paid() {
		status = entity.OrderCompleted
	}

	var updated *entity.Order
	err := retry.Do(
		func() error {
			order, err := s.orders.UpdateOrderStatus(ctx, p.Order.ID, status)
			if err != nil {
				return err
			}
			updated = order
			return nil
		},
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, apperrors.ErrUpstreamUnavailable)
		}),
		retry.OnRetry(func(n uint, err error) {
			slog.WarnContext(ctx, "retrying order reconciliation",
				"saga_id", p.SagaID, "order_id", p.Order.ID, "attempt", n+1, "error", err)
		}),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return &ReconciliationError{OrderID: p.Order.ID, Status: status, Cause: err}
	}

	p.Order = updated
	p.Reconciled = true
	return nil
}

// ReconciliationError reports that payment resolved but the order status
// could not be written. The order stays pending.
type ReconciliationError struct {
	OrderID int64
	Status  string
	Cause   error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("order %d could not be set to %s: %v", e.OrderID, e.Status, e.Cause)
}

func (e *ReconciliationError) Is(target error) bool {
	return target == apperrors.ErrReconciliationPending
}

func (e *ReconciliationError) Unwrap() error {
	return e.Cause
}

package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/core/domain/entity"
	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/core/ports"
	"github.com/jcmexdev/purchase-sagas/internal/coordinator/sagalog"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/apperrors"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/events"
)

// Saga outcome labels reported to the Recorder.
const (
	OutcomeCompleted             = "completed"
	OutcomePaymentFailed         = "payment_failed"
	OutcomeReconciliationPending = "reconciliation_pending"
	OutcomeAborted               = "aborted"
	OutcomeRejected              = "rejected"
)

// Recorder receives one observation per finished saga.
type Recorder interface {
	ObserveSaga(outcome string, elapsed time.Duration)
}

// Service is the purchase orchestrator. It holds no per-saga state, so
// concurrent purchases never interfere with each other.
type Service struct {
	identity ports.IdentityService
	orders   ports.OrderService
	payments ports.PaymentService

	log       sagalog.Repository
	publisher events.Publisher
	recorder  Recorder
	newID     func() string

	reconcileAttempts uint
	reconcileDelay    time.Duration
	publishTimeout    time.Duration
}

// DefaultPublishTimeout bounds the delivery of one outcome event.
const DefaultPublishTimeout = 2 * time.Second

type Option func(*Service)

func WithSagaLog(repo sagalog.Repository) Option {
	return func(s *Service) { s.log = repo }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithReconcileRetry allows up to attempts calls to reconcile an order when
// the order registry is unavailable. One attempt means no retry.
func WithReconcileRetry(attempts uint, delay time.Duration) Option {
	return func(s *Service) {
		s.reconcileAttempts = attempts
		s.reconcileDelay = delay
	}
}

// WithPublishTimeout bounds how long a finished saga waits for its outcome
// event to be delivered.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func NewService(identity ports.IdentityService, orders ports.OrderService, payments ports.PaymentService, opts ...Option) *Service {
	s := &Service{
		identity:          identity,
		orders:            orders,
		payments:          payments,
		publisher:         events.Noop{},
		newID:             uuid.NewString,
		reconcileAttempts: 1,
		reconcileDelay:    100 * time.Millisecond,
		publishTimeout:    DefaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Purchase runs one saga. A declined payment returns an outcome and no
// error. When the payment resolved but the order could not be reconciled the
// outcome is returned together with an error matching
// apperrors.ErrReconciliationPending. Any earlier failure returns no outcome.
func (s *Service) Purchase(ctx context.Context, req PurchaseRequest) (*Outcome, error) {
	start := time.Now()
	if err := req.Normalize(); err != nil {
		s.observe(OutcomeRejected, time.Since(start))
		return nil, err
	}

	p := NewPurchase(s.newID(), req)
	slog.InfoContext(ctx, "purchase started", "saga_id", p.SagaID, "user_id", req.UserID, "amount", req.Amount.String())

	saga := NewOrchestrator(s.steps(), s.log)
	err := saga.Run(ctx, p)

	outcome := s.outcomeLabel(p, err)
	s.observe(outcome, time.Since(start))
	s.publish(ctx, p, err)

	switch {
	case err == nil:
		return p.Outcome(), nil
	case errors.Is(err, apperrors.ErrReconciliationPending):
		slog.ErrorContext(ctx, "order left pending after payment",
			"saga_id", p.SagaID,
			"order_id", p.Order.ID,
			"transaction_id", p.Transaction.ID,
			"error", err,
		)
		return p.Outcome(), err
	default:
		return nil, err
	}
}

func (s *Service) steps() []Step {
	return []Step{
		NewValidateIdentityStep(s.identity),
		NewCreateOrderStep(s.orders),
		NewChargePaymentStep(s.payments),
		NewReconcileStep(s.orders, s.reconcileAttempts, s.reconcileDelay),
	}
}

func (s *Service) outcomeLabel(p *Purchase, err error) string {
	switch {
	case err == nil && p.State == StateCompleted:
		return OutcomeCompleted
	case err == nil:
		return OutcomePaymentFailed
	case errors.Is(err, apperrors.ErrReconciliationPending):
		return OutcomeReconciliationPending
	default:
		return OutcomeAborted
	}
}

func (s *Service) observe(outcome string, elapsed time.Duration) {
	if s.recorder != nil {
		s.recorder.ObserveSaga(outcome, elapsed)
	}
}

func (s *Service) publish(ctx context.Context, p *Purchase, sagaErr error) {
	ev := events.PurchaseEvent{
		SagaID:     p.SagaID,
		State:      string(p.State),
		UserID:     p.Request.UserID,
		Amount:     p.Request.Amount,
		Reconciled: p.Reconciled,
		OccurredAt: time.Now().UTC(),
	}
	if p.Order != nil {
		ev.OrderID = p.Order.ID
	}
	if p.Transaction != nil {
		ev.TransactionID = p.Transaction.ID
		ev.PurchaseStatus = p.Transaction.Status
	}
	if sagaErr != nil {
		ev.Error = sagaErr.Error()
	}
	// The outcome is already decided: a cancelled request must not drop the
	// event and a stalled broker must not hold the response.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.WarnContext(ctx, "failed to publish purchase event", "saga_id", p.SagaID, "error", err)
	}
}

// IdentityOrders is the read view of one identity and its orders.
type IdentityOrders struct {
	User        *entity.User   `json:"user"`
	Orders      []entity.Order `json:"orders"`
	TotalOrders int            `json:"total_orders"`
}

// ListOrdersForIdentity validates the identity before listing its orders.
func (s *Service) ListOrdersForIdentity(ctx context.Context, userID int64) (*IdentityOrders, error) {
	user, err := s.identity.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListUserOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &IdentityOrders{User: user, Orders: orders, TotalOrders: len(orders)}, nil
}

// Register checks name and email before the identity registry is contacted.
func (s *Service) Register(ctx context.Context, name, email string) (*entity.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if err := validation.Validate(name, validation.Required); err != nil {
		return nil, apperrors.NewCoded(apperrors.ErrInvalidInput, apperrors.CodeInvalidRequest, "name: %v", err)
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	return s.identity.Register(ctx, name, email)
}

func (s *Service) Login(ctx context.Context, email string) (*entity.User, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	return s.identity.Login(ctx, email)
}

func validateEmail(email string) error {
	if err := validation.Validate(email, validation.Required, is.EmailFormat); err != nil {
		return apperrors.NewCoded(apperrors.ErrInvalidInput, apperrors.CodeInvalidRequest, "email: %v", err)
	}
	return nil
}

func (s *Service) Order(ctx context.Context, id int64) (*entity.Order, error) {
	return s.orders.GetOrder(ctx, id)
}

func (s *Service) Transaction(ctx context.Context, id int64) (*entity.Transaction, error) {
	return s.payments.GetTransaction(ctx, id)
}

// Refund returns a paid transaction's money. The order keeps its status.
func (s *Service) Refund(ctx context.Context, id int64) (*entity.Transaction, error) {
	return s.payments.Refund(ctx, id)
}

// SagaHistory returns the recorded transitions of one saga.
func (s *Service) SagaHistory(ctx context.Context, sagaID string) ([]sagalog.SagaLog, error) {
	if s.log == nil {
		return nil, apperrors.NewCoded(apperrors.ErrNotFound, apperrors.CodeNotFound, "saga log is disabled")
	}
	history, err := s.log.History(ctx, sagaID)
	if errors.Is(err, sagalog.ErrNotFound) {
		return nil, apperrors.NewCoded(apperrors.ErrNotFound, apperrors.CodeNotFound, "saga %s not found", sagaID)
	}
	return history, err
}

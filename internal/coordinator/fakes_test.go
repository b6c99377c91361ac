package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/core/domain/entity"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/apperrors"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/events"
)

type fakeIdentity struct {
	users     map[int64]entity.User
	err       error
	calls     int
	registers int
	logins    int
}

func (f *fakeIdentity) Register(_ context.Context, name, email string) (*entity.User, error) {
	f.registers++
	u := entity.User{ID: int64(len(f.users) + 1), Name: name, Email: email}
	f.users[u.ID] = u
	return &u, nil
}

func (f *fakeIdentity) Login(_ context.Context, email string) (*entity.User, error) {
	f.logins++
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.New(apperrors.ErrNotFound, "user with email %s not found", email)
}

func (f *fakeIdentity) GetUser(_ context.Context, id int64) (*entity.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.New(apperrors.ErrNotFound, "user %d not found", id)
	}
	return &u, nil
}

type fakeOrders struct {
	mu         sync.Mutex
	orders     map[int64]*entity.Order
	next       int64
	createErr  error
	updateErrs []error
	creates    int
	updates    int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[int64]*entity.Order{}, next: 1000}
}

func (f *fakeOrders) CreateOrder(_ context.Context, req entity.CreateOrder) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	o := &entity.Order{
		ID:          f.next,
		UserID:      req.UserID,
		Amount:      req.Amount,
		ProductName: req.ProductName,
		Status:      entity.OrderPending,
		CreatedAt:   time.Now().UTC(),
	}
	f.next++
	f.orders[o.ID] = o
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) GetOrder(_ context.Context, id int64) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, apperrors.New(apperrors.ErrNotFound, "order %d not found", id)
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) UpdateOrderStatus(_ context.Context, id int64, status string) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if len(f.updateErrs) > 0 {
		err := f.updateErrs[0]
		f.updateErrs = f.updateErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	o, ok := f.orders[id]
	if !ok {
		return nil, apperrors.New(apperrors.ErrNotFound, "order %d not found", id)
	}
	o.Status = status
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) ListUserOrders(_ context.Context, userID int64) ([]entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Order{}
	for id := int64(1000); id < f.next; id++ {
		if o := f.orders[id]; o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

type fakePayments struct {
	status  string
	err     error
	charges []entity.Charge
}

func (f *fakePayments) Charge(_ context.Context, req entity.Charge) (*entity.Transaction, error) {
	f.charges = append(f.charges, req)
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Transaction{
		ID:            int64(5000 + len(f.charges) - 1),
		OrderID:       req.OrderID,
		Amount:        req.Amount,
		Status:        f.status,
		PaymentMethod: req.PaymentMethod,
		ProcessedAt:   time.Now().UTC(),
	}, nil
}

func (f *fakePayments) GetTransaction(_ context.Context, id int64) (*entity.Transaction, error) {
	return nil, apperrors.New(apperrors.ErrNotFound, "transaction %d not found", id)
}

func (f *fakePayments) Refund(_ context.Context, id int64) (*entity.Transaction, error) {
	return nil, apperrors.New(apperrors.ErrNotFound, "transaction %d not found", id)
}

type recordingPublisher struct {
	states  []string
	ctxErrs []error
}

func (p *recordingPublisher) Publish(ctx context.Context, ev events.PurchaseEvent) error {
	p.states = append(p.states, ev.State)
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// stalledPublisher never delivers; it returns once its context is done.
type stalledPublisher struct {
	deadlineSet bool
	err         error
}

func (p *stalledPublisher) Publish(ctx context.Context, _ events.PurchaseEvent) error {
	_, p.deadlineSet = ctx.Deadline()
	<-ctx.Done()
	p.err = ctx.Err()
	return p.err
}

func (p *stalledPublisher) Close() error { return nil }

type recordingRecorder struct {
	outcomes  []string
	onObserve func()
}

func (r *recordingRecorder) ObserveSaga(outcome string, _ time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
	if r.onObserve != nil {
		r.onObserve()
	}
}

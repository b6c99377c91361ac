package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/purchase-sagas/internal/payment-service/domain"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/apperrors"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/money"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/storage"
)

func newTestRegistry(t *testing.T, approver Approver) *Registry {
	t.Helper()
	r, err := NewRegistryFromBackend(storage.NewMemoryStore(), approver)
	require.NoError(t, err)
	return r
}

func TestRegistry_ChargeApproved(t *testing.T) {
	r := newTestRegistry(t, AlwaysApprove)

	tx, err := r.Charge(context.Background(), domain.Charge{OrderID: 1000, Amount: money.MustParse("150.00")})
	require.NoError(t, err)
	assert.Equal(t, domain.FirstTransactionID, tx.ID)
	assert.Equal(t, domain.StatusPaid, tx.Status)
	assert.Equal(t, domain.DefaultPaymentMethod, tx.PaymentMethod)
	assert.True(t, tx.Amount.Equal(money.MustParse("150")))
}

func TestRegistry_ChargeDeclinedIsNotAnError(t *testing.T) {
	r := newTestRegistry(t, AlwaysDecline)

	tx, err := r.Charge(context.Background(), domain.Charge{OrderID: 1000, Amount: money.MustParse("10"), PaymentMethod: "debit_card"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, tx.Status)
	assert.Equal(t, "debit_card", tx.PaymentMethod)
}

func TestRegistry_ChargeRejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t, AlwaysApprove)

	_, err := r.Charge(ctx, domain.Charge{OrderID: 1000, Amount: money.MustParse("0")})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRegistry_Refund(t *testing.T) {
	ctx := context.Background()

	t.Run("paid becomes refunded once", func(t *testing.T) {
		r := newTestRegistry(t, AlwaysApprove)
		tx, err := r.Charge(ctx, domain.Charge{OrderID: 1000, Amount: money.MustParse("10")})
		require.NoError(t, err)

		refunded, err := r.Refund(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRefunded, refunded.Status)

		_, err = r.Refund(ctx, tx.ID)
		assert.ErrorIs(t, err, apperrors.ErrNotRefundable)
	})

	t.Run("failed is not refundable", func(t *testing.T) {
		r := newTestRegistry(t, AlwaysDecline)
		tx, err := r.Charge(ctx, domain.Charge{OrderID: 1000, Amount: money.MustParse("10")})
		require.NoError(t, err)

		_, err = r.Refund(ctx, tx.ID)
		require.ErrorIs(t, err, apperrors.ErrNotRefundable)

		got, err := r.Fetch(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFailed, got.Status)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		r := newTestRegistry(t, AlwaysApprove)
		_, err := r.Refund(ctx, 1)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestRegistry_ListByOrder(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t, AlwaysApprove)

	for _, order := range []int64{1000, 1001, 1000} {
		_, err := r.Charge(ctx, domain.Charge{OrderID: order, Amount: money.MustParse("1")})
		require.NoError(t, err)
	}

	txs, err := r.ListByOrder(ctx, 1000)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestRandomApprover(t *testing.T) {
	ctx := context.Background()
	charge := func(amount string) domain.Charge {
		return domain.Charge{OrderID: 1, Amount: money.MustParse(amount)}
	}

	assert.True(t, RandomApprover{Rate: 1}.Approve(ctx, charge("10")))
	assert.False(t, RandomApprover{Rate: 0}.Approve(ctx, charge("10")))
	assert.False(t, RandomApprover{Rate: 1, DeclineAbove: money.MustParse("100")}.Approve(ctx, charge("100.01")))
	assert.True(t, RandomApprover{Rate: 1, DeclineAbove: money.MustParse("100")}.Approve(ctx, charge("100")))
}

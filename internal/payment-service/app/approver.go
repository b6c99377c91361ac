package app

import (
	"context"
	"math/rand/v2"

	"github.com/jcmexdev/purchase-sagas/internal/payment-service/domain"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/money"
)

// Approver decides whether a charge is paid or declined.
type Approver interface {
	Approve(ctx context.Context, charge domain.Charge) bool
}

// ApproverFunc adapts a plain function to Approver.
type ApproverFunc func(ctx context.Context, charge domain.Charge) bool

func (f ApproverFunc) Approve(ctx context.Context, charge domain.Charge) bool {
	return f(ctx, charge)
}

// AlwaysApprove and AlwaysDecline are deterministic policies.
var (
	AlwaysApprove Approver = ApproverFunc(func(context.Context, domain.Charge) bool { return true })
	AlwaysDecline Approver = ApproverFunc(func(context.Context, domain.Charge) bool { return false })
)

// RandomApprover approves a share of charges and declines every charge
// above a limit. A zero limit disables the ceiling.
type RandomApprover struct {
	Rate         float64
	DeclineAbove money.Amount
}

func (a RandomApprover) Approve(_ context.Context, charge domain.Charge) bool {
	if money.Positive(a.DeclineAbove) && charge.Amount.GreaterThan(a.DeclineAbove) {
		return false
	}
	return rand.Float64() < a.Rate
}

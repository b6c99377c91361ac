package coordinator

// State is a position in the purchase state machine.
//
//	init -> user_validated -> order_created -> payment_resolved -> reconciled -> completed | payment_failed
type State string

const (
	StateInit            State = "init"
	StateUserValidated   State = "user_validated"
	StateOrderCreated    State = "order_created"
	StatePaymentResolved State = "payment_resolved"
	StateReconciled      State = "reconciled"
	StateCompleted       State = "completed"
	StatePaymentFailed   State = "payment_failed"
)

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StatePaymentFailed
}

package models

import "time"

// session states
const (
	SessionCreated         = "created"
	SessionAwaitingPayment = "awaiting_payment"
	SessionReconciled      = "reconciled"
	SessionFailed          = "failed"
	SessionTimedOut        = "timed_out"
)

// SessionView is snapshot of a payment session for callers. The live
// session is owned by the payment service and never leaves it.
type SessionView struct {
	OrderID   string    `json:"orderId"`
	Channel   string    `json:"channel"`
	Reference string    `json:"reference,omitempty"`
	State     string    `json:"state"`
	Reason    string    `json:"reason,omitempty"`
	Receipt   string    `json:"receipt,omitempty"`
	StartedAt time.Time `json:"startedAt"`
	Deadline  time.Time `json:"deadline"`
}

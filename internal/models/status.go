package models

import "slices"

// Status is the lifecycle state shared by transactions and charges
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
	StatusPaid      Status = "paid"
)

// Transitions maps a status to the statuses it may move to.
type Transitions map[Status][]Status

// TransactionTransitions is the lifecycle of a Transaction.
var TransactionTransitions = Transitions{
	StatusPending: {StatusCompleted, StatusFailed, StatusCancelled},
}

// ChargeTransitions is the lifecycle of a Charge.
var ChargeTransitions = Transitions{
	StatusPending: {StatusActive, StatusFailed, StatusPaid, StatusExpired},
	StatusActive:  {StatusPaid, StatusExpired},
}

// Allows reports whether from may move to to.
func (t Transitions) Allows(from, to Status) bool {
	return slices.Contains(t[from], to)
}

// IsTerminal reports whether no further transition is permitted from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusExpired, StatusCancelled, StatusPaid:
		return true
	default:
		return false
	}
}

package order

import "github.com/swas/backend/internal/domain/branch"

// Status is the workflow stage of a line item
type Status string

const (
	StatusQueued            Status = "Queued"
	StatusReadyForDelivery  Status = "Ready for Delivery"
	StatusToWarehouse       Status = "To Warehouse"
	StatusInProcess         Status = "In Process"
	StatusReturningToBranch Status = "Returning to Branch"
	StatusReadyForPickup    Status = "Ready for Pickup"
	StatusPickedUp          Status = "Picked Up"
)

// workflow lists statuses in the order a pair of shoes moves through them
var workflow = []Status{
	StatusQueued,
	StatusReadyForDelivery,
	StatusToWarehouse,
	StatusInProcess,
	StatusReturningToBranch,
	StatusReadyForPickup,
	StatusPickedUp,
}

// Statuses returns all statuses in workflow order
func Statuses() []Status {
	out := make([]Status, len(workflow))
	copy(out, workflow)
	return out
}

// index returns the position of s in the workflow, or -1
func (s Status) index() int {
	for i, w := range workflow {
		if w == s {
			return i
		}
	}
	return -1
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	return s.index() >= 0
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no transition leaves s
func (s Status) IsTerminal() bool {
	return s == StatusPickedUp
}

// Location is where an item physically is while in status s
func (s Status) Location() string {
	switch s {
	case StatusToWarehouse, StatusInProcess:
		return branch.LocationHub
	default:
		return branch.LocationBranch
	}
}

// CanTransitionTo allows one step forward, or one step back as a correction.
// Queued has nothing behind it and Picked Up is final.
func (s Status) CanTransitionTo(target Status) bool {
	from, to := s.index(), target.index()
	if from < 0 || to < 0 || s.IsTerminal() {
		return false
	}
	return to == from+1 || (to == from-1 && s != StatusQueued)
}

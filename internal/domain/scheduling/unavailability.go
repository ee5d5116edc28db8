package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/swas/backend/internal/domain/shared"
)

// UnavailabilityType is how much of a day is blocked
type UnavailabilityType string

const (
	FullDay    UnavailabilityType = "Full Day"
	PartialDay UnavailabilityType = "Partial Day"
)

// IsValid reports whether t is a known type
func (t UnavailabilityType) IsValid() bool {
	return t == FullDay || t == PartialDay
}

// FormatUnavailabilityID builds UNAV-<nnn>
func FormatUnavailabilityID(seq int64) string {
	return fmt.Sprintf("UNAV-%03d", seq)
}

// Unavailability blocks a branch for a whole day or part of one
type Unavailability struct {
	shared.BranchAggregateRoot
	UnavailabilityID string
	DateUnavailable  time.Time
	Type             UnavailabilityType
	Slot             *TimeRange
	Note             string
}

// NewUnavailability creates an unavailability. slot is required for a
// partial day and ignored for a full day.
func NewUnavailability(branchID, id string, date time.Time, kind UnavailabilityType, slot *TimeRange, note string) (*Unavailability, error) {
	if id == "" {
		return nil, shared.NewDomainError("INVALID_UNAVAILABILITY_ID", "Unavailability id cannot be empty")
	}
	if strings.TrimSpace(branchID) == "" {
		return nil, shared.NewDomainError("INVALID_BRANCH_ID", "Branch id cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_UNAVAILABILITY_TYPE", "Type must be Full Day or Partial Day")
	}
	if kind == PartialDay {
		if slot == nil {
			return nil, shared.NewDomainError("INVALID_TIME_RANGE", "Partial day unavailability needs a start and end time")
		}
		if slot.Start >= slot.End {
			return nil, shared.NewDomainError("INVALID_TIME_RANGE", "Start time must be before end time")
		}
	} else {
		slot = nil
	}
	u := &Unavailability{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		UnavailabilityID:    id,
		DateUnavailable:     Day(date),
		Type:                kind,
		Slot:                slot,
		Note:                note,
	}
	u.AddDomainEvent(NewUnavailabilityEvent(EventTypeUnavailabilityCreated, u))
	return u, nil
}

// Blocks reports whether an appointment slot on date would fall inside u
func (u *Unavailability) Blocks(date time.Time, slot TimeRange) bool {
	if !SameDay(u.DateUnavailable, date) {
		return false
	}
	if u.Type == FullDay {
		return true
	}
	return u.Slot != nil && u.Slot.Overlaps(slot)
}

// CancelReason is the note written on appointments cancelled by u
func (u *Unavailability) CancelReason() string {
	return fmt.Sprintf("Cancelled due to unavailability (%s)", u.Type)
}

// CancelAffected cancels the approved appointments u blocks and
// returns them
func (u *Unavailability) CancelAffected(appointments []*Appointment) []*Appointment {
	cancelled := make([]*Appointment, 0)
	for _, a := range appointments {
		if a.Status != AppointmentApproved || !a.AffectedBy(u) {
			continue
		}
		if err := a.ChangeStatus(AppointmentCancelled, u.CancelReason()); err == nil {
			cancelled = append(cancelled, a)
		}
	}
	return cancelled
}

// RecordCancelled stores how many appointments the creation cancelled on
// the pending created event
func (u *Unavailability) RecordCancelled(n int) {
	for _, e := range u.GetDomainEvents() {
		if ev, ok := e.(*UnavailabilityEvent); ok && ev.EventType() == EventTypeUnavailabilityCreated {
			ev.CancelledCount = n
		}
	}
}

// MarkDeleted raises the deletion event
func (u *Unavailability) MarkDeleted() {
	u.AddDomainEvent(NewUnavailabilityEvent(EventTypeUnavailabilityDeleted, u))
}

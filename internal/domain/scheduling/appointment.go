package scheduling

import (
	"fmt"
	"time"

	"github.com/swas/backend/internal/domain/shared"
)

// AppointmentStatus of a booking
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "Pending"
	AppointmentApproved  AppointmentStatus = "Approved"
	AppointmentCancelled AppointmentStatus = "Cancelled"
)

// IsValid reports whether s is a known appointment status
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentPending, AppointmentApproved, AppointmentCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	switch s {
	case AppointmentPending:
		return target == AppointmentApproved || target == AppointmentCancelled
	case AppointmentApproved:
		return target == AppointmentCancelled
	}
	return false
}

// FormatAppointmentID builds APPT-<n>
func FormatAppointmentID(seq int64) string {
	return fmt.Sprintf("APPT-%d", seq)
}

// Appointment is a customer's booked drop-off or consultation slot
type Appointment struct {
	shared.BranchAggregateRoot
	AppointmentID  string
	CustID         string
	DateForInquiry time.Time
	Slot           TimeRange
	Status         AppointmentStatus
	CancelReason   string
}

// NewAppointment creates a pending appointment
func NewAppointment(branchID, appointmentID, custID string, date time.Time, slot TimeRange) (*Appointment, error) {
	if appointmentID == "" {
		return nil, shared.NewDomainError("INVALID_APPOINTMENT_ID", "Appointment id cannot be empty")
	}
	if custID == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer id cannot be empty")
	}
	if slot.Start >= slot.End {
		return nil, shared.NewDomainError("INVALID_TIME_RANGE", "Start time must be before end time")
	}
	a := &Appointment{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		AppointmentID:       appointmentID,
		CustID:              custID,
		DateForInquiry:      Day(date),
		Slot:                slot,
		Status:              AppointmentPending,
	}
	a.AddDomainEvent(NewAppointmentUpdatedEvent(a))
	return a, nil
}

// ChangeStatus moves the appointment to target
func (a *Appointment) ChangeStatus(target AppointmentStatus, reason string) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown appointment status %q", target))
	}
	if !a.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("Appointment %s cannot move from %s to %s", a.AppointmentID, a.Status, target))
	}
	a.Status = target
	if target == AppointmentCancelled {
		a.CancelReason = reason
	}
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	a.AddDomainEvent(NewAppointmentUpdatedEvent(a))
	return nil
}

// AffectedBy reports whether u blocks this appointment
func (a *Appointment) AffectedBy(u *Unavailability) bool {
	if a.BranchID != u.BranchID || !SameDay(a.DateForInquiry, u.DateUnavailable) {
		return false
	}
	if u.Type == FullDay {
		return true
	}
	return u.Slot != nil && a.Slot.Overlaps(*u.Slot)
}

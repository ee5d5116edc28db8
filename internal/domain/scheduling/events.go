package scheduling

import "github.com/swas/backend/internal/domain/shared"

// Aggregate type constants
const (
	AggregateTypeAppointment    = "Appointment"
	AggregateTypeUnavailability = "Unavailability"
)

// Event type constants
const (
	EventTypeAppointmentUpdated    = "AppointmentUpdated"
	EventTypeUnavailabilityCreated = "UnavailabilityCreated"
	EventTypeUnavailabilityDeleted = "UnavailabilityDeleted"
)

// AppointmentUpdatedEvent is raised when an appointment is booked or changes status
type AppointmentUpdatedEvent struct {
	shared.BaseDomainEvent
	AppointmentID  string            `json:"appointment_id"`
	CustID         string            `json:"cust_id"`
	DateForInquiry string            `json:"date_for_inquiry"`
	TimeStart      string            `json:"time_start"`
	TimeEnd        string            `json:"time_end"`
	Status         AppointmentStatus `json:"status"`
	CancelReason   string            `json:"cancel_reason,omitempty"`
}

// NewAppointmentUpdatedEvent creates an AppointmentUpdatedEvent
func NewAppointmentUpdatedEvent(a *Appointment) *AppointmentUpdatedEvent {
	return &AppointmentUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAppointmentUpdated, AggregateTypeAppointment, a.ID, a.BranchID),
		AppointmentID:   a.AppointmentID,
		CustID:          a.CustID,
		DateForInquiry:  a.DateForInquiry.Format(DateLayout),
		TimeStart:       a.Slot.Start.String(),
		TimeEnd:         a.Slot.End.String(),
		Status:          a.Status,
		CancelReason:    a.CancelReason,
	}
}

// UnavailabilityEvent is raised when an unavailability is added or removed
type UnavailabilityEvent struct {
	shared.BaseDomainEvent
	UnavailabilityID string             `json:"unavailability_id"`
	DateUnavailable  string             `json:"date_unavailable"`
	Type             UnavailabilityType `json:"type"`
	CancelledCount   int                `json:"cancelled_count"`
}

// NewUnavailabilityEvent creates an UnavailabilityEvent of the given type
func NewUnavailabilityEvent(eventType string, u *Unavailability) *UnavailabilityEvent {
	return &UnavailabilityEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(eventType, AggregateTypeUnavailability, u.ID, u.BranchID),
		UnavailabilityID: u.UnavailabilityID,
		DateUnavailable:  u.DateUnavailable.Format(DateLayout),
		Type:             u.Type,
	}
}

package scheduling

import (
	"time"

	"github.com/swas/backend/internal/domain/scheduling"
)

// ListAppointmentsQuery filters the appointment listing
type ListAppointmentsQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=Pending Approved Cancelled"`
	BranchID string `form:"branch_id"`
	Date     string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// CreateAppointmentRequest books a slot for a customer
type CreateAppointmentRequest struct {
	CustID         string `json:"cust_id" binding:"required"`
	BranchID       string `json:"branch_id"`
	DateForInquiry string `json:"date_for_inquiry" binding:"required,datetime=2006-01-02"`
	TimeStart      string `json:"time_start" binding:"required,hhmm"`
	TimeEnd        string `json:"time_end" binding:"required,hhmm"`
}

// UpdateAppointmentStatusRequest approves or cancels an appointment
type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Approved Cancelled"`
	Reason string `json:"reason" binding:"max=500"`
}

// AppointmentResponse represents an appointment
type AppointmentResponse struct {
	AppointmentID  string `json:"appointment_id"`
	CustID         string `json:"cust_id"`
	BranchID       string `json:"branch_id"`
	DateForInquiry string `json:"date_for_inquiry"`
	TimeStart      string `json:"time_start"`
	TimeEnd        string `json:"time_end"`
	Status         string `json:"status"`
	CancelReason   string `json:"cancel_reason,omitempty"`
}

// CreateUnavailabilityRequest blocks a branch for a day or part of one
type CreateUnavailabilityRequest struct {
	BranchID        string `json:"branch_id"`
	DateUnavailable string `json:"date_unavailable" binding:"required,datetime=2006-01-02"`
	Type            string `json:"type" binding:"required,oneof='Full Day' 'Partial Day'"`
	TimeStart       string `json:"time_start" binding:"omitempty,hhmm"`
	TimeEnd         string `json:"time_end" binding:"omitempty,hhmm"`
	Note            string `json:"note" binding:"max=500"`
}

// UnavailabilityResponse represents an unavailability record
type UnavailabilityResponse struct {
	UnavailabilityID string  `json:"unavailability_id"`
	BranchID         string  `json:"branch_id"`
	DateUnavailable  string  `json:"date_unavailable"`
	Type             string  `json:"type"`
	TimeStart        *string `json:"time_start"`
	TimeEnd          *string `json:"time_end"`
	Note             string  `json:"note"`
}

// CreateUnavailabilityResponse carries the new record and the appointments it cancelled
type CreateUnavailabilityResponse struct {
	Unavailability UnavailabilityResponse `json:"unavailability"`
	CancelledCount int                    `json:"cancelled_count"`
	Cancelled      []AppointmentResponse  `json:"cancelled"`
}

// ToAppointmentResponse converts a domain appointment
func ToAppointmentResponse(a *scheduling.Appointment) AppointmentResponse {
	return AppointmentResponse{
		AppointmentID:  a.AppointmentID,
		CustID:         a.CustID,
		BranchID:       a.BranchID,
		DateForInquiry: a.DateForInquiry.Format(scheduling.DateLayout),
		TimeStart:      a.Slot.Start.String(),
		TimeEnd:        a.Slot.End.String(),
		Status:         string(a.Status),
		CancelReason:   a.CancelReason,
	}
}

// ToUnavailabilityResponse converts a domain unavailability
func ToUnavailabilityResponse(u *scheduling.Unavailability) UnavailabilityResponse {
	resp := UnavailabilityResponse{
		UnavailabilityID: u.UnavailabilityID,
		BranchID:         u.BranchID,
		DateUnavailable:  u.DateUnavailable.Format(scheduling.DateLayout),
		Type:             string(u.Type),
		Note:             u.Note,
	}
	if u.Slot != nil {
		start, end := u.Slot.Start.String(), u.Slot.End.String()
		resp.TimeStart = &start
		resp.TimeEnd = &end
	}
	return resp
}

func toAppointmentResponses(appts []*scheduling.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, len(appts))
	for i, a := range appts {
		out[i] = ToAppointmentResponse(a)
	}
	return out
}

func parseDate(raw string) (time.Time, error) {
	return scheduling.ParseDay(raw)
}

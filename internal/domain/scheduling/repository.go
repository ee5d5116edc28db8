package scheduling

import (
	"context"
	"time"
)

// AppointmentFilter narrows appointment listings
type AppointmentFilter struct {
	BranchID string
	Status   AppointmentStatus
	Date     *time.Time
}

// AppointmentRepository defines persistence for appointments
type AppointmentRepository interface {
	FindByAppointmentID(ctx context.Context, appointmentID string) (*Appointment, error)
	FindAll(ctx context.Context, filter AppointmentFilter) ([]Appointment, error)
	Save(ctx context.Context, a *Appointment) error
	SaveWithLock(ctx context.Context, a *Appointment) error
}

// UnavailabilityRepository defines persistence for unavailability records
type UnavailabilityRepository interface {
	FindByID(ctx context.Context, unavailabilityID string) (*Unavailability, error)
	// FindAll lists records of branchID, or of every branch when empty
	FindAll(ctx context.Context, branchID string) ([]Unavailability, error)
	FindByBranchAndDate(ctx context.Context, branchID string, date time.Time) ([]Unavailability, error)
	Save(ctx context.Context, u *Unavailability) error
	Delete(ctx context.Context, unavailabilityID string) error
}

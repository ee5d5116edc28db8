package models

import (
	"time"

	"github.com/swas/backend/internal/domain/scheduling"
)

// AppointmentModel is the persistence model for appointments.
// Times are stored as minutes after midnight.
type AppointmentModel struct {
	BranchAggregateModel
	AppointmentID  string                       `gorm:"type:varchar(32);not null;uniqueIndex"`
	CustID         string                       `gorm:"type:varchar(32);not null;index"`
	DateForInquiry time.Time                    `gorm:"type:date;not null;index"`
	StartMinute    int                          `gorm:"not null"`
	EndMinute      int                          `gorm:"not null"`
	Status         scheduling.AppointmentStatus `gorm:"type:varchar(20);not null;index"`
	CancelReason   string                       `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (AppointmentModel) TableName() string {
	return "appointments"
}

// ToDomain converts to the domain Appointment
func (m *AppointmentModel) ToDomain() *scheduling.Appointment {
	return &scheduling.Appointment{
		BranchAggregateRoot: m.ToBranchAggregateRoot(),
		AppointmentID:       m.AppointmentID,
		CustID:              m.CustID,
		DateForInquiry:      scheduling.Day(m.DateForInquiry),
		Slot: scheduling.TimeRange{
			Start: scheduling.ClockTime(m.StartMinute),
			End:   scheduling.ClockTime(m.EndMinute),
		},
		Status:       m.Status,
		CancelReason: m.CancelReason,
	}
}

// AppointmentModelFromDomain creates a persistence model from a domain Appointment
func AppointmentModelFromDomain(a *scheduling.Appointment) *AppointmentModel {
	m := &AppointmentModel{
		AppointmentID:  a.AppointmentID,
		CustID:         a.CustID,
		DateForInquiry: scheduling.Day(a.DateForInquiry),
		StartMinute:    int(a.Slot.Start),
		EndMinute:      int(a.Slot.End),
		Status:         a.Status,
		CancelReason:   a.CancelReason,
	}
	m.FromDomainBranchAggregateRoot(a.BranchAggregateRoot)
	return m
}

// UnavailabilityModel is the persistence model for blocked shop time.
// The minute columns are null for full day entries.
type UnavailabilityModel struct {
	BranchAggregateModel
	UnavailabilityID string                        `gorm:"type:varchar(32);not null;uniqueIndex"`
	DateUnavailable  time.Time                     `gorm:"type:date;not null;index"`
	Type             scheduling.UnavailabilityType `gorm:"type:varchar(20);not null"`
	StartMinute      *int
	EndMinute        *int
	Note             string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (UnavailabilityModel) TableName() string {
	return "unavailability"
}

// ToDomain converts to the domain Unavailability
func (m *UnavailabilityModel) ToDomain() *scheduling.Unavailability {
	u := &scheduling.Unavailability{
		BranchAggregateRoot: m.ToBranchAggregateRoot(),
		UnavailabilityID:    m.UnavailabilityID,
		DateUnavailable:     scheduling.Day(m.DateUnavailable),
		Type:                m.Type,
		Note:                m.Note,
	}
	if m.StartMinute != nil && m.EndMinute != nil {
		u.Slot = &scheduling.TimeRange{
			Start: scheduling.ClockTime(*m.StartMinute),
			End:   scheduling.ClockTime(*m.EndMinute),
		}
	}
	return u
}

// UnavailabilityModelFromDomain creates a persistence model from a domain Unavailability
func UnavailabilityModelFromDomain(u *scheduling.Unavailability) *UnavailabilityModel {
	m := &UnavailabilityModel{
		UnavailabilityID: u.UnavailabilityID,
		DateUnavailable:  scheduling.Day(u.DateUnavailable),
		Type:             u.Type,
		Note:             u.Note,
	}
	if u.Slot != nil {
		start, end := int(u.Slot.Start), int(u.Slot.End)
		m.StartMinute = &start
		m.EndMinute = &end
	}
	m.FromDomainBranchAggregateRoot(u.BranchAggregateRoot)
	return m
}

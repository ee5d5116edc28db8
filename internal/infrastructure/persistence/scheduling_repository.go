package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/swas/backend/internal/domain/scheduling"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAppointmentRepository implements AppointmentRepository using GORM
type GormAppointmentRepository struct {
	db *gorm.DB
}

// NewGormAppointmentRepository creates a new GormAppointmentRepository
func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

// FindByAppointmentID finds an appointment by its id
func (r *GormAppointmentRepository) FindByAppointmentID(ctx context.Context, appointmentID string) (*scheduling.Appointment, error) {
	var m models.AppointmentModel
	if err := r.db.WithContext(ctx).Where("appointment_id = ?", appointmentID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll lists appointments by date and start time
func (r *GormAppointmentRepository) FindAll(ctx context.Context, filter scheduling.AppointmentFilter) ([]scheduling.Appointment, error) {
	query := r.db.WithContext(ctx).Model(&models.AppointmentModel{})
	if filter.BranchID != "" {
		query = query.Where("branch_id = ?", filter.BranchID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Date != nil {
		from, to := dayBounds(*filter.Date)
		query = query.Where("date_for_inquiry >= ? AND date_for_inquiry < ?", from, to)
	}

	var rows []models.AppointmentModel
	if err := query.Order("date_for_inquiry ASC").Order("start_minute ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]scheduling.Appointment, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates an appointment
func (r *GormAppointmentRepository) Save(ctx context.Context, a *scheduling.Appointment) error {
	return r.db.WithContext(ctx).Save(models.AppointmentModelFromDomain(a)).Error
}

// SaveWithLock updates an appointment whose version was incremented once since it was loaded
func (r *GormAppointmentRepository) SaveWithLock(ctx context.Context, a *scheduling.Appointment) error {
	model := models.AppointmentModelFromDomain(a)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("appointment_id = ? AND version = ?", a.AppointmentID, a.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.ErrConcurrencyConflict.Code,
			"Appointment "+a.AppointmentID+" was modified by another request")
	}
	return nil
}

// Ensure GormAppointmentRepository implements AppointmentRepository
var _ scheduling.AppointmentRepository = (*GormAppointmentRepository)(nil)

// GormUnavailabilityRepository implements UnavailabilityRepository using GORM
type GormUnavailabilityRepository struct {
	db *gorm.DB
}

// NewGormUnavailabilityRepository creates a new GormUnavailabilityRepository
func NewGormUnavailabilityRepository(db *gorm.DB) *GormUnavailabilityRepository {
	return &GormUnavailabilityRepository{db: db}
}

// FindByID finds an unavailability entry by its id
func (r *GormUnavailabilityRepository) FindByID(ctx context.Context, unavailabilityID string) (*scheduling.Unavailability, error) {
	var m models.UnavailabilityModel
	if err := r.db.WithContext(ctx).Where("unavailability_id = ?", unavailabilityID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll lists entries of branchID, or all entries when branchID is empty
func (r *GormUnavailabilityRepository) FindAll(ctx context.Context, branchID string) ([]scheduling.Unavailability, error) {
	query := r.db.WithContext(ctx).Model(&models.UnavailabilityModel{})
	if branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	return r.find(query)
}

// FindByBranchAndDate lists the entries of one branch on one day
func (r *GormUnavailabilityRepository) FindByBranchAndDate(ctx context.Context, branchID string, date time.Time) ([]scheduling.Unavailability, error) {
	from, to := dayBounds(date)
	query := r.db.WithContext(ctx).Model(&models.UnavailabilityModel{}).
		Where("branch_id = ? AND date_unavailable >= ? AND date_unavailable < ?", branchID, from, to)
	return r.find(query)
}

func (r *GormUnavailabilityRepository) find(query *gorm.DB) ([]scheduling.Unavailability, error) {
	var rows []models.UnavailabilityModel
	if err := query.Order("date_unavailable ASC").Order("unavailability_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]scheduling.Unavailability, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates an unavailability entry
func (r *GormUnavailabilityRepository) Save(ctx context.Context, u *scheduling.Unavailability) error {
	return r.db.WithContext(ctx).Save(models.UnavailabilityModelFromDomain(u)).Error
}

// Delete removes an unavailability entry
func (r *GormUnavailabilityRepository) Delete(ctx context.Context, unavailabilityID string) error {
	result := r.db.WithContext(ctx).Where("unavailability_id = ?", unavailabilityID).Delete(&models.UnavailabilityModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormUnavailabilityRepository implements UnavailabilityRepository
var _ scheduling.UnavailabilityRepository = (*GormUnavailabilityRepository)(nil)

// dayBounds returns [day, day+1) as YYYY-MM-DD literals. Binding date
// columns as text keeps the session time zone out of the comparison.
func dayBounds(t time.Time) (string, string) {
	day := scheduling.Day(t)
	return day.Format(scheduling.DateLayout), day.AddDate(0, 0, 1).Format(scheduling.DateLayout)
}

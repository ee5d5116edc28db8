package persistence

import (
	"context"
	"errors"

	"github.com/swas/backend/internal/domain/catalog"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormServiceRepository implements ServiceRepository using GORM
type GormServiceRepository struct {
	db *gorm.DB
}

// NewGormServiceRepository creates a new GormServiceRepository
func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

// FindAll lists services in id order, optionally of one type
func (r *GormServiceRepository) FindAll(ctx context.Context, serviceType catalog.ServiceType) ([]catalog.Service, error) {
	query := r.db.WithContext(ctx).Order("service_number ASC")
	if serviceType != "" {
		query = query.Where("type = ?", serviceType)
	}
	var rows []models.ServiceModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return servicesToDomain(rows), nil
}

// FindByServiceID finds a service by SERVICE id
func (r *GormServiceRepository) FindByServiceID(ctx context.Context, serviceID string) (*catalog.Service, error) {
	var m models.ServiceModel
	if err := r.db.WithContext(ctx).Where("service_id = ?", serviceID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByServiceIDs returns the services with the given ids
func (r *GormServiceRepository) FindByServiceIDs(ctx context.Context, serviceIDs []string) ([]catalog.Service, error) {
	if len(serviceIDs) == 0 {
		return []catalog.Service{}, nil
	}
	var rows []models.ServiceModel
	if err := r.db.WithContext(ctx).Where("service_id IN ?", serviceIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	return servicesToDomain(rows), nil
}

// MaxServiceNumber returns the highest n among SERVICE-<n>, or 0
func (r *GormServiceRepository) MaxServiceNumber(ctx context.Context) (int64, error) {
	var max int64
	err := r.db.WithContext(ctx).Model(&models.ServiceModel{}).
		Select("COALESCE(MAX(service_number), 0)").Scan(&max).Error
	return max, err
}

// Save creates or updates a service
func (r *GormServiceRepository) Save(ctx context.Context, s *catalog.Service) error {
	return r.db.WithContext(ctx).Save(models.ServiceModelFromDomain(s)).Error
}

func servicesToDomain(rows []models.ServiceModel) []catalog.Service {
	out := make([]catalog.Service, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormServiceRepository implements ServiceRepository
var _ catalog.ServiceRepository = (*GormServiceRepository)(nil)

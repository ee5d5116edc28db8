package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/swas/backend/internal/domain/customer"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByCustID finds a customer by CUST id
func (r *GormCustomerRepository) FindByCustID(ctx context.Context, custID string) (*customer.Customer, error) {
	var m models.CustomerModel
	if err := r.db.WithContext(ctx).Where("cust_id = ?", custID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByNameAndBirthdate finds the oldest customer with the normalized name
// and birthdate. A nil birthdate only matches customers without one.
func (r *GormCustomerRepository) FindByNameAndBirthdate(ctx context.Context, name string, bdate *time.Time) (*customer.Customer, error) {
	query := r.db.WithContext(ctx).Where("name_key = ?", name)
	if bdate == nil {
		query = query.Where("birthdate IS NULL")
	} else {
		query = query.Where("birthdate = ?", *bdate)
	}

	var m models.CustomerModel
	if err := query.Order("created_at ASC").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByCustIDs returns customers with the given ids, skipping unknown ones
func (r *GormCustomerRepository) FindByCustIDs(ctx context.Context, custIDs []string) ([]customer.Customer, error) {
	if len(custIDs) == 0 {
		return []customer.Customer{}, nil
	}
	var rows []models.CustomerModel
	if err := r.db.WithContext(ctx).Where("cust_id IN ?", custIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	return customersToDomain(rows), nil
}

// FindAll lists customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]customer.Customer, error) {
	var rows []models.CustomerModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return customersToDomain(rows), nil
}

// Count counts customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	return r.db.WithContext(ctx).Save(models.CustomerModelFromDomain(c)).Error
}

// SaveWithLock updates a customer whose version was incremented once since it was loaded
func (r *GormCustomerRepository) SaveWithLock(ctx context.Context, c *customer.Customer) error {
	model := models.CustomerModelFromDomain(c)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", c.ID, c.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.ErrConcurrencyConflict.Code, "The customer record has been modified by another request")
	}
	return nil
}

// DeleteByCustID removes a customer
func (r *GormCustomerRepository) DeleteByCustID(ctx context.Context, custID string) error {
	result := r.db.WithContext(ctx).Where("cust_id = ?", custID).Delete(&models.CustomerModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormCustomerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, CustomerSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func (r *GormCustomerRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.BranchID != "" {
		query = query.Where("branch_id = ?", filter.BranchID)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(cust_id) LIKE ? OR LOWER(email) LIKE ? OR contact LIKE ?", p, p, p, p)
	}
	for key, value := range filter.Filters {
		switch key {
		case "email":
			query = query.Where("email = ?", value)
		case "contact":
			query = query.Where("contact = ?", value)
		}
	}
	return query
}

func customersToDomain(rows []models.CustomerModel) []customer.Customer {
	out := make([]customer.Customer, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ customer.CustomerRepository = (*GormCustomerRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/swas/backend/internal/domain/identity"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByUserID finds a user by login name
func (r *GormUserRepository) FindByUserID(ctx context.Context, userID string) (*identity.User, error) {
	var m models.UserModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll lists users of branchID, or every user when branchID is empty
func (r *GormUserRepository) FindAll(ctx context.Context, branchID string) ([]identity.User, error) {
	query := r.db.WithContext(ctx).Order("user_number ASC")
	if branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	var rows []models.UserModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]identity.User, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// ExistsByUserID checks if a login name is taken
func (r *GormUserRepository) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).Where("user_id = ?", userID).Count(&count).Error
	return count > 0, err
}

// NextUserNumber returns one more than the highest user number
func (r *GormUserRepository) NextUserNumber(ctx context.Context) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Select("COALESCE(MAX(user_number), 0)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// Save creates or updates a user
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Save(models.UserModelFromDomain(user)).Error
}

// Delete removes a user by login name
func (r *GormUserRepository) Delete(ctx context.Context, userID string) error {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.UserModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormUserRepository implements UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)

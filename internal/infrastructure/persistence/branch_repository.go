package persistence

import (
	"context"
	"errors"

	"github.com/swas/backend/internal/domain/branch"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBranchRepository implements BranchRepository using GORM
type GormBranchRepository struct {
	db *gorm.DB
}

// NewGormBranchRepository creates a new GormBranchRepository
func NewGormBranchRepository(db *gorm.DB) *GormBranchRepository {
	return &GormBranchRepository{db: db}
}

// FindAll returns every branch ordered by branch number
func (r *GormBranchRepository) FindAll(ctx context.Context) ([]branch.Branch, error) {
	var rows []models.BranchModel
	if err := r.db.WithContext(ctx).Order("branch_number ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]branch.Branch, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// FindByBranchID finds a branch by its business id
func (r *GormBranchRepository) FindByBranchID(ctx context.Context, branchID string) (*branch.Branch, error) {
	var m models.BranchModel
	if err := r.db.WithContext(ctx).Where("branch_id = ?", branchID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// ExistsByBranchID checks if a branch id is taken
func (r *GormBranchRepository) ExistsByBranchID(ctx context.Context, branchID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BranchModel{}).Where("branch_id = ?", branchID).Count(&count).Error
	return count > 0, err
}

// ExistsByNumber checks if a branch number is taken
func (r *GormBranchRepository) ExistsByNumber(ctx context.Context, number int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BranchModel{}).Where("branch_number = ?", number).Count(&count).Error
	return count > 0, err
}

// Save creates or updates a branch
func (r *GormBranchRepository) Save(ctx context.Context, b *branch.Branch) error {
	return r.db.WithContext(ctx).Save(models.BranchModelFromDomain(b)).Error
}

// Ensure GormBranchRepository implements BranchRepository
var _ branch.BranchRepository = (*GormBranchRepository)(nil)

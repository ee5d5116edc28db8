package persistence

import (
	"context"
	"errors"

	"github.com/swas/backend/internal/domain/order"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLineItemRepository implements LineItemRepository using GORM
type GormLineItemRepository struct {
	db *gorm.DB
}

// NewGormLineItemRepository creates a new GormLineItemRepository
func NewGormLineItemRepository(db *gorm.DB) *GormLineItemRepository {
	return &GormLineItemRepository{db: db}
}

// FindByLineItemID finds a line item by its id
func (r *GormLineItemRepository) FindByLineItemID(ctx context.Context, lineItemID string) (*order.LineItem, error) {
	var m models.LineItemModel
	if err := r.db.WithContext(ctx).Where("line_item_id = ?", lineItemID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByLineItemIDs returns the line items with the given ids in id order
func (r *GormLineItemRepository) FindByLineItemIDs(ctx context.Context, lineItemIDs []string) ([]order.LineItem, error) {
	if len(lineItemIDs) == 0 {
		return []order.LineItem{}, nil
	}
	var rows []models.LineItemModel
	err := r.db.WithContext(ctx).
		Where("line_item_id IN ?", lineItemIDs).
		Order("line_item_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return lineItemsToDomain(rows), nil
}

// FindAll lists line items matching the filter, most recently updated first
func (r *GormLineItemRepository) FindAll(ctx context.Context, filter order.LineItemFilter) ([]order.LineItem, error) {
	query := r.db.WithContext(ctx).Model(&models.LineItemModel{})
	if filter.BranchID != "" {
		query = query.Where("branch_id = ?", filter.BranchID)
	}
	if filter.Status != "" {
		query = query.Where("current_status = ?", filter.Status)
	}
	if filter.TransactionID != "" {
		query = query.Where("transaction_id = ?", filter.TransactionID)
	}
	if filter.ExcludeReleased {
		query = query.Where("current_status <> ?", order.StatusPickedUp)
	}

	var rows []models.LineItemModel
	if err := query.Order("latest_update DESC").Order("line_item_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return lineItemsToDomain(rows), nil
}

// SaveBatch inserts or updates line items in one statement per item
func (r *GormLineItemRepository) SaveBatch(ctx context.Context, items []*order.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)
	for _, li := range items {
		if err := db.Save(models.LineItemModelFromDomain(li)).Error; err != nil {
			return err
		}
	}
	return nil
}

// SaveWithLock updates a line item only if its stored version is expectedVersion
func (r *GormLineItemRepository) SaveWithLock(ctx context.Context, li *order.LineItem, expectedVersion int) error {
	model := models.LineItemModelFromDomain(li)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("line_item_id = ? AND version = ?", li.LineItemID, expectedVersion).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.ErrConcurrencyConflict.Code,
			"Line item "+li.LineItemID+" was modified by another request")
	}
	return nil
}

func lineItemsToDomain(rows []models.LineItemModel) []order.LineItem {
	out := make([]order.LineItem, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormLineItemRepository implements LineItemRepository
var _ order.LineItemRepository = (*GormLineItemRepository)(nil)

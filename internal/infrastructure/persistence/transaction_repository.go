package persistence

import (
	"context"
	"errors"

	"github.com/swas/backend/internal/domain/order"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTransactionRepository implements TransactionRepository using GORM.
// Payments live in their own table and are only ever appended.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

func preloadPayments(db *gorm.DB) *gorm.DB {
	return db.Order("paid_at ASC")
}

// FindByTransactionID finds a transaction with its payments
func (r *GormTransactionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*order.Transaction, error) {
	var m models.TransactionModel
	err := r.db.WithContext(ctx).
		Preload("Payments", preloadPayments).
		Where("transaction_id = ?", transactionID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll lists transactions matching the filter and the total match count
func (r *GormTransactionRepository) FindAll(ctx context.Context, filter order.TransactionFilter) ([]order.Transaction, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TransactionModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, TransactionSortFields, "date_in")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	var rows []models.TransactionModel
	if err := query.Preload("Payments", preloadPayments).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]order.Transaction, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Save inserts or updates the transaction and appends new payments
func (r *GormTransactionRepository) Save(ctx context.Context, t *order.Transaction) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(models.TransactionModelFromDomain(t)).Error; err != nil {
		return err
	}
	return r.appendPayments(db, t)
}

// SaveWithLock updates the transaction only if its stored version is expectedVersion
func (r *GormTransactionRepository) SaveWithLock(ctx context.Context, t *order.Transaction, expectedVersion int) error {
	db := r.db.WithContext(ctx)
	model := models.TransactionModelFromDomain(t)
	result := db.Model(model).
		Where("transaction_id = ? AND version = ?", t.TransactionID, expectedVersion).
		Select("*").Omit("id", "created_at", clause.Associations).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.ErrConcurrencyConflict.Code,
			"Transaction "+t.TransactionID+" was modified by another request")
	}
	return r.appendPayments(db, t)
}

func (r *GormTransactionRepository) appendPayments(db *gorm.DB, t *order.Transaction) error {
	if len(t.Payments) == 0 {
		return nil
	}
	rows := make([]*models.PaymentModel, len(t.Payments))
	for i, p := range t.Payments {
		rows[i] = models.PaymentModelFromDomain(p)
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_id"}},
		DoNothing: true,
	}).Create(&rows).Error
}

func (r *GormTransactionRepository) applyFilter(query *gorm.DB, filter order.TransactionFilter) *gorm.DB {
	if filter.BranchID != "" {
		query = query.Where("branch_id = ?", filter.BranchID)
	}
	switch {
	case filter.PaymentStatus != "":
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	case filter.Unpaid:
		query = query.Where("payment_status IN ?", []order.PaymentStatus{order.PaymentStatusUnpaid, order.PaymentStatusPartial})
	}
	if filter.CustID != "" {
		query = query.Where("cust_id = ?", filter.CustID)
	}
	if filter.From != nil {
		query = query.Where("date_in >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date_in < ?", *filter.To)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("LOWER(transaction_id) LIKE ? OR LOWER(cust_id) LIKE ?", p, p)
	}
	return query
}

// Ensure GormTransactionRepository implements TransactionRepository
var _ order.TransactionRepository = (*GormTransactionRepository)(nil)

package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/swas/backend/internal/domain/marketing"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAnnouncementRepository implements AnnouncementRepository using GORM
type GormAnnouncementRepository struct {
	db *gorm.DB
}

// NewGormAnnouncementRepository creates a new GormAnnouncementRepository
func NewGormAnnouncementRepository(db *gorm.DB) *GormAnnouncementRepository {
	return &GormAnnouncementRepository{db: db}
}

// FindAll lists announcements newest first. With a branch id, shop-wide
// announcements are included.
func (r *GormAnnouncementRepository) FindAll(ctx context.Context, branchID string) ([]marketing.Announcement, error) {
	query := r.db.WithContext(ctx).Model(&models.AnnouncementModel{})
	if branchID != "" {
		query = query.Where("branch_id = ? OR branch_id = '' OR branch_id IS NULL", branchID)
	}
	var rows []models.AnnouncementModel
	if err := query.Order("date DESC").Order("announcement_number DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]marketing.Announcement, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// FindByAnnouncementID finds an announcement by its id
func (r *GormAnnouncementRepository) FindByAnnouncementID(ctx context.Context, id string) (*marketing.Announcement, error) {
	var m models.AnnouncementModel
	if err := r.db.WithContext(ctx).Where("announcement_id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// MaxAnnouncementNumber returns the highest n among ANN-<n>, or 0
func (r *GormAnnouncementRepository) MaxAnnouncementNumber(ctx context.Context) (int64, error) {
	var max int64
	err := r.db.WithContext(ctx).Model(&models.AnnouncementModel{}).
		Select("COALESCE(MAX(announcement_number), 0)").Scan(&max).Error
	return max, err
}

// Create inserts a new announcement. A taken id yields ErrAlreadyExists.
func (r *GormAnnouncementRepository) Create(ctx context.Context, a *marketing.Announcement) error {
	err := r.db.WithContext(ctx).Create(models.AnnouncementModelFromDomain(a)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// Save updates an announcement
func (r *GormAnnouncementRepository) Save(ctx context.Context, a *marketing.Announcement) error {
	return r.db.WithContext(ctx).Save(models.AnnouncementModelFromDomain(a)).Error
}

// Delete removes an announcement
func (r *GormAnnouncementRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("announcement_id = ?", id).Delete(&models.AnnouncementModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormAnnouncementRepository implements AnnouncementRepository
var _ marketing.AnnouncementRepository = (*GormAnnouncementRepository)(nil)

// GormPromoRepository implements PromoRepository using GORM
type GormPromoRepository struct {
	db *gorm.DB
}

// NewGormPromoRepository creates a new GormPromoRepository
func NewGormPromoRepository(db *gorm.DB) *GormPromoRepository {
	return &GormPromoRepository{db: db}
}

// FindAll lists promos of branchID, or all promos when branchID is empty
func (r *GormPromoRepository) FindAll(ctx context.Context, branchID string) ([]marketing.Promo, error) {
	query := r.db.WithContext(ctx).Model(&models.PromoModel{})
	if branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	var rows []models.PromoModel
	if err := query.Order("promo_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return promosToDomain(rows), nil
}

// FindByPromoID finds a promo by its id
func (r *GormPromoRepository) FindByPromoID(ctx context.Context, id string) (*marketing.Promo, error) {
	var m models.PromoModel
	if err := r.db.WithContext(ctx).Where("promo_id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindActiveOn lists promos running on day. The dates column is JSON, so the
// day is narrowed with LIKE and confirmed on the decoded promo.
func (r *GormPromoRepository) FindActiveOn(ctx context.Context, day time.Time, branchID string) ([]marketing.Promo, error) {
	query := r.db.WithContext(ctx).Model(&models.PromoModel{}).
		Where("dates LIKE ?", "%\""+day.Format("2006-01-02")+"\"%")
	if branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	var rows []models.PromoModel
	if err := query.Order("promo_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]marketing.Promo, 0, len(rows))
	for _, p := range promosToDomain(rows) {
		if p.RunsOn(day) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Save creates or updates a promo
func (r *GormPromoRepository) Save(ctx context.Context, p *marketing.Promo) error {
	return r.db.WithContext(ctx).Save(models.PromoModelFromDomain(p)).Error
}

// Delete removes a promo
func (r *GormPromoRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("promo_id = ?", id).Delete(&models.PromoModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func promosToDomain(rows []models.PromoModel) []marketing.Promo {
	out := make([]marketing.Promo, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormPromoRepository implements PromoRepository
var _ marketing.PromoRepository = (*GormPromoRepository)(nil)

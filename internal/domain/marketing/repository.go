package marketing

import (
	"context"
	"time"
)

// AnnouncementRepository defines persistence for announcements
type AnnouncementRepository interface {
	// FindAll lists newest first. A branchID also matches shop-wide
	// announcements; an empty one lists everything.
	FindAll(ctx context.Context, branchID string) ([]Announcement, error)
	FindByAnnouncementID(ctx context.Context, id string) (*Announcement, error)
	MaxAnnouncementNumber(ctx context.Context) (int64, error)
	// Create fails with shared.ErrAlreadyExists on an id collision
	Create(ctx context.Context, a *Announcement) error
	Save(ctx context.Context, a *Announcement) error
	Delete(ctx context.Context, id string) error
}

// PromoRepository defines persistence for promos
type PromoRepository interface {
	FindAll(ctx context.Context, branchID string) ([]Promo, error)
	FindByPromoID(ctx context.Context, id string) (*Promo, error)
	FindActiveOn(ctx context.Context, day time.Time, branchID string) ([]Promo, error)
	Save(ctx context.Context, p *Promo) error
	Delete(ctx context.Context, id string) error
}

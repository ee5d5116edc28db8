package models

import (
	"time"

	"github.com/swas/backend/internal/domain/marketing"
)

// AnnouncementModel is the persistence model for announcements.
// An empty BranchID marks a shop-wide announcement.
type AnnouncementModel struct {
	AggregateModel
	AnnouncementID     string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	AnnouncementNumber int64     `gorm:"not null;index"`
	Title              string    `gorm:"type:varchar(200);not null"`
	Description        string    `gorm:"type:text;not null"`
	Date               time.Time `gorm:"not null;index"`
	BranchID           string    `gorm:"type:varchar(32);index"`
}

// TableName returns the table name for GORM
func (AnnouncementModel) TableName() string {
	return "announcements"
}

// ToDomain converts to the domain Announcement
func (m *AnnouncementModel) ToDomain() *marketing.Announcement {
	return &marketing.Announcement{
		BaseAggregateRoot: m.ToAggregateRoot(),
		AnnouncementID:    m.AnnouncementID,
		Title:             m.Title,
		Description:       m.Description,
		Date:              m.Date,
		BranchID:          m.BranchID,
	}
}

// AnnouncementModelFromDomain creates a persistence model from a domain Announcement
func AnnouncementModelFromDomain(a *marketing.Announcement) *AnnouncementModel {
	m := &AnnouncementModel{
		AnnouncementID:     a.AnnouncementID,
		AnnouncementNumber: marketing.ParseAnnouncementNumber(a.AnnouncementID),
		Title:              a.Title,
		Description:        a.Description,
		Date:               a.Date,
		BranchID:           a.BranchID,
	}
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	return m
}

// PromoModel is the persistence model for promos. Dates are stored as a JSON
// list of YYYY-MM-DD strings.
type PromoModel struct {
	BranchAggregateModel
	PromoID     string   `gorm:"type:varchar(32);not null;uniqueIndex"`
	Title       string   `gorm:"type:varchar(200);not null"`
	Description string   `gorm:"type:text"`
	Dates       []string `gorm:"type:text;serializer:json"`
	Duration    string   `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (PromoModel) TableName() string {
	return "promos"
}

// ToDomain converts to the domain Promo
func (m *PromoModel) ToDomain() *marketing.Promo {
	dates := make([]time.Time, 0, len(m.Dates))
	for _, d := range m.Dates {
		if t, err := time.Parse(dateLayout, d); err == nil {
			dates = append(dates, t)
		}
	}
	return &marketing.Promo{
		BranchAggregateRoot: m.ToBranchAggregateRoot(),
		PromoID:             m.PromoID,
		Title:               m.Title,
		Description:         m.Description,
		Dates:               dates,
		Duration:            m.Duration,
	}
}

// PromoModelFromDomain creates a persistence model from a domain Promo
func PromoModelFromDomain(p *marketing.Promo) *PromoModel {
	dates := make([]string, len(p.Dates))
	for i, d := range p.Dates {
		dates[i] = d.Format(dateLayout)
	}
	m := &PromoModel{
		PromoID:     p.PromoID,
		Title:       p.Title,
		Description: p.Description,
		Dates:       dates,
		Duration:    p.Duration,
	}
	m.FromDomainBranchAggregateRoot(p.BranchAggregateRoot)
	return m
}

const dateLayout = "2006-01-02"

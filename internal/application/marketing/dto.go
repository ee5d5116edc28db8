package marketing

import (
	"time"

	"github.com/swas/backend/internal/domain/marketing"
)

const dateLayout = "2006-01-02"

// AnnouncementRequest creates or updates an announcement
type AnnouncementRequest struct {
	Title       string `json:"announcement_title" binding:"required,max=200"`
	Description string `json:"announcement_description" binding:"required"`
	BranchID    string `json:"branch_id"`
}

// AnnouncementResponse represents an announcement
type AnnouncementResponse struct {
	AnnouncementID string    `json:"announcement_id"`
	Title          string    `json:"announcement_title"`
	Description    string    `json:"announcement_description"`
	Date           time.Time `json:"announcement_date"`
	BranchID       *string   `json:"branch_id"`
}

// PromoRequest creates or updates a promo
type PromoRequest struct {
	Title       string   `json:"promo_title" binding:"required,max=200"`
	Description string   `json:"promo_description"`
	Dates       []string `json:"promo_dates" binding:"required,min=1,dive,datetime=2006-01-02"`
	BranchID    string   `json:"branch_id"`
}

// PromoResponse represents a promo
type PromoResponse struct {
	PromoID     string   `json:"promo_id"`
	Title       string   `json:"promo_title"`
	Description string   `json:"promo_description"`
	Dates       []string `json:"promo_dates"`
	Duration    string   `json:"promo_duration"`
	BranchID    string   `json:"branch_id"`
}

// ToAnnouncementResponse converts a domain announcement
func ToAnnouncementResponse(a *marketing.Announcement) AnnouncementResponse {
	resp := AnnouncementResponse{
		AnnouncementID: a.AnnouncementID,
		Title:          a.Title,
		Description:    a.Description,
		Date:           a.Date,
	}
	if a.BranchID != "" {
		b := a.BranchID
		resp.BranchID = &b
	}
	return resp
}

// ToPromoResponse converts a domain promo
func ToPromoResponse(p *marketing.Promo) PromoResponse {
	dates := make([]string, len(p.Dates))
	for i, d := range p.Dates {
		dates[i] = d.Format(dateLayout)
	}
	return PromoResponse{
		PromoID:     p.PromoID,
		Title:       p.Title,
		Description: p.Description,
		Dates:       dates,
		Duration:    p.Duration,
		BranchID:    p.BranchID,
	}
}

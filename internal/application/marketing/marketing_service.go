package marketing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/swas/backend/internal/domain/marketing"
	"github.com/swas/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	announcementIDAttempts = 3
	promoSequenceKey       = "promo"
)

// MarketingService manages announcements and promos
type MarketingService struct {
	announcementRepo marketing.AnnouncementRepository
	promoRepo        marketing.PromoRepository
	sequences        shared.SequenceGenerator
	location         *time.Location
	logger           *zap.Logger
	now              func() time.Time
}

// NewMarketingService creates a new MarketingService
func NewMarketingService(
	announcementRepo marketing.AnnouncementRepository,
	promoRepo marketing.PromoRepository,
	sequences shared.SequenceGenerator,
	location *time.Location,
	logger *zap.Logger,
) *MarketingService {
	if location == nil {
		location = time.UTC
	}
	return &MarketingService{
		announcementRepo: announcementRepo,
		promoRepo:        promoRepo,
		sequences:        sequences,
		location:         location,
		logger:           logger,
		now:              time.Now,
	}
}

// ListAnnouncements returns announcements newest first
func (s *MarketingService) ListAnnouncements(ctx context.Context, scope shared.Scope, branchID string) ([]AnnouncementResponse, error) {
	branchID, err := scope.Resolve(branchID)
	if err != nil {
		return nil, err
	}
	list, err := s.announcementRepo.FindAll(ctx, branchID)
	if err != nil {
		return nil, err
	}
	out := make([]AnnouncementResponse, len(list))
	for i := range list {
		out[i] = ToAnnouncementResponse(&list[i])
	}
	return out, nil
}

// CreateAnnouncement posts an announcement. Ids are allocated as the next
// ANN-<n>; a collision with a concurrent insert is retried.
func (s *MarketingService) CreateAnnouncement(ctx context.Context, scope shared.Scope, req AnnouncementRequest) (*AnnouncementResponse, error) {
	branchID, err := scope.Resolve(req.BranchID)
	if err != nil {
		return nil, err
	}

	var a *marketing.Announcement
	for attempt := 1; attempt <= announcementIDAttempts; attempt++ {
		max, err := s.announcementRepo.MaxAnnouncementNumber(ctx)
		if err != nil {
			return nil, err
		}
		a, err = marketing.NewAnnouncement(marketing.FormatAnnouncementID(max+1), req.Title, req.Description, branchID)
		if err != nil {
			return nil, err
		}
		err = s.announcementRepo.Create(ctx, a)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}
		s.logger.Debug("Announcement id collision, retrying",
			zap.String("announcement_id", a.AnnouncementID),
			zap.Int("attempt", attempt))
		a = nil
	}
	if a == nil {
		return nil, shared.NewDomainError(shared.ErrConcurrencyConflict.Code, "Could not allocate an announcement id, please retry")
	}

	s.logger.Info("Announcement created", zap.String("announcement_id", a.AnnouncementID))
	resp := ToAnnouncementResponse(a)
	return &resp, nil
}

// UpdateAnnouncement replaces the title and description
func (s *MarketingService) UpdateAnnouncement(ctx context.Context, scope shared.Scope, id string, req AnnouncementRequest) (*AnnouncementResponse, error) {
	a, err := s.loadAnnouncement(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := a.Update(req.Title, req.Description); err != nil {
		return nil, err
	}
	if err := s.announcementRepo.Save(ctx, a); err != nil {
		return nil, err
	}
	resp := ToAnnouncementResponse(a)
	return &resp, nil
}

// DeleteAnnouncement removes an announcement
func (s *MarketingService) DeleteAnnouncement(ctx context.Context, scope shared.Scope, id string) error {
	if _, err := s.loadAnnouncement(ctx, scope, id); err != nil {
		return err
	}
	return s.announcementRepo.Delete(ctx, id)
}

// loadAnnouncement fetches an announcement the caller may change. Shop-wide
// announcements belong to the superadmin.
func (s *MarketingService) loadAnnouncement(ctx context.Context, scope shared.Scope, id string) (*marketing.Announcement, error) {
	a, err := s.announcementRepo.FindByAnnouncementID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.Superadmin && (a.BranchID == "" || !scope.Allows(a.BranchID)) {
		return nil, shared.ErrForbidden
	}
	return a, nil
}

// ListPromos returns the promos of a branch, or all of them
func (s *MarketingService) ListPromos(ctx context.Context, scope shared.Scope, branchID string) ([]PromoResponse, error) {
	branchID, err := scope.Resolve(branchID)
	if err != nil {
		return nil, err
	}
	list, err := s.promoRepo.FindAll(ctx, branchID)
	if err != nil {
		return nil, err
	}
	return toPromoResponses(list), nil
}

// ListActivePromos returns the promos running on date (YYYY-MM-DD, today when empty)
func (s *MarketingService) ListActivePromos(ctx context.Context, scope shared.Scope, date, branchID string) ([]PromoResponse, error) {
	branchID, err := scope.Resolve(branchID)
	if err != nil {
		return nil, err
	}
	day := s.now().In(s.location)
	if date != "" {
		day, err = time.ParseInLocation(dateLayout, date, s.location)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "date must be YYYY-MM-DD")
		}
	}
	y, m, d := day.Date()
	list, err := s.promoRepo.FindActiveOn(ctx, time.Date(y, m, d, 0, 0, 0, 0, time.UTC), branchID)
	if err != nil {
		return nil, err
	}
	return toPromoResponses(list), nil
}

// GetPromo returns a promo by id
func (s *MarketingService) GetPromo(ctx context.Context, id string) (*PromoResponse, error) {
	p, err := s.promoRepo.FindByPromoID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPromoResponse(p)
	return &resp, nil
}

// CreatePromo registers a promo for a branch
func (s *MarketingService) CreatePromo(ctx context.Context, scope shared.Scope, req PromoRequest) (*PromoResponse, error) {
	branchID, err := scope.Resolve(req.BranchID)
	if err != nil {
		return nil, err
	}
	if branchID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "branch_id is required")
	}
	details, err := promoDetails(req)
	if err != nil {
		return nil, err
	}

	seq, err := s.sequences.Next(ctx, promoSequenceKey)
	if err != nil {
		return nil, fmt.Errorf("allocate promo id: %w", err)
	}
	p, err := marketing.NewPromo(branchID, marketing.FormatPromoID(seq), details)
	if err != nil {
		return nil, err
	}
	if err := s.promoRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Promo created", zap.String("promo_id", p.PromoID), zap.String("duration", p.Duration))
	resp := ToPromoResponse(p)
	return &resp, nil
}

// UpdatePromo replaces a promo's details
func (s *MarketingService) UpdatePromo(ctx context.Context, scope shared.Scope, id string, req PromoRequest) (*PromoResponse, error) {
	p, err := s.promoRepo.FindByPromoID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(p.BranchID) {
		return nil, shared.ErrForbidden
	}
	details, err := promoDetails(req)
	if err != nil {
		return nil, err
	}
	if err := p.Update(details); err != nil {
		return nil, err
	}
	if err := s.promoRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	resp := ToPromoResponse(p)
	return &resp, nil
}

// DeletePromo removes a promo
func (s *MarketingService) DeletePromo(ctx context.Context, scope shared.Scope, id string) error {
	p, err := s.promoRepo.FindByPromoID(ctx, id)
	if err != nil {
		return err
	}
	if !scope.Allows(p.BranchID) {
		return shared.ErrForbidden
	}
	return s.promoRepo.Delete(ctx, id)
}

func promoDetails(req PromoRequest) (marketing.PromoDetails, error) {
	d := marketing.PromoDetails{Title: req.Title, Description: req.Description}
	for _, raw := range req.Dates {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return d, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Promo date %q must be YYYY-MM-DD", raw))
		}
		d.Dates = append(d.Dates, t)
	}
	return d, nil
}

func toPromoResponses(list []marketing.Promo) []PromoResponse {
	out := make([]PromoResponse, len(list))
	for i := range list {
		out[i] = ToPromoResponse(&list[i])
	}
	return out
}

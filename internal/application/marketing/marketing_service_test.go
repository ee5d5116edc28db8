package marketing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/swas/backend/internal/domain/marketing"
	"github.com/swas/backend/internal/domain/shared"
	"go.uber.org/zap"
)

type MockAnnouncementRepository struct {
	mock.Mock
}

func (m *MockAnnouncementRepository) FindAll(ctx context.Context, branchID string) ([]marketing.Announcement, error) {
	args := m.Called(ctx, branchID)
	return args.Get(0).([]marketing.Announcement), args.Error(1)
}

func (m *MockAnnouncementRepository) FindByAnnouncementID(ctx context.Context, id string) (*marketing.Announcement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketing.Announcement), args.Error(1)
}

func (m *MockAnnouncementRepository) MaxAnnouncementNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAnnouncementRepository) Create(ctx context.Context, a *marketing.Announcement) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAnnouncementRepository) Save(ctx context.Context, a *marketing.Announcement) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAnnouncementRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockPromoRepository struct {
	mock.Mock
}

func (m *MockPromoRepository) FindAll(ctx context.Context, branchID string) ([]marketing.Promo, error) {
	args := m.Called(ctx, branchID)
	return args.Get(0).([]marketing.Promo), args.Error(1)
}

func (m *MockPromoRepository) FindByPromoID(ctx context.Context, id string) (*marketing.Promo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketing.Promo), args.Error(1)
}

func (m *MockPromoRepository) FindActiveOn(ctx context.Context, day time.Time, branchID string) ([]marketing.Promo, error) {
	args := m.Called(ctx, day, branchID)
	return args.Get(0).([]marketing.Promo), args.Error(1)
}

func (m *MockPromoRepository) Save(ctx context.Context, p *marketing.Promo) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPromoRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type fixedSequences struct{ n int64 }

func (s *fixedSequences) Next(context.Context, string) (int64, error) {
	s.n++
	return s.n, nil
}

const smval = "SMVAL-B-NCR"

func newService(anns *MockAnnouncementRepository, promos *MockPromoRepository) *MarketingService {
	return NewMarketingService(anns, promos, &fixedSequences{}, time.UTC, zap.NewNop())
}

func TestCreateAnnouncement_RetriesOnIDCollision(t *testing.T) {
	anns := new(MockAnnouncementRepository)
	anns.On("MaxAnnouncementNumber", mock.Anything).Return(int64(4), nil).Once()
	anns.On("MaxAnnouncementNumber", mock.Anything).Return(int64(5), nil).Once()
	anns.On("Create", mock.Anything, mock.MatchedBy(func(a *marketing.Announcement) bool {
		return a.AnnouncementID == "ANN-5"
	})).Return(shared.ErrAlreadyExists).Once()
	anns.On("Create", mock.Anything, mock.MatchedBy(func(a *marketing.Announcement) bool {
		return a.AnnouncementID == "ANN-6"
	})).Return(nil).Once()

	resp, err := newService(anns, new(MockPromoRepository)).CreateAnnouncement(context.Background(),
		shared.BranchScope(smval), AnnouncementRequest{Title: "Closed on Monday", Description: "Inventory day"})
	require.NoError(t, err)
	assert.Equal(t, "ANN-6", resp.AnnouncementID)
	require.NotNil(t, resp.BranchID)
	assert.Equal(t, smval, *resp.BranchID)
	anns.AssertExpectations(t)
}

func TestCreateAnnouncement_GivesUpAfterThreeCollisions(t *testing.T) {
	anns := new(MockAnnouncementRepository)
	anns.On("MaxAnnouncementNumber", mock.Anything).Return(int64(1), nil)
	anns.On("Create", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists)

	_, err := newService(anns, new(MockPromoRepository)).CreateAnnouncement(context.Background(),
		shared.AllBranches, AnnouncementRequest{Title: "Holiday hours", Description: "Open 10 to 6"})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	anns.AssertNumberOfCalls(t, "Create", 3)
}

func TestCreateAnnouncement_ValidationErrorIsNotRetried(t *testing.T) {
	anns := new(MockAnnouncementRepository)
	anns.On("MaxAnnouncementNumber", mock.Anything).Return(int64(0), nil)

	_, err := newService(anns, new(MockPromoRepository)).CreateAnnouncement(context.Background(),
		shared.AllBranches, AnnouncementRequest{Title: "  ", Description: "x"})
	require.Error(t, err)
	anns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDeleteAnnouncement_ShopWideNeedsSuperadmin(t *testing.T) {
	shopWide, err := marketing.NewAnnouncement("ANN-1", "Welcome", "New branch opening", "")
	require.NoError(t, err)

	anns := new(MockAnnouncementRepository)
	anns.On("FindByAnnouncementID", mock.Anything, "ANN-1").Return(shopWide, nil)
	svc := newService(anns, new(MockPromoRepository))

	err = svc.DeleteAnnouncement(context.Background(), shared.BranchScope(smval), "ANN-1")
	assert.ErrorIs(t, err, shared.ErrForbidden)
	anns.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	anns.On("Delete", mock.Anything, "ANN-1").Return(nil).Once()
	require.NoError(t, svc.DeleteAnnouncement(context.Background(), shared.AllBranches, "ANN-1"))
	anns.AssertExpectations(t)
}

func TestListAnnouncements_ScopedToOwnBranch(t *testing.T) {
	anns := new(MockAnnouncementRepository)
	svc := newService(anns, new(MockPromoRepository))

	_, err := svc.ListAnnouncements(context.Background(), shared.BranchScope(smval), "VAL-B-NCR")
	assert.ErrorIs(t, err, shared.ErrForbidden)

	anns.On("FindAll", mock.Anything, smval).Return([]marketing.Announcement{}, nil).Once()
	list, err := svc.ListAnnouncements(context.Background(), shared.BranchScope(smval), "")
	require.NoError(t, err)
	assert.Empty(t, list)
	anns.AssertExpectations(t)
}

func TestCreatePromo(t *testing.T) {
	promos := new(MockPromoRepository)
	promos.On("Save", mock.Anything, mock.AnythingOfType("*marketing.Promo")).Return(nil).Once()

	resp, err := newService(new(MockAnnouncementRepository), promos).CreatePromo(context.Background(),
		shared.BranchScope(smval), PromoRequest{
			Title: "Cleaning week",
			Dates: []string{"2026-10-05", "2026-10-01", "2026-10-03", "2026-10-01"},
		})
	require.NoError(t, err)
	assert.Equal(t, "PROMO-001", resp.PromoID)
	assert.Equal(t, smval, resp.BranchID)
	assert.Equal(t, []string{"2026-10-01", "2026-10-03", "2026-10-05"}, resp.Dates)
	assert.Equal(t, "Oct 01 - Oct 05, 2026", resp.Duration)
	promos.AssertExpectations(t)
}

func TestCreatePromo_RejectsBadInput(t *testing.T) {
	promos := new(MockPromoRepository)
	svc := newService(new(MockAnnouncementRepository), promos)

	_, err := svc.CreatePromo(context.Background(), shared.BranchScope(smval),
		PromoRequest{Title: "Sale", Dates: []string{"10/01/2026"}})
	require.Error(t, err)

	_, err = svc.CreatePromo(context.Background(), shared.AllBranches,
		PromoRequest{Title: "Sale", Dates: []string{"2026-10-01"}})
	require.Error(t, err, "superadmin must name a branch")

	promos.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestListActivePromos_UsesRequestedDay(t *testing.T) {
	promos := new(MockPromoRepository)
	want := time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC)
	p, err := marketing.NewPromo(smval, "PROMO-001", marketing.PromoDetails{Title: "Cleaning week", Dates: []time.Time{want}})
	require.NoError(t, err)
	promos.On("FindActiveOn", mock.Anything, want, smval).Return([]marketing.Promo{*p}, nil).Once()

	list, err := newService(new(MockAnnouncementRepository), promos).ListActivePromos(context.Background(),
		shared.BranchScope(smval), "2026-10-03", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Oct 03, 2026", list[0].Duration)
	promos.AssertExpectations(t)

	_, err = newService(new(MockAnnouncementRepository), promos).ListActivePromos(context.Background(),
		shared.BranchScope(smval), "tomorrow", "")
	require.Error(t, err)
}

func TestUpdatePromo_OtherBranchIsForbidden(t *testing.T) {
	p, err := marketing.NewPromo("VAL-B-NCR", "PROMO-002", marketing.PromoDetails{
		Title: "Reglue deal", Dates: []time.Time{time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)
	promos := new(MockPromoRepository)
	promos.On("FindByPromoID", mock.Anything, "PROMO-002").Return(p, nil)

	_, err = newService(new(MockAnnouncementRepository), promos).UpdatePromo(context.Background(),
		shared.BranchScope(smval), "PROMO-002", PromoRequest{Title: "Mine now", Dates: []string{"2026-11-02"}})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	promos.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

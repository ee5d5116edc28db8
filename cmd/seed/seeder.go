package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	analyticsapp "github.com/swas/backend/internal/application/analytics"
	branchapp "github.com/swas/backend/internal/application/branch"
	catalogapp "github.com/swas/backend/internal/application/catalog"
	identityapp "github.com/swas/backend/internal/application/identity"
	marketingapp "github.com/swas/backend/internal/application/marketing"
	orderapp "github.com/swas/backend/internal/application/order"
	schedulingapp "github.com/swas/backend/internal/application/scheduling"
	"github.com/swas/backend/internal/domain/catalog"
	"github.com/swas/backend/internal/domain/identity"
	"github.com/swas/backend/internal/domain/order"
	"github.com/swas/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const seedActor = "seed"

// branchSeed is one branch a fresh installation starts with
type branchSeed struct {
	Number   int
	Code     string
	Name     string
	Location string
	Type     string
}

var defaultBranches = []branchSeed{
	{1, "HUB", "Processing Hub", "Quezon City", "H"},
	{2, "SMVAL", "SM Valenzuela", "Valenzuela City", "B"},
	{3, "SMGRA", "SM Grand Central", "Caloocan City", "B"},
	{4, "SMMKT", "SM Makati", "Makati City", "B"},
}

// Options control how much sample data is generated
type Options struct {
	SuperadminID       string
	SuperadminPassword string
	StaffPassword      string
	Customers          int
	Seed               uint64
	SkipSamples        bool
}

// Seeder writes reference and sample data through the application services
type Seeder struct {
	Services    catalog.ServiceRepository
	Branches    *branchapp.BranchService
	Accounts    *identityapp.UserService
	Orders      *orderapp.OrderService
	Scheduling  *schedulingapp.SchedulingService
	Marketing   *marketingapp.MarketingService
	Analytics   *analyticsapp.AnalyticsService
	Location    *time.Location
	Logger      *zap.Logger
	faker       *gofakeit.Faker
	serviceIDs  []string
	additionals []string
}

// Summary counts what a run created
type Summary struct {
	Services     int
	Branches     int
	Users        int
	Transactions int
	Payments     int
}

// Run seeds the catalog, branches and accounts, then sample activity unless skipped
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	s.faker = gofakeit.New(opts.Seed)
	sum := &Summary{}

	n, err := s.seedServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed services: %w", err)
	}
	sum.Services = n

	branchIDs, created, err := s.seedBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed branches: %w", err)
	}
	sum.Branches = created

	users, err := s.seedUsers(ctx, opts, branchIDs)
	if err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	sum.Users = users

	if opts.SkipSamples {
		return sum, nil
	}

	counterBranches := branchIDs[1:]
	for i := 0; i < opts.Customers; i++ {
		branchID := counterBranches[i%len(counterBranches)]
		paid, err := s.seedServiceRequest(ctx, branchID)
		if err != nil {
			return nil, fmt.Errorf("seed service request %d: %w", i+1, err)
		}
		sum.Transactions++
		if paid {
			sum.Payments++
		}
	}

	if err := s.seedCalendar(ctx, counterBranches[0]); err != nil {
		return nil, fmt.Errorf("seed calendar: %w", err)
	}

	if s.Analytics != nil {
		if _, err := s.Analytics.RefreshRollups(ctx); err != nil {
			return nil, fmt.Errorf("refresh rollups: %w", err)
		}
	}
	return sum, nil
}

func (s *Seeder) seedServices(ctx context.Context) (int, error) {
	created := 0
	for _, svc := range catalog.DefaultServices() {
		switch svc.Type {
		case catalog.ServiceTypeService:
			s.serviceIDs = append(s.serviceIDs, svc.ServiceID)
		default:
			s.additionals = append(s.additionals, svc.ServiceID)
		}

		_, err := s.Services.FindByServiceID(ctx, svc.ServiceID)
		if err == nil {
			continue
		}
		if !shared.IsNotFound(err) {
			return created, err
		}
		svc := svc
		if err := s.Services.Save(ctx, &svc); err != nil {
			return created, err
		}
		created++
	}
	s.Logger.Info("Services seeded", zap.Int("created", created))
	return created, nil
}

// seedBranches returns the ids of every default branch, hub first
func (s *Seeder) seedBranches(ctx context.Context) ([]string, int, error) {
	ids := make([]string, 0, len(defaultBranches))
	created := 0
	for _, b := range defaultBranches {
		resp, err := s.Branches.Create(ctx, shared.AllBranches, branchapp.CreateBranchRequest{
			BranchNumber: b.Number,
			BranchCode:   b.Code,
			BranchName:   b.Name,
			Location:     b.Location,
			Type:         b.Type,
		})
		switch {
		case err == nil:
			ids = append(ids, resp.BranchID)
			created++
		case errors.Is(err, shared.ErrAlreadyExists):
			ids = append(ids, fmt.Sprintf("%s-%s-NCR", b.Code, b.Type))
		default:
			return nil, created, err
		}
	}
	s.Logger.Info("Branches seeded", zap.Int("created", created), zap.Strings("branch_ids", ids))
	return ids, created, nil
}

func (s *Seeder) seedUsers(ctx context.Context, opts Options, branchIDs []string) (int, error) {
	hub := branchIDs[0]
	actor := identityapp.Actor{UserID: seedActor, Scope: shared.AllBranches}
	inputs := []identityapp.CreateUserInput{{
		UserID:   opts.SuperadminID,
		BranchID: hub,
		Position: identity.PositionSuperadmin,
		Password: opts.SuperadminPassword,
	}}
	for _, id := range branchIDs[1:] {
		code := strings.ToLower(strings.SplitN(id, "-", 2)[0])
		inputs = append(inputs,
			identityapp.CreateUserInput{UserID: code + ".admin", BranchID: id, Position: identity.PositionAdmin, Password: opts.StaffPassword},
			identityapp.CreateUserInput{UserID: code + ".staff", BranchID: id, Position: identity.PositionStaff, Password: opts.StaffPassword},
		)
	}

	created := 0
	for _, in := range inputs {
		if _, err := s.Accounts.Create(ctx, actor, in); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				continue
			}
			return created, fmt.Errorf("user %s: %w", in.UserID, err)
		}
		created++
	}
	s.Logger.Info("Users seeded", zap.Int("created", created))
	return created, nil
}

// seedServiceRequest takes in one customer's shoes, maybe settles the bill and
// moves the pairs some way along the workflow. It reports whether a payment was made.
func (s *Seeder) seedServiceRequest(ctx context.Context, branchID string) (bool, error) {
	actor := orderapp.Actor{UserID: seedActor, Scope: shared.AllBranches}

	pairs := s.faker.Number(1, 3)
	items := make([]orderapp.LineItemInput, 0, pairs)
	for i := 0; i < pairs; i++ {
		items = append(items, s.fakeLineItem())
	}

	resp, err := s.Orders.CreateServiceRequest(ctx, actor, orderapp.CreateServiceRequestInput{
		BranchID:  branchID,
		Customer:  fakeCustomer(s.faker, s.Location),
		LineItems: items,
	})
	if err != nil {
		return false, err
	}

	paid := false
	if s.faker.Number(1, 10) <= 7 {
		due := resp.Transaction.Balance
		if _, err := s.Orders.ApplyPayment(ctx, actor, resp.Transaction.TransactionID, orderapp.ApplyPaymentRequest{
			DueNow:       due,
			CustomerPaid: roundUpToHundred(due),
			PaymentMode:  fakePaymentMode(s.faker),
		}, ""); err != nil {
			return false, err
		}
		paid = true
	}

	// Up to Ready for Pickup; release stays a counter action
	statuses := order.Statuses()
	for _, li := range resp.LineItems {
		steps := s.faker.Number(0, len(statuses)-2)
		for step := 1; step <= steps; step++ {
			if _, err := s.Orders.UpdateLineItemStatus(ctx, actor, orderapp.UpdateStatusRequest{
				LineItemIDs: []string{li.LineItemID},
				NewStatus:   statuses[step].String(),
			}); err != nil {
				return paid, err
			}
		}
	}
	return paid, nil
}

func (s *Seeder) seedCalendar(ctx context.Context, branchID string) error {
	scope := shared.AllBranches
	today := time.Now().In(s.Location)

	promoDates := make([]string, 0, 3)
	for d := 0; d < 3; d++ {
		promoDates = append(promoDates, today.AddDate(0, 0, 7+d).Format("2006-01-02"))
	}
	if _, err := s.Marketing.CreatePromo(ctx, scope, marketingapp.PromoRequest{
		Title:       "Weekend Cleaning Promo",
		Description: s.faker.Sentence(8),
		Dates:       promoDates,
		BranchID:    branchID,
	}); err != nil {
		return err
	}

	if _, err := s.Marketing.CreateAnnouncement(ctx, scope, marketingapp.AnnouncementRequest{
		Title:       "Holiday schedule",
		Description: s.faker.Sentence(12),
	}); err != nil {
		return err
	}

	_, err := s.Scheduling.CreateUnavailability(ctx, scope, schedulingapp.CreateUnavailabilityRequest{
		BranchID:        branchID,
		DateUnavailable: today.AddDate(0, 0, 14).Format("2006-01-02"),
		Type:            "Full Day",
		Note:            "Mall maintenance",
	})
	return err
}

func (s *Seeder) fakeLineItem() orderapp.LineItemInput {
	lines := []catalogapp.ServiceLineRequest{{
		ServiceID: s.serviceIDs[s.faker.Number(0, len(s.serviceIDs)-1)],
		Quantity:  1,
	}}
	if s.faker.Bool() && len(s.additionals) > 0 {
		lines = append(lines, catalogapp.ServiceLineRequest{
			ServiceID: s.additionals[s.faker.Number(0, len(s.additionals)-1)],
			Quantity:  s.faker.Number(1, 2),
		})
	}
	priority := catalog.PriorityNormal
	if s.faker.Number(1, 5) == 1 {
		priority = catalog.PriorityRush
	}
	return orderapp.LineItemInput{
		Priority: string(priority),
		Services: lines,
		Shoes:    fakeShoes(s.faker),
	}
}

var shoeBrands = []string{"Nike", "Adidas", "New Balance", "Converse", "Vans", "Asics", "Puma"}
var shoeModels = []string{"Air Force 1", "Samba", "550", "Chuck 70", "Old Skool", "Gel-Lyte III", "Suede"}
var paymentModes = []order.PaymentMode{order.PaymentModeCash, order.PaymentModeCash, order.PaymentModeGCash, order.PaymentModeCard}

func fakeShoes(f *gofakeit.Faker) string {
	return shoeBrands[f.Number(0, len(shoeBrands)-1)] + " " +
		shoeModels[f.Number(0, len(shoeModels)-1)] + " (" + f.Color() + ")"
}

func fakePaymentMode(f *gofakeit.Faker) string {
	return string(paymentModes[f.Number(0, len(paymentModes)-1)])
}

// fakeCustomer returns an adult customer born between 1960 and 2006
func fakeCustomer(f *gofakeit.Faker, loc *time.Location) orderapp.CustomerInput {
	born := f.DateRange(
		time.Date(1960, time.January, 1, 0, 0, 0, 0, loc),
		time.Date(2006, time.December, 31, 0, 0, 0, 0, loc),
	)
	return orderapp.CustomerInput{
		CustName:    f.FirstName() + " " + f.LastName(),
		CustBdate:   born.Format("2006-01-02"),
		CustAddress: f.Street() + ", " + f.City(),
		CustEmail:   strings.ToLower(f.Email()),
		CustContact: "09" + f.Numerify("#########"),
	}
}

// roundUpToHundred is what a customer hands over for amount
func roundUpToHundred(amount decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return amount.Div(hundred).Ceil().Mul(hundred)
}

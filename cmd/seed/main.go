// Command seed loads the default catalog, branches and accounts, plus
// generated sample activity for local development.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	analyticsapp "github.com/swas/backend/internal/application/analytics"
	branchapp "github.com/swas/backend/internal/application/branch"
	identityapp "github.com/swas/backend/internal/application/identity"
	marketingapp "github.com/swas/backend/internal/application/marketing"
	orderapp "github.com/swas/backend/internal/application/order"
	schedulingapp "github.com/swas/backend/internal/application/scheduling"
	"github.com/swas/backend/internal/infrastructure/auth"
	"github.com/swas/backend/internal/infrastructure/config"
	"github.com/swas/backend/internal/infrastructure/event"
	"github.com/swas/backend/internal/infrastructure/logger"
	"github.com/swas/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

var opts = Options{}

var rootCmd = &cobra.Command{
	Use:          "seed",
	Short:        "Seed the SWAS database",
	SilenceUsage: true,
	Long: `Creates the default service catalog, the hub and three counter branches,
a superadmin plus one admin and one staff account per branch. Unless
--skip-samples is set it then generates customers with service requests,
payments, status history, a promo, an announcement and a closed day, and
refreshes the analytics rollups.

Existing catalog entries, branches and users are left untouched.`,
	RunE: run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&opts.SuperadminID, "superadmin", "superadmin", "Superadmin user id")
	f.StringVar(&opts.SuperadminPassword, "superadmin-password", "ChangeMe123", "Superadmin password")
	f.StringVar(&opts.StaffPassword, "staff-password", "Welcome123", "Password for generated admin and staff accounts")
	f.IntVar(&opts.Customers, "customers", 25, "Number of sample service requests")
	f.Uint64Var(&opts.Seed, "faker-seed", 0, "Random seed for sample data (0 picks one)")
	f.BoolVar(&opts.SkipSamples, "skip-samples", false, "Only seed reference data")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database,
		logger.NewGormLogger(log, logger.MapGormLogLevel("warn")))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if cfg.Database.AutoMigrate || cfg.Database.IsSQLite() {
		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	ctx := cmd.Context()
	bus := event.NewInMemoryEventBus(log)
	loc := cfg.App.Location()

	branchRepo := persistence.NewGormBranchRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	serviceRepo := persistence.NewGormServiceRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	sequences := persistence.NewGormSequenceGenerator(db.DB)

	s := &Seeder{
		Services: serviceRepo,
		Branches: branchapp.NewBranchService(branchRepo, bus, log),
		Accounts: identityapp.NewUserService(userRepo, branchRepo, auth.NewInMemoryTokenBlacklist(), nil, bus, log),
		Orders: orderapp.NewOrderService(orderapp.Dependencies{
			Scope:           persistence.NewGormTransactionScope(db.DB),
			TransactionRepo: persistence.NewGormTransactionRepository(db.DB),
			LineItemRepo:    persistence.NewGormLineItemRepository(db.DB),
			CustomerRepo:    customerRepo,
			BranchRepo:      branchRepo,
			ServiceRepo:     serviceRepo,
			Publisher:       bus,
			ShopName:        cfg.Printing.ShopName,
			Location:        loc,
			Logger:          log,
		}),
		Scheduling: schedulingapp.NewSchedulingService(
			persistence.NewGormAppointmentRepository(db.DB),
			persistence.NewGormUnavailabilityRepository(db.DB),
			customerRepo, sequences, bus, log),
		Marketing: marketingapp.NewMarketingService(
			persistence.NewGormAnnouncementRepository(db.DB),
			persistence.NewGormPromoRepository(db.DB),
			sequences, loc, log),
		Analytics: analyticsapp.NewAnalyticsService(
			persistence.NewGormAnalyticsRepository(db.DB), serviceRepo,
			analyticsapp.Config{ForecastWindow: cfg.Scheduler.ForecastWindow, ForecastHorizon: cfg.Scheduler.ForecastHorizon, Location: loc},
			log),
		Location: loc,
		Logger:   log,
	}

	sum, err := s.Run(ctx, opts)
	if err != nil {
		log.Error("Seeding failed", zap.Error(err))
		return err
	}
	log.Info("Seeding complete",
		zap.Int("services", sum.Services),
		zap.Int("branches", sum.Branches),
		zap.Int("users", sum.Users),
		zap.Int("transactions", sum.Transactions),
		zap.Int("payments", sum.Payments),
	)
	return nil
}

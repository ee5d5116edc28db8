package customer

import (
	"context"
	"time"

	"github.com/swas/backend/internal/domain/shared"
)

// CustomerRepository defines persistence for customers
type CustomerRepository interface {
	FindByCustID(ctx context.Context, custID string) (*Customer, error)
	// FindByNameAndBirthdate matches on the normalized name
	FindByNameAndBirthdate(ctx context.Context, name string, bdate *time.Time) (*Customer, error)
	// FindByCustIDs returns the customers with the given ids; missing ids are skipped
	FindByCustIDs(ctx context.Context, custIDs []string) ([]Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, c *Customer) error
	SaveWithLock(ctx context.Context, c *Customer) error
	DeleteByCustID(ctx context.Context, custID string) error
}

package branch

import "context"

// BranchRepository defines persistence for branches
type BranchRepository interface {
	// FindAll returns every branch ordered by branch number
	FindAll(ctx context.Context) ([]Branch, error)
	FindByBranchID(ctx context.Context, branchID string) (*Branch, error)
	ExistsByBranchID(ctx context.Context, branchID string) (bool, error)
	ExistsByNumber(ctx context.Context, number int) (bool, error)
	Save(ctx context.Context, b *Branch) error
}

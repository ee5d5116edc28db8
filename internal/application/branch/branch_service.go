package branch

import (
	"context"

	"github.com/swas/backend/internal/domain/branch"
	"github.com/swas/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// BranchService handles branch registration and lookup
type BranchService struct {
	branchRepo branch.BranchRepository
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewBranchService creates a new BranchService
func NewBranchService(branchRepo branch.BranchRepository, publisher shared.EventPublisher, logger *zap.Logger) *BranchService {
	return &BranchService{
		branchRepo: branchRepo,
		publisher:  publisher,
		logger:     logger,
	}
}

// List returns every branch ordered by branch number
func (s *BranchService) List(ctx context.Context) ([]BranchResponse, error) {
	branches, err := s.branchRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]BranchResponse, len(branches))
	for i := range branches {
		out[i] = ToBranchResponse(&branches[i])
	}
	return out, nil
}

// Get returns a branch by its business id
func (s *BranchService) Get(ctx context.Context, branchID string) (*BranchResponse, error) {
	b, err := s.branchRepo.FindByBranchID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	resp := ToBranchResponse(b)
	return &resp, nil
}

// Create registers a branch. Only a superadmin may do this.
func (s *BranchService) Create(ctx context.Context, scope shared.Scope, req CreateBranchRequest) (*BranchResponse, error) {
	if !scope.Superadmin {
		return nil, shared.ErrForbidden
	}

	b, err := branch.NewBranch(req.BranchID, req.BranchNumber, req.BranchCode, req.BranchName, req.Location, req.Region, branch.BranchType(req.Type))
	if err != nil {
		return nil, err
	}

	exists, err := s.branchRepo.ExistsByBranchID(ctx, b.BranchID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Branch "+b.BranchID+" already exists")
	}
	exists, err = s.branchRepo.ExistsByNumber(ctx, b.BranchNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Branch number is already in use")
	}

	if err := s.branchRepo.Save(ctx, b); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, b); err != nil {
		s.logger.Warn("Failed to publish branch events", zap.Error(err))
	}

	s.logger.Info("Branch created", zap.String("branch_id", b.BranchID), zap.Int("branch_number", b.BranchNumber))
	resp := ToBranchResponse(b)
	return &resp, nil
}

// Update changes the name, location and type of a branch
func (s *BranchService) Update(ctx context.Context, scope shared.Scope, branchID string, req UpdateBranchRequest) (*BranchResponse, error) {
	if !scope.Superadmin {
		return nil, shared.ErrForbidden
	}

	b, err := s.branchRepo.FindByBranchID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if err := b.Update(req.BranchName, req.Location, branch.BranchType(req.Type)); err != nil {
		return nil, err
	}
	if err := s.branchRepo.Save(ctx, b); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, b); err != nil {
		s.logger.Warn("Failed to publish branch events", zap.Error(err))
	}

	resp := ToBranchResponse(b)
	return &resp, nil
}

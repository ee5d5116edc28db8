package identity

import (
	"context"
	"time"

	"github.com/swas/backend/internal/domain/branch"
	"github.com/swas/backend/internal/domain/identity"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Actor is the authenticated caller of a user-management operation
type Actor struct {
	UserID string
	Scope  shared.Scope
}

// UserService handles account management. Every operation is superadmin only.
type UserService struct {
	userRepo   identity.UserRepository
	branchRepo branch.BranchRepository
	blacklist  auth.TokenBlacklist
	revokeTTL  time.Duration
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	branchRepo branch.BranchRepository,
	blacklist auth.TokenBlacklist,
	jwtService *auth.JWTService,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *UserService {
	s := &UserService{
		userRepo:   userRepo,
		branchRepo: branchRepo,
		blacklist:  blacklist,
		publisher:  publisher,
		logger:     logger,
	}
	// Revocation must outlive every refresh token already handed out
	if jwtService != nil {
		s.revokeTTL = jwtService.GetRefreshTokenExpiration()
	}
	return s
}

// List returns the users of branchID, or every user when branchID is empty
func (s *UserService) List(ctx context.Context, actor Actor, branchID string) ([]UserDTO, error) {
	if !actor.Scope.Superadmin {
		return nil, shared.ErrForbidden
	}
	users, err := s.userRepo.FindAll(ctx, branchID)
	if err != nil {
		return nil, err
	}
	out := make([]UserDTO, len(users))
	for i := range users {
		out[i] = ToUserDTO(&users[i])
	}
	return out, nil
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, actor Actor, input CreateUserInput) (*UserDTO, error) {
	if !actor.Scope.Superadmin {
		return nil, shared.ErrForbidden
	}

	if _, err := s.branchRepo.FindByBranchID(ctx, input.BranchID); err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("INVALID_INPUT", "Branch "+input.BranchID+" does not exist")
		}
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "User id is already taken")
	}

	number, err := s.userRepo.NextUserNumber(ctx)
	if err != nil {
		return nil, err
	}

	user, err := identity.NewUser(input.BranchID, input.UserID, number, input.Position, input.Password)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.publisher, user); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}

	s.logger.Info("User created",
		zap.String("user_id", user.UserID),
		zap.String("branch_id", user.BranchID),
		zap.String("created_by", actor.UserID))

	dto := ToUserDTO(user)
	return &dto, nil
}

// Delete removes a user and revokes their tokens. A user can never delete themselves.
func (s *UserService) Delete(ctx context.Context, actor Actor, userID string) error {
	if !actor.Scope.Superadmin {
		return shared.ErrForbidden
	}
	if userID == actor.UserID {
		return shared.NewDomainError("INVALID_STATE", "You cannot delete your own account")
	}

	user, err := s.userRepo.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	if s.blacklist != nil {
		if err := s.blacklist.RevokeUser(ctx, userID, s.revokeTTL); err != nil {
			s.logger.Warn("Failed to revoke tokens of deleted user", zap.String("user_id", userID), zap.Error(err))
		}
	}

	user.AddDomainEvent(identity.NewUserDeletedEvent(user))
	if err := shared.PublishAndClear(ctx, s.publisher, user); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}

	s.logger.Info("User deleted", zap.String("user_id", userID), zap.String("deleted_by", actor.UserID))
	return nil
}

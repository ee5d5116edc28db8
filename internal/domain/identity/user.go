package identity

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/swas/backend/internal/domain/branch"
	"github.com/swas/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Position is a user's role in the shop
type Position string

const (
	PositionSuperadmin Position = "superadmin"
	PositionAdmin      Position = "admin"
	PositionStaff      Position = "staff"
)

// IsValid reports whether p is a known position
func (p Position) IsValid() bool {
	switch p {
	case PositionSuperadmin, PositionAdmin, PositionStaff:
		return true
	}
	return false
}

// Password cost for bcrypt
const bcryptCost = 12

var (
	userIDRegex   = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	hasLetterExpr = regexp.MustCompile(`[a-zA-Z]`)
	hasNumberExpr = regexp.MustCompile(`[0-9]`)
)

// User is a staff account that logs into the backoffice
type User struct {
	shared.BranchAggregateRoot
	UserID         string
	UserNumber     int
	Position       Position
	PasswordHash   string
	LastLoginAt    *time.Time
	LastLoginIP    string
	FailedAttempts int
	LockedUntil    *time.Time
}

// NewUser creates a user with a hashed password
func NewUser(branchID, userID string, userNumber int, position Position, password string) (*User, error) {
	userID = strings.TrimSpace(userID)
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if !position.IsValid() {
		return nil, shared.NewDomainError("INVALID_POSITION", "Position must be superadmin, admin or staff")
	}
	if strings.TrimSpace(branchID) == "" {
		return nil, shared.NewDomainError("INVALID_BRANCH_ID", "Branch id cannot be empty")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		UserID:              userID,
		UserNumber:          userNumber,
		Position:            position,
		PasswordHash:        passwordHash,
	}
	user.AddDomainEvent(NewUserCreatedEvent(user))
	return user, nil
}

// IsSuperadmin reports whether the user sees every branch
func (u *User) IsSuperadmin() bool {
	return u.Position == PositionSuperadmin || u.UserID == branch.SuperadminUserID
}

// CanManageUsers reports whether the user may create or delete accounts
func (u *User) CanManageUsers() bool {
	return u.IsSuperadmin()
}

// SetPassword sets a new password (admin reset, no old password check)
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// absentUserHash is a bcrypt hash at the account cost that no password
// matches, built on first use
var absentUserHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("swas:absent-user"), bcryptCost)
	if err != nil {
		panic(err)
	}
	return hash
})

// VerifyAbsentPassword spends the same bcrypt work as VerifyPassword for a
// login that matched no usable account. It always reports false.
func VerifyAbsentPassword(password string) bool {
	_ = bcrypt.CompareHashAndPassword(absentUserHash(), []byte(password))
	return false
}

// RecordLoginSuccess records a successful login
func (u *User) RecordLoginSuccess(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = now
	u.IncrementVersion()
}

// RecordLoginFailure records a failed login attempt
// Returns true if the account is now locked
func (u *User) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	u.FailedAttempts++
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	if maxAttempts > 0 && u.FailedAttempts >= maxAttempts {
		until := time.Now().Add(lockDuration)
		u.LockedUntil = &until
		return true
	}
	return false
}

// IsLocked returns true while a lockout is in effect
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

func validateUserID(userID string) error {
	if userID == "" {
		return shared.NewDomainError("INVALID_USER_ID", "User id cannot be empty")
	}
	if len(userID) < 3 {
		return shared.NewDomainError("INVALID_USER_ID", "User id must be at least 3 characters")
	}
	if len(userID) > 100 {
		return shared.NewDomainError("INVALID_USER_ID", "User id cannot exceed 100 characters")
	}
	if !userIDRegex.MatchString(userID) {
		return shared.NewDomainError("INVALID_USER_ID", "User id can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !hasLetterExpr.MatchString(password) || !hasNumberExpr.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

package identity

import "context"

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByUserID finds a user by login name
	FindByUserID(ctx context.Context, userID string) (*User, error)

	// FindAll lists users of branchID, or every user when branchID is empty
	FindAll(ctx context.Context, branchID string) ([]User, error)

	// ExistsByUserID checks if a login name is taken
	ExistsByUserID(ctx context.Context, userID string) (bool, error)

	// NextUserNumber returns the next free user number
	NextUserNumber(ctx context.Context) (int, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *User) error

	// Delete removes a user by login name
	Delete(ctx context.Context, userID string) error
}

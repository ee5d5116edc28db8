package identity

import "github.com/swas/backend/internal/domain/shared"

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserCreated = "UserCreated"
	EventTypeUserDeleted = "UserDeleted"
)

// UserEvent is published when an account is created or removed
type UserEvent struct {
	shared.BaseDomainEvent
	UserID   string   `json:"user_id"`
	Position Position `json:"position"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(user *User) *UserEvent {
	return newUserEvent(EventTypeUserCreated, user)
}

// NewUserDeletedEvent creates a new UserDeletedEvent
func NewUserDeletedEvent(user *User) *UserEvent {
	return newUserEvent(EventTypeUserDeleted, user)
}

func newUserEvent(eventType string, user *User) *UserEvent {
	return &UserEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeUser, user.ID, user.BranchID),
		UserID:          user.UserID,
		Position:        user.Position,
	}
}

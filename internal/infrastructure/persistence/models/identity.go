package models

import (
	"time"

	"github.com/swas/backend/internal/domain/identity"
)

// UserModel is the persistence model for staff accounts
type UserModel struct {
	BranchAggregateModel
	UserID         string            `gorm:"type:varchar(100);not null;uniqueIndex"`
	UserNumber     int               `gorm:"not null;index"`
	Position       identity.Position `gorm:"type:varchar(20);not null"`
	PasswordHash   string            `gorm:"type:varchar(255);not null"`
	LastLoginAt    *time.Time
	LastLoginIP    string `gorm:"type:varchar(45)"`
	FailedAttempts int    `gorm:"not null;default:0"`
	LockedUntil    *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts to the domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BranchAggregateRoot: m.ToBranchAggregateRoot(),
		UserID:              m.UserID,
		UserNumber:          m.UserNumber,
		Position:            m.Position,
		PasswordHash:        m.PasswordHash,
		LastLoginAt:         m.LastLoginAt,
		LastLoginIP:         m.LastLoginIP,
		FailedAttempts:      m.FailedAttempts,
		LockedUntil:         m.LockedUntil,
	}
}

// UserModelFromDomain creates a persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		UserID:         u.UserID,
		UserNumber:     u.UserNumber,
		Position:       u.Position,
		PasswordHash:   u.PasswordHash,
		LastLoginAt:    u.LastLoginAt,
		LastLoginIP:    u.LastLoginIP,
		FailedAttempts: u.FailedAttempts,
		LockedUntil:    u.LockedUntil,
	}
	m.FromDomainBranchAggregateRoot(u.BranchAggregateRoot)
	return m
}

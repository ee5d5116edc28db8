// Package models holds the GORM persistence models and their conversions to
// and from domain aggregates.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/swas/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel extends BaseModel with version for optimistic locking
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// ToAggregateRoot rebuilds the domain aggregate base
func (m *AggregateModel) ToAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Version: m.Version,
	}
}

// BranchAggregateModel is an aggregate owned by one branch
type BranchAggregateModel struct {
	AggregateModel
	BranchID string `gorm:"type:varchar(32);not null;index"`
}

// FromDomainBranchAggregateRoot populates BranchAggregateModel from the domain
func (m *BranchAggregateModel) FromDomainBranchAggregateRoot(b shared.BranchAggregateRoot) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.BranchID = b.BranchID
}

// ToBranchAggregateRoot rebuilds the domain branch aggregate base
func (m *BranchAggregateModel) ToBranchAggregateRoot() shared.BranchAggregateRoot {
	return shared.BranchAggregateRoot{
		BaseAggregateRoot: m.ToAggregateRoot(),
		BranchID:          m.BranchID,
	}
}

// SequenceModel is a named counter used for business ids
type SequenceModel struct {
	Key       string    `gorm:"type:varchar(100);primaryKey"`
	Value     int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SequenceModel) TableName() string {
	return "sequences"
}

package models

import (
	"github.com/swas/backend/internal/domain/branch"
)

// BranchModel is the persistence model for branches
type BranchModel struct {
	AggregateModel
	BranchID     string            `gorm:"type:varchar(32);not null;uniqueIndex"`
	BranchNumber int               `gorm:"not null;uniqueIndex"`
	BranchCode   string            `gorm:"type:varchar(10);not null"`
	BranchName   string            `gorm:"type:varchar(100);not null"`
	Location     string            `gorm:"type:varchar(200)"`
	Type         branch.BranchType `gorm:"type:varchar(1);not null"`
}

// TableName returns the table name for GORM
func (BranchModel) TableName() string {
	return "branches"
}

// ToDomain converts to the domain Branch
func (m *BranchModel) ToDomain() *branch.Branch {
	return &branch.Branch{
		BaseAggregateRoot: m.ToAggregateRoot(),
		BranchID:          m.BranchID,
		BranchNumber:      m.BranchNumber,
		BranchCode:        m.BranchCode,
		BranchName:        m.BranchName,
		Location:          m.Location,
		Type:              m.Type,
	}
}

// BranchModelFromDomain creates a persistence model from a domain Branch
func BranchModelFromDomain(b *branch.Branch) *BranchModel {
	m := &BranchModel{
		BranchID:     b.BranchID,
		BranchNumber: b.BranchNumber,
		BranchCode:   b.BranchCode,
		BranchName:   b.BranchName,
		Location:     b.Location,
		Type:         b.Type,
	}
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	return m
}

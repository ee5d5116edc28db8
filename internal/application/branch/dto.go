package branch

import (
	"time"

	"github.com/swas/backend/internal/domain/branch"
)

// CreateBranchRequest represents a request to register a branch or hub
type CreateBranchRequest struct {
	BranchID     string `json:"branch_id" binding:"omitempty,max=32"`
	BranchNumber int    `json:"branch_number" binding:"required,gt=0"`
	BranchCode   string `json:"branch_code" binding:"required,min=2,max=10"`
	BranchName   string `json:"branch_name" binding:"required,max=100"`
	Location     string `json:"location" binding:"max=200"`
	Region       string `json:"region" binding:"omitempty,max=10"`
	Type         string `json:"type" binding:"required,oneof=H B"`
}

// UpdateBranchRequest represents a request to update a branch
type UpdateBranchRequest struct {
	BranchName string `json:"branch_name" binding:"required,max=100"`
	Location   string `json:"location" binding:"max=200"`
	Type       string `json:"type" binding:"required,oneof=H B"`
}

// BranchResponse is the API view of a branch
type BranchResponse struct {
	BranchID     string    `json:"branch_id"`
	BranchNumber int       `json:"branch_number"`
	BranchCode   string    `json:"branch_code"`
	BranchName   string    `json:"branch_name"`
	Location     string    `json:"location"`
	Type         string    `json:"type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToBranchResponse converts a domain branch
func ToBranchResponse(b *branch.Branch) BranchResponse {
	return BranchResponse{
		BranchID:     b.BranchID,
		BranchNumber: b.BranchNumber,
		BranchCode:   b.BranchCode,
		BranchName:   b.BranchName,
		Location:     b.Location,
		Type:         string(b.Type),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

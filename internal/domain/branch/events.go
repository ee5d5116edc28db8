package branch

import "github.com/swas/backend/internal/domain/shared"

// AggregateTypeBranch is the aggregate type for branches
const AggregateTypeBranch = "Branch"

const (
	EventTypeBranchCreated = "BranchCreated"
	EventTypeBranchUpdated = "BranchUpdated"
)

// BranchChangedEvent is published when a branch is created or updated
type BranchChangedEvent struct {
	shared.BaseDomainEvent
	BranchNumber int    `json:"branch_number"`
	BranchName   string `json:"branch_name"`
}

// NewBranchChangedEvent creates a BranchChangedEvent of the given type
func NewBranchChangedEvent(eventType string, b *Branch) *BranchChangedEvent {
	return &BranchChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeBranch, b.ID, b.BranchID),
		BranchNumber:    b.BranchNumber,
		BranchName:      b.BranchName,
	}
}
